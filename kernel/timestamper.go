package kernel

import (
	"context"
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/typing"
	"go.uber.org/atomic"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/types"
)

// Timestamper passes every incoming buffer through to "videosrc" and emits,
// for each of them, a text buffer "<frame>,<wall_clock_ms>\n" to "textsrc"
// carrying the same PTS, DTS, duration and offset.
//
// OnBuffer and OnEvent must not be called concurrently; the host serializes
// them.
type Timestamper struct {
	*closeChan
	Config TimestamperConfig

	VideoSrc *pad.Pad
	TextSrc  *pad.Pad

	frame           atomic.Uint64
	lastWallClockMS atomic.Int64
	hasLastRecord   atomic.Bool
	eos             atomic.Bool

	scratch []byte
}

var (
	_ Abstract      = (*Timestamper)(nil)
	_ SrcPadsGetter = (*Timestamper)(nil)
)

func NewTimestamper(
	ctx context.Context,
	opts ...TimestamperOption,
) *Timestamper {
	textSrc := pad.New(TemplateTextSrc)
	textSrc.FixedCaps = true
	return &Timestamper{
		closeChan: newCloseChan(),
		Config:    TimestamperOptions(opts).config(),
		VideoSrc:  pad.New(TemplateVideoSrc),
		TextSrc:   textSrc,
		scratch:   make([]byte, 0, 32),
	}
}

func (k *Timestamper) getLogger(ctx context.Context) logger.Logger {
	if k.Config.Logger != nil {
		return k.Config.Logger
	}
	return logger.FromCtx(ctx)
}

func (k *Timestamper) SrcPads() []*pad.Pad {
	return []*pad.Pad{k.VideoSrc, k.TextSrc}
}

// FrameCount is the number of buffers processed so far, which is also the
// frame index the next record will carry.
func (k *Timestamper) FrameCount() uint64 {
	return k.frame.Load()
}

// LastRecord returns the record emitted for the latest buffer, if any.
func (k *Timestamper) LastRecord() typing.Optional[Record] {
	if !k.hasLastRecord.Load() {
		return typing.Optional[Record]{}
	}
	frame := k.frame.Load()
	if frame == 0 {
		return typing.Optional[Record]{}
	}
	return typing.Opt(Record{
		Frame:       frame - 1,
		WallClockMS: k.lastWallClockMS.Load(),
	})
}

// IsEOS reports whether the end of stream was propagated and no flush has
// happened since.
func (k *Timestamper) IsEOS() bool {
	return k.eos.Load()
}

func (k *Timestamper) OnBuffer(
	ctx context.Context,
	buf *packet.Buffer,
) (_err error) {
	if logger.TraceEnabled {
		bufStr := buf.String()
		logger.Tracef(ctx, "OnBuffer(%s)", bufStr)
		defer func() { logger.Tracef(ctx, "/OnBuffer(%s): %v", bufStr, _err) }()
	}

	if buf == nil {
		return ErrNilBuffer{}
	}
	if k.IsClosed() {
		buf.Release()
		return ErrClosed{}
	}

	frame := k.frame.Load()
	defer k.frame.Inc()

	wallClockMS := k.Config.Clock.Now().UnixMilli()
	k.scratch = AppendRecord(k.scratch[:0], frame, wallClockMS)
	k.lastWallClockMS.Store(wallClockMS)
	k.hasLastRecord.Store(true)

	textBuf, err := k.Config.Allocator.Allocate(ctx, len(k.scratch))
	if err != nil {
		buf.Release()
		if !k.Config.Silent {
			k.getLogger(ctx).Errorf("unable to allocate the text buffer for frame %d: %v", frame, err)
		}
		return ErrAllocation{Size: len(k.scratch), Err: err}
	}
	assert(ctx, textBuf.Size() == len(k.scratch), "allocator returned a buffer of a wrong size", textBuf.Size(), len(k.scratch))
	copy(textBuf.Payload, k.scratch)
	textBuf.CopyMetadataFrom(buf)

	if !k.TextSrc.HasCurrentCaps() {
		k.TextSrc.PushEvent(ctx, event.NewCaps(k.TextSrc.Template.Caps))
	}

	if ret := k.TextSrc.Push(ctx, textBuf); ret != types.FlowOK {
		buf.Release()
		if !k.Config.Silent {
			k.getLogger(ctx).Errorf("text flow error: %s", ret)
		}
		return ErrFlow{Pad: PadNameTextSrc, Return: ret}
	}

	if ret := k.VideoSrc.Push(ctx, buf); ret != types.FlowOK {
		if !k.Config.Silent {
			k.getLogger(ctx).Errorf("video flow error: %s", ret)
		}
		return ErrFlow{Pad: PadNameVideoSrc, Return: ret}
	}

	return nil
}

func (k *Timestamper) OnEvent(
	ctx context.Context,
	ev event.Event,
) (_err error) {
	if !k.Config.Silent {
		l := k.getLogger(ctx)
		l.Debugf("received %s event: %s", ev.Type, ev)
		if logger.TraceEnabled && l.Level() >= logger.LevelTrace {
			l.Tracef("%s", spew.Sdump(ev))
		}
	}

	switch ev.Type {
	case event.TypeCaps:
		// the video output takes whatever the input has; the text output
		// keeps its own fixed caps
		var errs []error
		if err := k.pushEvent(ctx, k.VideoSrc, ev); err != nil {
			errs = append(errs, err)
		}
		if !k.TextSrc.HasCurrentCaps() {
			if err := k.pushEvent(ctx, k.TextSrc, ev.WithCaps(k.TextSrc.Template.Caps)); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	case event.TypeEOS:
		err := k.pushEventToAll(ctx, ev)
		k.eos.Store(true)
		return err
	case event.TypeFlushStop:
		err := k.pushEventToAll(ctx, ev)
		k.eos.Store(false)
		return err
	default:
		return k.pushEventToAll(ctx, ev)
	}
}

func (k *Timestamper) pushEvent(
	ctx context.Context,
	p *pad.Pad,
	ev event.Event,
) error {
	if p.PushEvent(ctx, ev) {
		return nil
	}
	return ErrEventRejected{Pad: p.Name(), Event: ev}
}

// pushEventToAll sends the event to the video output and then the text
// output; both are attempted even if the first one rejects it.
func (k *Timestamper) pushEventToAll(
	ctx context.Context,
	ev event.Event,
) error {
	var errs []error
	for _, p := range k.SrcPads() {
		if err := k.pushEvent(ctx, p, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (k *Timestamper) GetObjectID() types.ObjectID {
	return types.GetObjectID(k)
}

func (k *Timestamper) String() string {
	return fmt.Sprintf("Timestamper(frame:%d)", k.FrameCount())
}

// Close stops the kernel: subsequent buffers are refused with ErrClosed.
func (k *Timestamper) Close(ctx context.Context) error {
	k.signalClose(ctx)
	return nil
}
