package source

import (
	"context"
	"fmt"
	"time"

	"github.com/xaionaro-go/typing"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/node"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/types"
)

const (
	DefaultFPS       = 30
	DefaultFrameSize = 64
)

type GeneratorConfig struct {
	// Frames limits the amount of generated buffers; unbounded if unset.
	Frames typing.Optional[uint64]

	FPS       float64
	FrameSize int

	// RealTime paces the output to FPS using the wall clock.
	RealTime bool

	// Caps overrides the announced caps; derived from FrameSize if empty.
	Caps types.Caps

	Allocator packet.Allocator
}

// Generator produces synthetic raw video frames. Frame i has PTS and DTS
// i*frameDuration, offset i and a payload filled with byte(i).
type Generator struct {
	Config GeneratorConfig
}

var _ Abstract = (*Generator)(nil)

func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	if cfg.Caps.IsEmpty() {
		cfg.Caps = types.Caps(fmt.Sprintf(
			"%s, format=GRAY8, width=%d, height=1, framerate=%s",
			types.CapsVideoRaw, cfg.FrameSize, fpsFraction(cfg.FPS),
		))
	}
	if cfg.Allocator == nil {
		cfg.Allocator = packet.DefaultPool
	}
	return &Generator{Config: cfg}
}

func fpsFraction(fps float64) string {
	if fps == float64(int64(fps)) {
		return fmt.Sprintf("%d/1", int64(fps))
	}
	return fmt.Sprintf("%d/1000", int64(fps*1000))
}

func (g *Generator) String() string {
	if g.Config.Frames.IsSet() {
		return fmt.Sprintf("Generator(%d frames @ %g fps)", g.Config.Frames.Get(), g.Config.FPS)
	}
	return fmt.Sprintf("Generator(@ %g fps)", g.Config.FPS)
}

// FrameDuration is the PTS distance between two consecutive frames.
func (g *Generator) FrameDuration() types.ClockTime {
	return types.ClockTime(float64(time.Second) / g.Config.FPS)
}

func (g *Generator) Generate(
	ctx context.Context,
	outputCh chan<- node.Item,
) (_err error) {
	logger.Debugf(ctx, "Generate")
	defer func() { logger.Debugf(ctx, "/Generate: %v", _err) }()

	for _, ev := range []event.Event{
		event.NewStreamStart(fmt.Sprintf("%p", g)),
		event.NewCaps(g.Config.Caps),
		event.NewSegment(0),
	} {
		if err := send(ctx, outputCh, node.EventItem(ev)); err != nil {
			return err
		}
	}

	frameDuration := g.FrameDuration()
	startTS := time.Now()
	for idx := uint64(0); !g.Config.Frames.IsSet() || idx < g.Config.Frames.Get(); idx++ {
		pts := types.ClockTime(idx) * frameDuration
		if g.Config.RealTime {
			offset, _ := pts.Duration()
			if err := sleepUntil(ctx, startTS.Add(offset)); err != nil {
				return err
			}
		}

		buf, err := g.Config.Allocator.Allocate(ctx, g.Config.FrameSize)
		if err != nil {
			return fmt.Errorf("unable to allocate frame #%d: %w", idx, err)
		}
		for i := range buf.Payload {
			buf.Payload[i] = byte(idx)
		}
		buf.PTS = pts
		buf.DTS = pts
		buf.Duration = frameDuration
		buf.Offset = idx
		buf.OffsetEnd = idx + 1
		if idx == 0 {
			buf.Flags |= packet.FlagDiscont
		}

		if err := send(ctx, outputCh, node.BufferItem(buf)); err != nil {
			buf.Release()
			return err
		}
	}

	return send(ctx, outputCh, node.EventItem(event.NewEOS()))
}

func sleepUntil(ctx context.Context, deadline time.Time) error {
	d := time.Until(deadline)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
