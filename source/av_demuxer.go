package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/facebookincubator/go-belt"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/node"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/types"
)

var timeBaseNanoseconds = astiav.NewRational(1, int(time.Second))

type ErrNoVideoStream struct {
	URL string
}

func (e ErrNoVideoStream) Error() string {
	return fmt.Sprintf("'%s' has no video stream", e.URL)
}

// AVDemuxer reads a media file or URL through libav and emits the packets
// of its first video stream as buffers.
type AVDemuxer struct {
	URL string

	// Format forces the input format (e.g. "mpegts"); probed if empty.
	Format string
}

var _ Abstract = (*AVDemuxer)(nil)

func NewAVDemuxer(url string) *AVDemuxer {
	return &AVDemuxer{URL: url}
}

func (d *AVDemuxer) String() string {
	return fmt.Sprintf("AVDemuxer(%s)", d.URL)
}

func (d *AVDemuxer) Generate(
	ctx context.Context,
	outputCh chan<- node.Item,
) (_err error) {
	ctx = belt.WithField(ctx, "url", d.URL)
	logger.Debugf(ctx, "Generate")
	defer func() { logger.Debugf(ctx, "/Generate: %v", _err) }()

	if d.URL == "" {
		return fmt.Errorf("the provided URL is empty")
	}

	formatContext := astiav.AllocFormatContext()
	if formatContext == nil {
		return fmt.Errorf("unable to allocate a format context")
	}
	defer formatContext.Free()

	var inputFormat *astiav.InputFormat
	if d.Format != "" {
		inputFormat = astiav.FindInputFormat(d.Format)
		if inputFormat == nil {
			return fmt.Errorf("unknown input format '%s'", d.Format)
		}
	}
	if err := formatContext.OpenInput(d.URL, inputFormat, nil); err != nil {
		return fmt.Errorf("unable to open input '%s': %w", d.URL, err)
	}
	defer formatContext.CloseInput()

	if err := formatContext.FindStreamInfo(nil); err != nil {
		return fmt.Errorf("unable to get stream info: %w", err)
	}

	var stream *astiav.Stream
	for _, s := range formatContext.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeVideo {
			stream = s
			break
		}
	}
	if stream == nil {
		return ErrNoVideoStream{URL: d.URL}
	}
	logger.Debugf(ctx, "using stream #%d (%s)", stream.Index(), stream.CodecParameters().CodecID())

	for _, ev := range []event.Event{
		event.NewStreamStart(fmt.Sprintf("%s#%d", d.URL, stream.Index())),
		event.NewCaps(StreamCaps(stream)),
		event.NewSegment(0),
	} {
		if err := send(ctx, outputCh, node.EventItem(ev)); err != nil {
			return err
		}
	}

	pkt := astiav.AllocPacket()
	defer pkt.Free()

	var frameIdx uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := formatContext.ReadFrame(pkt)
		switch {
		case err == nil:
		case errors.Is(err, astiav.ErrEof), errors.Is(err, astiav.ErrEio):
			return send(ctx, outputCh, node.EventItem(event.NewEOS()))
		default:
			return fmt.Errorf("unable to read a packet: %w", err)
		}

		if pkt.StreamIndex() != stream.Index() {
			pkt.Unref()
			continue
		}
		logger.Tracef(ctx,
			"received a packet (pts:%d, dts:%d, dur:%d), dataLen:%d",
			pkt.Pts(), pkt.Dts(), pkt.Duration(), len(pkt.Data()),
		)
		buf := BufferFromPacket(pkt, stream.TimeBase(), frameIdx)
		pkt.Unref()
		frameIdx++

		if err := send(ctx, outputCh, node.BufferItem(buf)); err != nil {
			return err
		}
	}
}

// StreamCaps describes the stream in caps notation: raw video becomes
// "video/x-raw", anything else "video/x-<codec>".
func StreamCaps(stream *astiav.Stream) types.Caps {
	params := stream.CodecParameters()
	name := types.CapsVideoRaw
	if params.CodecID() != astiav.CodecIDRawvideo {
		name = types.Caps(fmt.Sprintf("video/x-%s", params.CodecID()))
	}
	caps := fmt.Sprintf("%s, width=%d, height=%d", name, params.Width(), params.Height())
	if fps := stream.AvgFrameRate(); fps.Num() > 0 && fps.Den() > 0 {
		caps += fmt.Sprintf(", framerate=%d/%d", fps.Num(), fps.Den())
	}
	return types.Caps(caps)
}

// BufferFromPacket copies the packet payload into a new buffer, converting
// timestamps from timeBase to nanoseconds.
func BufferFromPacket(
	pkt *astiav.Packet,
	timeBase astiav.Rational,
	offset uint64,
) *packet.Buffer {
	payload := make([]byte, len(pkt.Data()))
	copy(payload, pkt.Data())
	buf := packet.NewBuffer(payload)
	buf.PTS = RescaleToClockTime(pkt.Pts(), timeBase)
	buf.DTS = RescaleToClockTime(pkt.Dts(), timeBase)
	if pkt.Duration() > 0 {
		buf.Duration = RescaleToClockTime(pkt.Duration(), timeBase)
	}
	buf.Offset = offset
	buf.OffsetEnd = offset + 1
	if !pkt.Flags().Has(astiav.PacketFlagKey) {
		buf.Flags |= packet.FlagDeltaUnit
	}
	return buf
}

// RescaleToClockTime converts a libav timestamp; unset and negative values
// become ClockTimeNone.
func RescaleToClockTime(ts int64, timeBase astiav.Rational) types.ClockTime {
	if ts == astiav.NoPtsValue || ts < 0 || timeBase.Den() == 0 {
		return types.ClockTimeNone
	}
	return types.ClockTime(astiav.RescaleQ(ts, timeBase, timeBaseNanoseconds))
}
