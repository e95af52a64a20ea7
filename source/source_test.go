package source

import (
	"context"
	"testing"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/facebookincubator/go-belt"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/typing"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/node"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/types"
)

func newTestContext(t *testing.T) context.Context {
	ctx := logger.Install(context.Background(), logger.New(logger.LevelDebug))
	t.Cleanup(func() { belt.Flush(ctx) })
	return ctx
}

func collect(
	t *testing.T,
	ctx context.Context,
	src Abstract,
) []node.Item {
	ch := make(chan node.Item, 1024)
	require.NoError(t, src.Generate(ctx, ch))
	close(ch)
	var items []node.Item
	for item := range ch {
		items = append(items, item)
	}
	return items
}

func TestGeneratorFrames(t *testing.T) {
	ctx := newTestContext(t)

	g := NewGenerator(GeneratorConfig{
		Frames:    typing.Opt[uint64](5),
		FPS:       25,
		FrameSize: 16,
	})
	require.Equal(t, types.ClockTime(40*time.Millisecond), g.FrameDuration())

	items := collect(t, ctx, g)
	require.Len(t, items, 3+5+1)

	require.Equal(t, event.TypeStreamStart, items[0].Event.Type)
	require.Equal(t, event.TypeCaps, items[1].Event.Type)
	require.Equal(t, types.CapsVideoRaw.Name(), items[1].Event.Caps.Name())
	width, ok := items[1].Event.Caps.Field("width")
	require.True(t, ok)
	require.Equal(t, "16", width)
	require.Equal(t, event.TypeSegment, items[2].Event.Type)

	for i, item := range items[3:8] {
		buf := item.Buffer
		require.NotNil(t, buf)
		require.Equal(t, types.ClockTime(i)*g.FrameDuration(), buf.PTS)
		require.Equal(t, buf.PTS, buf.DTS)
		require.Equal(t, g.FrameDuration(), buf.Duration)
		require.Equal(t, uint64(i), buf.Offset)
		require.Len(t, buf.Payload, 16)
		for _, b := range buf.Payload {
			require.Equal(t, byte(i), b)
		}
		require.Equal(t, i == 0, buf.Flags&packet.FlagDiscont != 0)
		buf.Release()
	}

	require.Equal(t, event.TypeEOS, items[8].Event.Type)
}

func TestGeneratorZeroFrames(t *testing.T) {
	ctx := newTestContext(t)
	items := collect(t, ctx, NewGenerator(GeneratorConfig{Frames: typing.Opt[uint64](0)}))
	require.Len(t, items, 4)
	require.Equal(t, event.TypeEOS, items[3].Event.Type)
}

func TestGeneratorUnboundedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(newTestContext(t))
	g := NewGenerator(GeneratorConfig{})
	require.Contains(t, g.String(), "30 fps")

	ch := make(chan node.Item)
	errCh := make(chan error, 1)
	go func() { errCh <- g.Generate(ctx, ch) }()
	for i := 0; i < 10; i++ {
		item := <-ch
		if item.Buffer != nil {
			item.Buffer.Release()
		}
	}
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestGeneratorRealTime(t *testing.T) {
	ctx := newTestContext(t)
	g := NewGenerator(GeneratorConfig{
		Frames:   typing.Opt[uint64](3),
		FPS:      50,
		RealTime: true,
	})
	startTS := time.Now()
	collect(t, ctx, g)
	require.GreaterOrEqual(t, time.Since(startTS), 40*time.Millisecond)
}

func TestGeneratorAllocationFailure(t *testing.T) {
	ctx := newTestContext(t)
	g := NewGenerator(GeneratorConfig{
		Frames:    typing.Opt[uint64](1),
		FrameSize: 128,
		Allocator: packet.NewPool(64),
	})
	ch := make(chan node.Item, 16)
	err := g.Generate(ctx, ch)
	var errTooLarge packet.ErrTooLarge
	require.ErrorAs(t, err, &errTooLarge)
}

func TestRescaleToClockTime(t *testing.T) {
	tb := astiav.NewRational(1, 90000)
	require.Equal(t, types.ClockTime(time.Second), RescaleToClockTime(90000, tb))
	require.Equal(t, types.ClockTime(0), RescaleToClockTime(0, tb))
	require.Equal(t, types.ClockTimeNone, RescaleToClockTime(astiav.NoPtsValue, tb))
	require.Equal(t, types.ClockTimeNone, RescaleToClockTime(-1, tb))
}

func TestAVDemuxerErrors(t *testing.T) {
	ctx := newTestContext(t)
	ch := make(chan node.Item, 1)

	require.Error(t, NewAVDemuxer("").Generate(ctx, ch))
	require.Error(t, NewAVDemuxer(t.TempDir()+"/does-not-exist.ts").Generate(ctx, ch))

	d := NewAVDemuxer("whatever")
	d.Format = "no-such-format"
	require.Error(t, d.Generate(ctx, ch))
	require.Empty(t, ch)
}

func TestLogLevelAstiav(t *testing.T) {
	for _, level := range []logger.Level{
		logger.LevelPanic,
		logger.LevelFatal,
		logger.LevelError,
		logger.LevelWarning,
		logger.LevelInfo,
		logger.LevelDebug,
		logger.LevelTrace,
	} {
		require.Equal(t, level, LogLevelFromAstiav(LogLevelToAstiav(level)), level.String())
	}
}
