package node

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/kernel"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/sink"
	"github.com/xaionaro-go/avtimestamp/types"
)

func newTestContext(t *testing.T) context.Context {
	ctx := logger.Install(context.Background(), logger.New(logger.LevelDebug))
	t.Cleanup(func() { belt.Flush(ctx) })
	return ctx
}

func newTestNode(
	t *testing.T,
	ctx context.Context,
) (*Node[*kernel.Timestamper], *sink.Collector, *sink.Collector) {
	n := NewTimestamper(ctx, nil, OptionName("ts0"))
	video, text := sink.NewCollector(), sink.NewCollector()
	require.NoError(t, n.Link(ctx, kernel.PadNameVideoSrc, video))
	require.NoError(t, n.Link(ctx, kernel.PadNameTextSrc, text))
	return n, video, text
}

func frame(idx int) *packet.Buffer {
	buf := packet.NewBuffer([]byte(fmt.Sprintf("frame-%d", idx)))
	buf.PTS = types.ClockTime(time.Duration(idx) * 33 * time.Millisecond)
	buf.DTS = buf.PTS
	buf.Duration = types.ClockTime(33 * time.Millisecond)
	buf.Offset = uint64(idx)
	return buf
}

func TestServe(t *testing.T) {
	ctx := newTestContext(t)
	n, video, text := newTestNode(t, ctx)

	const count = 3
	inputCh := make(chan Item, count+2)
	inputCh <- EventItem(event.NewCaps(types.CapsVideoRaw))
	var inputs []*packet.Buffer
	for i := 0; i < count; i++ {
		buf := frame(i)
		inputs = append(inputs, buf)
		inputCh <- BufferItem(buf)
	}
	inputCh <- EventItem(event.NewEOS())

	errCh := make(chan Error, 10)
	require.NoError(t, n.Serve(ctx, ServeConfig{}, inputCh, errCh))
	require.Empty(t, errCh)

	require.Equal(t, inputs, video.Buffers())
	texts := text.Buffers()
	require.Len(t, texts, count)
	for i, buf := range texts {
		rec, err := kernel.ParseRecord(buf.Payload)
		require.NoError(t, err)
		require.Equal(t, uint64(i), rec.Frame)
		require.True(t, buf.SameTiming(inputs[i]))
	}
	<-video.EOSChan()
	<-text.EOSChan()

	stats := n.GetStatistics()
	require.Equal(t, uint64(count), stats.Input.Buffers.Received.Video.Count)
	require.Equal(t, uint64(count), stats.Pads[kernel.PadNameVideoSrc].Sent.Video.Count)
	require.Equal(t, uint64(count), stats.Pads[kernel.PadNameTextSrc].Sent.Text.Count)
	require.Equal(t, uint64(2), stats.Input.Events.Received.Video.Count)
}

func TestServeClosedInputSendsEOS(t *testing.T) {
	ctx := newTestContext(t)
	n, video, text := newTestNode(t, ctx)

	inputCh := make(chan Item, 1)
	inputCh <- BufferItem(frame(0))
	close(inputCh)
	require.NoError(t, n.Serve(ctx, ServeConfig{}, inputCh, nil))

	require.Len(t, video.Buffers(), 1)
	require.Equal(t, event.TypeEOS, video.EventTypes()[len(video.EventTypes())-1])
	require.Equal(t, event.TypeEOS, text.EventTypes()[len(text.EventTypes())-1])
	require.True(t, n.Kernel.IsEOS())
}

func TestServeReportsErrors(t *testing.T) {
	ctx := newTestContext(t)
	n, video, text := newTestNode(t, ctx)
	text.Reject(types.FlowNotLinked)

	inputCh := make(chan Item, 3)
	inputCh <- BufferItem(frame(0))
	inputCh <- Item{}
	close(inputCh)

	errCh := make(chan Error, 10)
	require.NoError(t, n.Serve(ctx, ServeConfig{}, inputCh, errCh))
	close(errCh)

	var errs []Error
	for err := range errCh {
		errs = append(errs, err)
	}
	require.Len(t, errs, 2)
	require.Equal(t, uint64(0), errs[0].ItemIndex)
	require.Equal(t, types.FlowNotLinked, kernel.FlowReturnOf(errs[0]))
	require.True(t, errors.Is(errs[1], ErrEmptyItem{}))
	require.Empty(t, video.Buffers())
	require.Equal(t, uint64(1), n.Kernel.FrameCount())
}

func TestServeStopOnError(t *testing.T) {
	ctx := newTestContext(t)
	n, _, text := newTestNode(t, ctx)
	text.Reject(types.FlowError)

	inputCh := make(chan Item, 2)
	inputCh <- BufferItem(frame(0))
	inputCh <- BufferItem(frame(1))

	err := n.Serve(ctx, ServeConfig{StopOnError: true}, inputCh, nil)
	var nodeErr Error
	require.ErrorAs(t, err, &nodeErr)
	require.Equal(t, "ts0", nodeErr.Node)
	require.Len(t, inputCh, 1)
}

func TestServeCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx := newTestContext(t)
	n, _, _ := newTestNode(t, ctx)

	ctx, cancelFn := context.WithCancel(ctx)
	inputCh := make(chan Item)
	resultCh := make(chan error, 1)
	go func() {
		resultCh <- n.Serve(ctx, ServeConfig{}, inputCh, nil)
	}()
	inputCh <- BufferItem(frame(0))
	cancelFn()
	require.ErrorIs(t, <-resultCh, context.Canceled)
}

func TestServeTwice(t *testing.T) {
	ctx := newTestContext(t)
	n, _, _ := newTestNode(t, ctx)
	n.IsServing = true
	require.ErrorIs(t, n.Serve(ctx, ServeConfig{}, nil, nil), ErrAlreadyStarted{})
}

func TestLinkUnknownPad(t *testing.T) {
	ctx := newTestContext(t)
	n, _, _ := newTestNode(t, ctx)
	require.ErrorIs(t, n.Link(ctx, "nope", sink.Discard{}), ErrNoSuchPad{Pad: "nope"})
	require.Error(t, n.Link(ctx, kernel.PadNameTextSrc, sink.Discard{}))
	require.Equal(t, "ts0", n.String())
	require.Contains(t, New(kernel.NewTimestamper(ctx)).String(), "timestamp-")
}

func TestServeRecoversPanic(t *testing.T) {
	ctx := newTestContext(t)
	n := NewTimestamper(ctx, nil)
	require.NoError(t, n.Link(ctx, kernel.PadNameVideoSrc, pad.PeerFuncs{
		ChainFunc: func(ctx context.Context, buf *packet.Buffer) types.FlowReturn {
			panic("downstream exploded")
		},
	}))
	require.NoError(t, n.Link(ctx, kernel.PadNameTextSrc, sink.Discard{}))

	inputCh := make(chan Item, 1)
	inputCh <- BufferItem(frame(0))
	err := n.Serve(ctx, ServeConfig{}, inputCh, nil)
	var errPanic ErrPanic
	require.ErrorAs(t, err, &errPanic)
	require.Equal(t, "downstream exploded", errPanic.Value)
	require.False(t, n.IsServing)
}

func TestServeErrorDescribesInputBeforeRelease(t *testing.T) {
	ctx := newTestContext(t)
	n, _, text := newTestNode(t, ctx)
	text.Reject(types.FlowFlushing)

	buf, err := packet.NewPool(0).Allocate(ctx, 10)
	require.NoError(t, err)
	copy(buf.Payload, "frame-0002")
	buf.PTS = types.ClockTime(66 * time.Millisecond)
	buf.DTS = buf.PTS
	buf.Duration = types.ClockTime(33 * time.Millisecond)
	buf.Offset = 2
	expected := buf.String()

	inputCh := make(chan Item, 1)
	inputCh <- BufferItem(buf)
	close(inputCh)
	errCh := make(chan Error, 10)
	require.NoError(t, n.Serve(ctx, ServeConfig{}, inputCh, errCh))

	require.NotEmpty(t, errCh)
	nodeErr := <-errCh
	require.Equal(t, expected, nodeErr.Item)
	require.Contains(t, nodeErr.Item, "pts:0:00:00.066000000")
	require.Equal(t, types.FlowFlushing, kernel.FlowReturnOf(nodeErr))
}
