package pad

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/types"
)

type recordingPeer struct {
	buffers []*packet.Buffer
	events  []event.Event
	ret     types.FlowReturn
}

func (r *recordingPeer) Chain(ctx context.Context, buf *packet.Buffer) types.FlowReturn {
	r.buffers = append(r.buffers, buf)
	return r.ret
}

func (r *recordingPeer) Event(ctx context.Context, ev event.Event) bool {
	r.events = append(r.events, ev)
	return true
}

var testTemplate = Template{
	Name:      "videosrc",
	Direction: DirectionSrc,
	Presence:  PresenceAlways,
	Caps:      types.CapsVideoRaw,
}

func TestPushNotLinked(t *testing.T) {
	ctx := context.Background()
	p := New(testTemplate)
	require.Equal(t, types.FlowNotLinked, p.Push(ctx, packet.NewBuffer([]byte("a"))))
	require.Equal(t, uint64(1), p.Counters.Rejected.Video.Count.Load())
}

func TestPushLinked(t *testing.T) {
	ctx := context.Background()
	p := New(testTemplate)
	peer := &recordingPeer{}
	require.NoError(t, p.Link(ctx, peer))
	require.True(t, p.IsLinked(ctx))

	var errAlreadyLinked ErrAlreadyLinked
	require.ErrorAs(t, p.Link(ctx, peer), &errAlreadyLinked)

	buf := packet.NewBuffer([]byte("abc"))
	require.Equal(t, types.FlowOK, p.Push(ctx, buf))
	require.Len(t, peer.buffers, 1)
	require.Same(t, buf, peer.buffers[0])
	require.Equal(t, types.StatisticsItem{Count: 1, Bytes: 3}, p.Counters.Sent.Video.ToStats())

	peer.ret = types.FlowError
	require.Equal(t, types.FlowError, p.Push(ctx, packet.NewBuffer(nil)))

	p.Unlink(ctx)
	require.Equal(t, types.FlowNotLinked, p.Push(ctx, packet.NewBuffer(nil)))
}

func TestFlushing(t *testing.T) {
	ctx := context.Background()
	p := New(testTemplate)
	peer := &recordingPeer{}
	require.NoError(t, p.Link(ctx, peer))

	require.True(t, p.PushEvent(ctx, event.NewFlushStart()))
	require.True(t, p.IsFlushing(ctx))
	require.Equal(t, types.FlowFlushing, p.Push(ctx, packet.NewBuffer(nil)))

	require.True(t, p.PushEvent(ctx, event.NewFlushStop()))
	require.Equal(t, types.FlowOK, p.Push(ctx, packet.NewBuffer(nil)))
}

func TestEOS(t *testing.T) {
	ctx := context.Background()
	p := New(testTemplate)
	require.True(t, p.PushEvent(ctx, event.NewEOS()), "sticky events are accepted on unlinked pads")

	peer := &recordingPeer{}
	require.NoError(t, p.Link(ctx, peer))
	require.Len(t, peer.events, 1)
	require.Equal(t, event.TypeEOS, peer.events[0].Type)
	require.Equal(t, types.FlowEOS, p.Push(ctx, packet.NewBuffer(nil)))

	require.False(t, New(testTemplate).PushEvent(ctx, event.NewCustom("x")))
}

func TestStickyCapsReplay(t *testing.T) {
	ctx := context.Background()
	p := New(testTemplate)
	require.Equal(t, types.CapsVideoRaw, p.Caps())
	require.False(t, p.HasCurrentCaps())

	caps := types.Caps("video/x-raw, width=320, height=240")
	require.True(t, p.PushEvent(ctx, event.NewCaps(types.CapsVideoRaw)))
	require.True(t, p.PushEvent(ctx, event.NewCaps(caps)))
	require.Equal(t, caps, p.Caps())

	ev, ok := p.StickyEvent(ctx, event.TypeCaps)
	require.True(t, ok)
	require.Equal(t, caps, ev.Caps)

	peer := &recordingPeer{}
	require.NoError(t, p.Link(ctx, peer))
	require.Len(t, peer.events, 1)
	require.Equal(t, caps, peer.events[0].Caps)
}

func TestFixedCaps(t *testing.T) {
	ctx := context.Background()
	p := New(Template{Name: "textsrc", Direction: DirectionSrc, Caps: types.CapsTextUTF8})
	p.FixedCaps = true

	var errIncompatible ErrIncompatibleCaps
	require.ErrorAs(t, p.SetCaps(types.CapsVideoRaw), &errIncompatible)
	require.False(t, p.PushEvent(ctx, event.NewCaps(types.CapsVideoRaw)))
	require.NoError(t, p.SetCaps(types.CapsTextUTF8))
	require.Equal(t, types.MediaTypeText, p.Caps().MediaType())
}
