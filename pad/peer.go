package pad

import (
	"context"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/types"
)

// Peer is the downstream side a src pad pushes into. Chain takes ownership
// of the buffer.
type Peer interface {
	Chain(ctx context.Context, buf *packet.Buffer) types.FlowReturn
	Event(ctx context.Context, ev event.Event) bool
}

// PeerFuncs adapts a pair of functions to Peer; a nil function accepts
// everything.
type PeerFuncs struct {
	ChainFunc func(ctx context.Context, buf *packet.Buffer) types.FlowReturn
	EventFunc func(ctx context.Context, ev event.Event) bool
}

var _ Peer = PeerFuncs{}

func (p PeerFuncs) Chain(ctx context.Context, buf *packet.Buffer) types.FlowReturn {
	if p.ChainFunc == nil {
		buf.Release()
		return types.FlowOK
	}
	return p.ChainFunc(ctx, buf)
}

func (p PeerFuncs) Event(ctx context.Context, ev event.Event) bool {
	if p.EventFunc == nil {
		return true
	}
	return p.EventFunc(ctx, ev)
}
