package sink

import (
	"context"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/types"
)

// Discard accepts and drops everything.
type Discard struct{}

var _ pad.Peer = Discard{}

func (Discard) Chain(ctx context.Context, buf *packet.Buffer) types.FlowReturn {
	buf.Release()
	return types.FlowOK
}

func (Discard) Event(ctx context.Context, ev event.Event) bool {
	return true
}
