// Package kernel contains the per-item logic hosted by a node: a kernel is
// called once per incoming buffer or event and forwards its results through
// its src pads.
package kernel

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/types"
)

type Abstract interface {
	fmt.Stringer
	types.GetObjectIDer

	// Close makes the kernel refuse further buffers; events still flow.
	Close(ctx context.Context) error
	CloseChan() <-chan struct{}

	// OnBuffer takes ownership of the buffer.
	OnBuffer(ctx context.Context, buf *packet.Buffer) error
	OnEvent(ctx context.Context, ev event.Event) error
}

// SrcPadsGetter is implemented by kernels that expose src pads for the
// host to link.
type SrcPadsGetter interface {
	SrcPads() []*pad.Pad
}

// SrcPad finds a src pad of the kernel by name.
func SrcPad(k Abstract, name string) *pad.Pad {
	getter, ok := k.(SrcPadsGetter)
	if !ok {
		return nil
	}
	for _, p := range getter.SrcPads() {
		if p.Name() == name {
			return p
		}
	}
	return nil
}
