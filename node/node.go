// Package node hosts a kernel: it feeds it buffers and events one at a time,
// in order, and links its src pads to downstream peers.
package node

import (
	"context"
	"fmt"

	"go.uber.org/atomic"

	"github.com/xaionaro-go/xsync"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/kernel"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/types"
)

type Abstract interface {
	fmt.Stringer
	types.GetObjectIDer
	Process(ctx context.Context, item Item) error
	Serve(ctx context.Context, cfg ServeConfig, inputCh <-chan Item, errCh chan<- Error) error
	GetStatistics() FullStatistics
}

type Node[K kernel.Abstract] struct {
	*NodeStatistics
	Kernel K
	Config Config

	// ProcessLocker serializes calls into the kernel.
	ProcessLocker xsync.Mutex
	Locker        xsync.Mutex
	IsServing     bool

	inputCaps types.Caps
	itemIndex atomic.Uint64
}

var _ Abstract = (*Node[kernel.Abstract])(nil)

func New[K kernel.Abstract](
	k K,
	opts ...Option,
) *Node[K] {
	return &Node[K]{
		NodeStatistics: newNodeStatistics(),
		Kernel:         k,
		Config:         Options(opts).config(),
		inputCaps:      types.CapsAny,
	}
}

// NewTimestamper is a shorthand for New(kernel.NewTimestamper(ctx, kernelOpts...), opts...).
func NewTimestamper(
	ctx context.Context,
	kernelOpts []kernel.TimestamperOption,
	opts ...Option,
) *Node[*kernel.Timestamper] {
	return New(kernel.NewTimestamper(ctx, kernelOpts...), opts...)
}

func (n *Node[K]) String() string {
	return n.Config.Name
}

func (n *Node[K]) GetObjectID() types.ObjectID {
	return types.GetObjectID(n)
}

// Link connects the named src pad of the kernel to the peer.
func (n *Node[K]) Link(
	ctx context.Context,
	padName string,
	peer pad.Peer,
) error {
	p := kernel.SrcPad(n.Kernel, padName)
	if p == nil {
		return ErrNoSuchPad{Pad: padName}
	}
	if err := p.Link(ctx, peer); err != nil {
		return fmt.Errorf("unable to link %s.%s: %w", n, padName, err)
	}
	logger.Debugf(ctx, "linked %s.%s", n, padName)
	return nil
}

// Process hands one item to the kernel. Calls are serialized.
func (n *Node[K]) Process(
	ctx context.Context,
	item Item,
) (_err error) {
	if logger.TraceEnabled {
		itemStr := item.String()
		logger.Tracef(ctx, "Process(%s)", itemStr)
		defer func() { logger.Tracef(ctx, "/Process(%s): %v", itemStr, _err) }()
	}
	return xsync.DoA2R1(xsync.WithNoLogging(ctx, true), &n.ProcessLocker, n.processLocked, ctx, item)
}

func (n *Node[K]) processLocked(
	ctx context.Context,
	item Item,
) error {
	idx := n.itemIndex.Inc() - 1
	// the kernel owns the buffer once called and may recycle it
	itemStr := item.String()
	var err error
	switch {
	case item.Buffer != nil:
		mediaType := n.inputCaps.MediaType()
		size := uint64(item.Buffer.Size())
		n.Input.Buffers.Received.Increment(mediaType, size)
		err = n.Kernel.OnBuffer(ctx, item.Buffer)
		if err != nil {
			n.Input.Buffers.Rejected.Increment(mediaType, size)
		}
	case item.Event != nil:
		if item.Event.Type == event.TypeCaps {
			n.inputCaps = item.Event.Caps
		}
		n.Input.Events.Received.Increment(n.inputCaps.MediaType(), 0)
		err = n.Kernel.OnEvent(ctx, *item.Event)
		if err != nil {
			n.Input.Events.Rejected.Increment(n.inputCaps.MediaType(), 0)
		}
	default:
		err = ErrEmptyItem{}
	}
	if err != nil {
		return Error{
			Node:      n.String(),
			ItemIndex: idx,
			Item:      itemStr,
			Err:       err,
		}
	}
	return nil
}

func (n *Node[K]) GetStatistics() FullStatistics {
	result := FullStatistics{
		Input: n.Input.ToStats(),
		Pads:  map[string]PadStatistics{},
	}
	getter, ok := any(n.Kernel).(kernel.SrcPadsGetter)
	if !ok {
		return result
	}
	for _, p := range getter.SrcPads() {
		result.Pads[p.Name()] = PadStatistics{
			Sent:     p.Counters.Sent.ToStats(),
			Rejected: p.Counters.Rejected.ToStats(),
		}
	}
	return result
}
