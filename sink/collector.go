// Package sink provides downstream peers for src pads: collectors for tests
// and writers that persist the streams.
package sink

import (
	"context"
	"sync"

	"github.com/xaionaro-go/xsync"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/types"
)

// Collector keeps everything it receives. It may be told to reject buffers.
type Collector struct {
	locker    xsync.Mutex
	buffers   []*packet.Buffer
	events    []event.Event
	rejectRet types.FlowReturn

	eosOnce sync.Once
	eosCh   chan struct{}
}

var _ pad.Peer = (*Collector)(nil)

func NewCollector() *Collector {
	return &Collector{
		eosCh: make(chan struct{}),
	}
}

// Reject makes subsequent Chain calls return ret (FlowOK accepts again).
func (c *Collector) Reject(ret types.FlowReturn) {
	c.locker.Do(context.Background(), func() {
		c.rejectRet = ret
	})
}

func (c *Collector) Chain(ctx context.Context, buf *packet.Buffer) types.FlowReturn {
	return xsync.DoR1(ctx, &c.locker, func() types.FlowReturn {
		if c.rejectRet != types.FlowOK {
			return c.rejectRet
		}
		c.buffers = append(c.buffers, buf)
		return types.FlowOK
	})
}

func (c *Collector) Event(ctx context.Context, ev event.Event) bool {
	c.locker.Do(ctx, func() {
		c.events = append(c.events, ev)
	})
	if ev.Type == event.TypeEOS {
		c.eosOnce.Do(func() { close(c.eosCh) })
	}
	return true
}

func (c *Collector) Buffers() []*packet.Buffer {
	return xsync.DoR1(context.Background(), &c.locker, func() []*packet.Buffer {
		return append([]*packet.Buffer{}, c.buffers...)
	})
}

func (c *Collector) Events() []event.Event {
	return xsync.DoR1(context.Background(), &c.locker, func() []event.Event {
		return append([]event.Event{}, c.events...)
	})
}

// EventTypes lists the types of the received events, in order.
func (c *Collector) EventTypes() []event.Type {
	var result []event.Type
	for _, ev := range c.Events() {
		result = append(result, ev.Type)
	}
	return result
}

// EOSChan is closed once an EOS event arrives.
func (c *Collector) EOSChan() <-chan struct{} {
	return c.eosCh
}
