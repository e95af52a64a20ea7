package pad

import (
	"context"
	"fmt"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/xsync"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/types"
)

// Pad is a src pad: it forwards buffers and events to the linked Peer.
//
// Sticky events (stream-start, caps, segment, eos) are remembered and
// replayed to a peer linked later, so a late link sees the same stream
// description as an early one.
type Pad struct {
	Template  Template
	FixedCaps bool
	Counters  *types.CountersSection

	locker   xsync.Mutex
	peer     Peer
	flushing bool
	eos      bool
	sticky   []event.Event

	caps *types.Caps
}

var _ types.GetObjectIDer = (*Pad)(nil)

func New(tmpl Template) *Pad {
	counters := types.NewCountersSection()
	return &Pad{
		Template: tmpl,
		Counters: &counters,
	}
}

func (p *Pad) Name() string {
	return p.Template.Name
}

func (p *Pad) String() string {
	return p.Template.Name
}

func (p *Pad) GetObjectID() types.ObjectID {
	return types.GetObjectID(p)
}

// Link connects the pad to the peer and replays sticky events to it.
func (p *Pad) Link(ctx context.Context, peer Peer) error {
	if peer == nil {
		return fmt.Errorf("cannot link pad '%s' to a nil peer", p.Name())
	}
	sticky, err := xsync.DoR2(ctx, &p.locker, func() ([]event.Event, error) {
		if p.peer != nil {
			return nil, ErrAlreadyLinked{Pad: p.Name()}
		}
		p.peer = peer
		return append([]event.Event{}, p.sticky...), nil
	})
	if err != nil {
		return err
	}
	for _, ev := range sticky {
		if !peer.Event(ctx, ev) {
			logger.Debugf(ctx, "pad '%s': the new peer rejected sticky event %s", p.Name(), ev)
		}
	}
	return nil
}

func (p *Pad) Unlink(ctx context.Context) {
	p.locker.Do(ctx, func() {
		p.peer = nil
	})
}

func (p *Pad) IsLinked(ctx context.Context) bool {
	return xsync.DoR1(ctx, &p.locker, func() bool {
		return p.peer != nil
	})
}

func (p *Pad) IsFlushing(ctx context.Context) bool {
	return xsync.DoR1(ctx, &p.locker, func() bool {
		return p.flushing
	})
}

// Caps returns the caps last set or announced on the pad; before that it
// returns the template caps.
func (p *Pad) Caps() types.Caps {
	if caps := xatomic.LoadPointer(&p.caps); caps != nil {
		return *caps
	}
	return p.Template.Caps
}

// HasCurrentCaps reports whether caps were set on the pad.
func (p *Pad) HasCurrentCaps() bool {
	return xatomic.LoadPointer(&p.caps) != nil
}

// SetCaps sets the pad caps without sending an event. Pads with fixed caps
// accept only caps compatible with their template.
func (p *Pad) SetCaps(caps types.Caps) error {
	if p.FixedCaps && !caps.CanIntersect(p.Template.Caps) {
		return ErrIncompatibleCaps{Pad: p.Name(), Caps: caps, Template: p.Template.Caps}
	}
	xatomic.StorePointer(&p.caps, &caps)
	return nil
}

func (p *Pad) checkPush(ctx context.Context) (Peer, types.FlowReturn) {
	return xsync.DoR2(ctx, &p.locker, func() (Peer, types.FlowReturn) {
		switch {
		case p.flushing:
			return nil, types.FlowFlushing
		case p.eos:
			return nil, types.FlowEOS
		case p.peer == nil:
			return nil, types.FlowNotLinked
		}
		return p.peer, types.FlowOK
	})
}

// Push hands the buffer to the peer and returns the peer's verdict. The
// buffer is owned by the peer afterwards, even on rejection; if the pad
// refuses the buffer itself, the buffer is released.
func (p *Pad) Push(ctx context.Context, buf *packet.Buffer) types.FlowReturn {
	mediaType := p.Caps().MediaType()
	size := uint64(buf.Size())
	peer, ret := p.checkPush(ctx)
	if ret != types.FlowOK {
		p.Counters.Rejected.Increment(mediaType, size)
		buf.Release()
		return ret
	}
	ret = peer.Chain(ctx, buf)
	if ret != types.FlowOK {
		p.Counters.Rejected.Increment(mediaType, size)
		return ret
	}
	p.Counters.Sent.Increment(mediaType, size)
	return ret
}

// PushEvent forwards the event to the peer. Sticky events are stored and
// count as accepted when the pad is not linked.
func (p *Pad) PushEvent(ctx context.Context, ev event.Event) bool {
	if ev.Type == event.TypeCaps {
		if err := p.SetCaps(ev.Caps); err != nil {
			logger.Errorf(ctx, "%v", err)
			return false
		}
	}
	peer := xsync.DoR1(ctx, &p.locker, func() Peer {
		switch ev.Type {
		case event.TypeFlushStart:
			p.flushing = true
		case event.TypeFlushStop:
			p.flushing = false
			p.eos = false
			p.dropStickyLocked(event.TypeEOS, event.TypeSegment)
		case event.TypeEOS:
			p.eos = true
		}
		if ev.Type.IsSticky() {
			p.storeStickyLocked(ev)
		}
		return p.peer
	})
	if peer == nil {
		return ev.Type.IsSticky()
	}
	return peer.Event(ctx, ev)
}

func (p *Pad) storeStickyLocked(ev event.Event) {
	for idx := range p.sticky {
		if p.sticky[idx].Type == ev.Type {
			p.sticky[idx] = ev
			return
		}
	}
	p.sticky = append(p.sticky, ev)
}

func (p *Pad) dropStickyLocked(ts ...event.Type) {
	kept := p.sticky[:0]
	for _, ev := range p.sticky {
		drop := false
		for _, t := range ts {
			if ev.Type == t {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, ev)
		}
	}
	p.sticky = kept
}

// StickyEvent returns the stored sticky event of the given type.
func (p *Pad) StickyEvent(ctx context.Context, t event.Type) (event.Event, bool) {
	return xsync.DoR2(ctx, &p.locker, func() (event.Event, bool) {
		for _, ev := range p.sticky {
			if ev.Type == t {
				return ev, true
			}
		}
		return event.Event{}, false
	})
}
