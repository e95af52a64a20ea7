// Package event defines the control events flowing alongside buffers.
package event

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/xaionaro-go/avtimestamp/types"
)

type Type int

const (
	TypeUndefined = Type(iota)
	TypeStreamStart
	TypeCaps
	TypeSegment
	TypeFlushStart
	TypeFlushStop
	TypeEOS
	TypeCustom
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeStreamStart:
		return "stream-start"
	case TypeCaps:
		return "caps"
	case TypeSegment:
		return "segment"
	case TypeFlushStart:
		return "flush-start"
	case TypeFlushStop:
		return "flush-stop"
	case TypeEOS:
		return "eos"
	case TypeCustom:
		return "custom"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// IsSticky reports whether the last event of this type is remembered by a
// pad and replayed to newly linked peers.
func (t Type) IsSticky() bool {
	switch t {
	case TypeStreamStart, TypeCaps, TypeSegment, TypeEOS:
		return true
	}
	return false
}

// IsSerialized reports whether the event is ordered with buffers.
func (t Type) IsSerialized() bool {
	return t != TypeFlushStart
}

type Event struct {
	Type   Type
	Seqnum uint32

	// Caps is set for TypeCaps.
	Caps types.Caps

	// StreamID is set for TypeStreamStart.
	StreamID string

	// Start is set for TypeSegment.
	Start types.ClockTime

	// Name is set for TypeCustom.
	Name string
}

var nextSeqnum atomic.Uint32

func newEvent(t Type) Event {
	return Event{
		Type:   t,
		Seqnum: nextSeqnum.Inc(),
	}
}

func NewStreamStart(streamID string) Event {
	ev := newEvent(TypeStreamStart)
	ev.StreamID = streamID
	return ev
}

func NewCaps(caps types.Caps) Event {
	ev := newEvent(TypeCaps)
	ev.Caps = caps
	return ev
}

func NewSegment(start types.ClockTime) Event {
	ev := newEvent(TypeSegment)
	ev.Start = start
	return ev
}

func NewFlushStart() Event {
	return newEvent(TypeFlushStart)
}

func NewFlushStop() Event {
	return newEvent(TypeFlushStop)
}

func NewEOS() Event {
	return newEvent(TypeEOS)
}

func NewCustom(name string) Event {
	ev := newEvent(TypeCustom)
	ev.Name = name
	return ev
}

// WithCaps returns a copy of a caps event carrying other caps; the seqnum
// is kept so the copy is recognizable as the same event.
func (ev Event) WithCaps(caps types.Caps) Event {
	ev.Caps = caps
	return ev
}

func (ev Event) String() string {
	switch ev.Type {
	case TypeCaps:
		return fmt.Sprintf("caps(%s)", ev.Caps)
	case TypeStreamStart:
		return fmt.Sprintf("stream-start(%s)", ev.StreamID)
	case TypeSegment:
		return fmt.Sprintf("segment(start:%s)", ev.Start)
	case TypeCustom:
		return fmt.Sprintf("custom(%s)", ev.Name)
	default:
		return ev.Type.String()
	}
}
