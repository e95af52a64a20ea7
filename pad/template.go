// Package pad implements the connection points through which buffers and
// events leave an element.
package pad

import (
	"fmt"

	"github.com/xaionaro-go/avtimestamp/types"
)

type Direction int

const (
	DirectionUnknown = Direction(iota)
	DirectionSink
	DirectionSrc
)

func (d Direction) String() string {
	switch d {
	case DirectionUnknown:
		return "unknown"
	case DirectionSink:
		return "sink"
	case DirectionSrc:
		return "src"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

type Presence int

const (
	PresenceAlways = Presence(iota)
	PresenceSometimes
	PresenceRequest
)

func (p Presence) String() string {
	switch p {
	case PresenceAlways:
		return "always"
	case PresenceSometimes:
		return "sometimes"
	case PresenceRequest:
		return "request"
	default:
		return fmt.Sprintf("Presence(%d)", int(p))
	}
}

// Template declares a pad an element exposes.
type Template struct {
	Name      string
	Direction Direction
	Presence  Presence
	Caps      types.Caps
}

func (t Template) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", t.Name, t.Direction, t.Presence, t.Caps)
}
