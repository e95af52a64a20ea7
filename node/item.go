package node

import (
	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/packet"
)

// Item is what arrives at the node input: either a buffer or an event.
type Item struct {
	Buffer *packet.Buffer
	Event  *event.Event
}

func BufferItem(buf *packet.Buffer) Item {
	return Item{Buffer: buf}
}

func EventItem(ev event.Event) Item {
	return Item{Event: &ev}
}

func (item Item) String() string {
	switch {
	case item.Buffer != nil:
		return item.Buffer.String()
	case item.Event != nil:
		return item.Event.String()
	default:
		return "<empty>"
	}
}
