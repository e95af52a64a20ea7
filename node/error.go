package node

import "fmt"

type Error struct {
	Node      string
	ItemIndex uint64
	Item      string
	Err       error
}

func (e Error) Error() string {
	return fmt.Sprintf("node '%s' failed on item #%d (%s): %v", e.Node, e.ItemIndex, e.Item, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

type ErrAlreadyStarted struct{}

func (ErrAlreadyStarted) Error() string {
	return "already started serving"
}

type ErrEmptyItem struct{}

func (ErrEmptyItem) Error() string {
	return "the item carries neither a buffer nor an event"
}

type ErrNoSuchPad struct {
	Pad string
}

func (e ErrNoSuchPad) Error() string {
	return fmt.Sprintf("no src pad named '%s'", e.Pad)
}
