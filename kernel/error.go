package kernel

import (
	"errors"
	"fmt"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/types"
)

// ErrFlow is returned when a pad refused a buffer; errors.Is matches the
// FlowReturn value.
type ErrFlow struct {
	Pad    string
	Return types.FlowReturn
}

func (e ErrFlow) Error() string {
	return fmt.Sprintf("%s flow error: %s", e.Pad, e.Return)
}

func (e ErrFlow) Unwrap() error {
	return e.Return
}

// FlowReturnOf extracts the FlowReturn from an error returned by a kernel:
// FlowOK for nil, FlowError for errors that carry none.
func FlowReturnOf(err error) types.FlowReturn {
	if err == nil {
		return types.FlowOK
	}
	var errFlow ErrFlow
	if errors.As(err, &errFlow) {
		return errFlow.Return
	}
	return types.FlowError
}

type ErrAllocation struct {
	Size int
	Err  error
}

func (e ErrAllocation) Error() string {
	return fmt.Sprintf("unable to allocate a %d-byte buffer: %v", e.Size, e.Err)
}

func (e ErrAllocation) Unwrap() error {
	return e.Err
}

type ErrEventRejected struct {
	Pad   string
	Event event.Event
}

func (e ErrEventRejected) Error() string {
	return fmt.Sprintf("pad '%s' rejected event %s", e.Pad, e.Event)
}

type ErrClosed struct{}

func (ErrClosed) Error() string {
	return "the kernel is closed"
}

type ErrNilBuffer struct{}

func (ErrNilBuffer) Error() string {
	return "nil buffer"
}
