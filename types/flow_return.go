// flow_return.go defines FlowReturn, the result of pushing a buffer downstream.

package types

import (
	"fmt"
)

// FlowReturn is the status a downstream peer reports for a pushed buffer.
type FlowReturn int

const (
	FlowOK            = FlowReturn(0)
	FlowNotLinked     = FlowReturn(-1)
	FlowFlushing      = FlowReturn(-2)
	FlowEOS           = FlowReturn(-3)
	FlowNotNegotiated = FlowReturn(-4)
	FlowError         = FlowReturn(-5)
	FlowNotSupported  = FlowReturn(-6)
)

func (r FlowReturn) String() string {
	switch r {
	case FlowOK:
		return "ok"
	case FlowNotLinked:
		return "not-linked"
	case FlowFlushing:
		return "flushing"
	case FlowEOS:
		return "eos"
	case FlowNotNegotiated:
		return "not-negotiated"
	case FlowError:
		return "error"
	case FlowNotSupported:
		return "not-supported"
	default:
		return fmt.Sprintf("FlowReturn(%d)", int(r))
	}
}

// IsOK is true only for FlowOK.
func (r FlowReturn) IsOK() bool {
	return r == FlowOK
}

// IsFatal reports whether the status means the stream cannot continue
// (as opposed to being unlinked, flushing or finished).
func (r FlowReturn) IsFatal() bool {
	return r <= FlowNotNegotiated
}

// Error makes a non-OK FlowReturn usable as an error value; "%s" renders
// the same name as String.
func (r FlowReturn) Error() string {
	return r.String()
}
