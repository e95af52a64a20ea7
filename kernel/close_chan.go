package kernel

import (
	"context"

	"go.uber.org/atomic"

	"github.com/xaionaro-go/avtimestamp/logger"
)

// closeChan is the closed-state of a kernel: once closed, it stays closed
// and CloseChan is readable forever.
type closeChan struct {
	closed atomic.Bool
	c      chan struct{}
}

func newCloseChan() *closeChan {
	return &closeChan{c: make(chan struct{})}
}

func (c *closeChan) CloseChan() <-chan struct{} {
	return c.c
}

// signalClose reports whether this call is the one that closed it.
func (c *closeChan) signalClose(ctx context.Context) bool {
	if !c.closed.CompareAndSwap(false, true) {
		logger.Tracef(ctx, "already closed")
		return false
	}
	logger.Debugf(ctx, "closing")
	close(c.c)
	return true
}

func (c *closeChan) IsClosed() bool {
	return c.closed.Load()
}
