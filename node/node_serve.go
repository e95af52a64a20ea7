package node

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/xcontext"
	"github.com/xaionaro-go/xsync"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/logger"
)

// Serve reads items from inputCh and processes them in order until the
// channel is closed, the context is cancelled or (unless configured
// otherwise) an EOS event was processed. Per-item errors are sent to errCh
// if it is not nil; the send never blocks.
//
// When inputCh is closed without an EOS, Serve sends an EOS itself, so the
// downstream always sees the end of the stream.
func (n *Node[K]) Serve(
	ctx context.Context,
	cfg ServeConfig,
	inputCh <-chan Item,
	errCh chan<- Error,
) (_err error) {
	ctx = belt.WithField(ctx, "node", n.String())
	logger.Debugf(ctx, "Serve")
	defer func() { logger.Debugf(ctx, "/Serve: %v", _err) }()

	if err := xsync.DoR1(ctx, &n.Locker, func() error {
		if n.IsServing {
			return ErrAlreadyStarted{}
		}
		n.IsServing = true
		return nil
	}); err != nil {
		return err
	}
	defer n.Locker.Do(xcontext.DetachDone(ctx), func() {
		n.IsServing = false
	})

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Errorf(ctx, "got panic in node %s: %v:\n%s\n", n, r, debug.Stack())
		_err = errors.Join(_err, ErrPanic{Value: r})
	}()

	sendErr := func(err error) {
		logger.Debugf(ctx, "sendErr(%v)", err)
		if errCh == nil {
			return
		}
		var nodeErr Error
		if !errors.As(err, &nodeErr) {
			nodeErr = Error{Node: n.String(), Err: err}
		}
		select {
		case errCh <- nodeErr:
		default:
			logger.Errorf(ctx, "error queue is full, cannot send error: '%v'", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-inputCh:
			if !ok {
				logger.Debugf(ctx, "the input is closed, sending EOS")
				if err := n.Process(xcontext.DetachDone(ctx), EventItem(event.NewEOS())); err != nil {
					sendErr(err)
					return err
				}
				return nil
			}
			err := n.Process(ctx, item)
			if err != nil {
				sendErr(err)
				if cfg.StopOnError {
					return err
				}
			}
			if item.Event != nil && item.Event.Type == event.TypeEOS && !cfg.ContinueAfterEOS {
				return nil
			}
		}
	}
}

type ErrPanic struct {
	Value any
}

func (e ErrPanic) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
