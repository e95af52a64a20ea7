// Package source produces streams of items to feed a node with.
package source

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avtimestamp/node"
)

// Abstract is a producer of a single stream. Generate sends the stream
// (stream-start, caps, segment, buffers, EOS) into outputCh and returns
// when the stream is over; it never closes outputCh.
type Abstract interface {
	fmt.Stringer
	Generate(ctx context.Context, outputCh chan<- node.Item) error
}

func send(
	ctx context.Context,
	outputCh chan<- node.Item,
	item node.Item,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case outputCh <- item:
		return nil
	}
}
