package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xaionaro-go/avtimestamp/config"
	"github.com/xaionaro-go/avtimestamp/kernel"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/node"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/sink"
)

type outputs []*sink.Writer

func (o outputs) Close(ctx context.Context) {
	for _, w := range o {
		if err := w.Close(ctx); err != nil {
			logger.Errorf(ctx, "unable to close an output: %v", err)
		}
	}
}

// stdout must survive closing the writer that wraps it.
type stdoutWriter struct {
	io.Writer
}

func openOutputs(
	ctx context.Context,
	cfg config.Config,
	n *node.Node[*kernel.Timestamper],
) (_ret outputs, _err error) {
	var result outputs
	defer func() {
		if _err != nil {
			result.Close(ctx)
		}
	}()
	for _, out := range []struct {
		PadName string
		Path    string
		Records bool
	}{
		{kernel.PadNameVideoSrc, cfg.VideoOutput, false},
		{kernel.PadNameTextSrc, cfg.TextOutput, true},
	} {
		var peer pad.Peer
		switch out.Path {
		case config.OutputDiscard:
			peer = sink.Discard{}
		default:
			var w io.Writer = stdoutWriter{os.Stdout}
			if out.Path != config.OutputStdout {
				f, err := os.Create(out.Path)
				if err != nil {
					return nil, fmt.Errorf("unable to create '%s': %w", out.Path, err)
				}
				w = f
			}
			newWriter := sink.NewWriter
			if out.Records {
				newWriter = sink.NewRecordWriter
			}
			writer := newWriter(w)
			result = append(result, writer)
			peer = writer
		}
		if err := n.Link(ctx, out.PadName, peer); err != nil {
			return nil, err
		}
	}
	return result, nil
}
