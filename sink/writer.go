package sink

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/kernel"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/types"
)

// Writer writes buffer payloads to an io.Writer, like a file sink. Output is
// buffered and flushed on EOS and on Close.
type Writer struct {
	// ValidateRecords makes the writer refuse (with FlowError) payloads
	// that are not exactly one text record.
	ValidateRecords bool

	locker  xsync.Mutex
	out     io.Writer
	w       *bufio.Writer
	closer  io.Closer
	lastErr error

	BytesWritten   atomic.Uint64
	BuffersWritten atomic.Uint64

	eosOnce sync.Once
	eosCh   chan struct{}
}

var _ pad.Peer = (*Writer)(nil)

// NewWriter wraps w; if w is an io.Closer it is closed by Close.
func NewWriter(w io.Writer) *Writer {
	result := &Writer{
		out:   w,
		w:     bufio.NewWriter(w),
		eosCh: make(chan struct{}),
	}
	if closer, ok := w.(io.Closer); ok {
		result.closer = closer
	}
	return result
}

// NewRecordWriter is a Writer for the companion text stream (CSV lines).
func NewRecordWriter(w io.Writer) *Writer {
	result := NewWriter(w)
	result.ValidateRecords = true
	return result
}

func (w *Writer) Chain(ctx context.Context, buf *packet.Buffer) types.FlowReturn {
	defer buf.Release()
	if w.ValidateRecords {
		if _, err := kernel.ParseRecord(buf.Payload); err != nil {
			logger.Errorf(ctx, "%v", err)
			return types.FlowError
		}
	}
	return xsync.DoR1(ctx, &w.locker, func() types.FlowReturn {
		if w.lastErr != nil {
			return types.FlowError
		}
		n, err := w.w.Write(buf.Payload)
		w.BytesWritten.Add(uint64(n))
		if err != nil {
			w.lastErr = err
			logger.Errorf(ctx, "unable to write: %v", err)
			return types.FlowError
		}
		w.BuffersWritten.Inc()
		return types.FlowOK
	})
}

func (w *Writer) Event(ctx context.Context, ev event.Event) bool {
	switch ev.Type {
	case event.TypeEOS:
		err := w.Flush(ctx)
		w.eosOnce.Do(func() { close(w.eosCh) })
		return err == nil
	case event.TypeFlushStart:
		// drop whatever was not written out yet
		w.locker.Do(ctx, func() {
			w.w.Reset(w.out)
		})
	}
	return true
}

func (w *Writer) Flush(ctx context.Context) error {
	return xsync.DoR1(ctx, &w.locker, func() error {
		if w.lastErr != nil {
			return w.lastErr
		}
		if err := w.w.Flush(); err != nil {
			w.lastErr = err
		}
		return w.lastErr
	})
}

// EOSChan is closed once an EOS event arrives (and the data was flushed).
func (w *Writer) EOSChan() <-chan struct{} {
	return w.eosCh
}

func (w *Writer) Close(ctx context.Context) error {
	err := w.Flush(ctx)
	if w.closer != nil {
		if closeErr := w.closer.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
