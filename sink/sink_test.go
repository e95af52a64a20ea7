package sink

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/types"
)

func TestCollector(t *testing.T) {
	ctx := context.Background()
	c := NewCollector()
	buf := packet.NewBuffer([]byte("a"))
	require.Equal(t, types.FlowOK, c.Chain(ctx, buf))

	c.Reject(types.FlowFlushing)
	require.Equal(t, types.FlowFlushing, c.Chain(ctx, packet.NewBuffer(nil)))
	c.Reject(types.FlowOK)

	require.True(t, c.Event(ctx, event.NewEOS()))
	<-c.EOSChan()
	require.Equal(t, []*packet.Buffer{buf}, c.Buffers())
	require.Equal(t, []event.Type{event.TypeEOS}, c.EventTypes())
}

func TestRecordWriter(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	w := NewRecordWriter(&out)

	require.Equal(t, types.FlowOK, w.Chain(ctx, packet.NewBuffer([]byte("0,1700000000000\n"))))
	require.Equal(t, types.FlowOK, w.Chain(ctx, packet.NewBuffer([]byte("1,1700000000033\n"))))
	require.Equal(t, types.FlowError, w.Chain(ctx, packet.NewBuffer([]byte("garbage"))))
	require.Empty(t, out.String(), "nothing is written before a flush")

	require.True(t, w.Event(ctx, event.NewEOS()))
	<-w.EOSChan()
	require.Equal(t, "0,1700000000000\n1,1700000000033\n", out.String())
	require.Equal(t, uint64(2), w.BuffersWritten.Load())
	require.Equal(t, uint64(32), w.BytesWritten.Load())
	require.NoError(t, w.Close(ctx))
}

func TestWriterFlushStartDropsPending(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	w := NewWriter(&out)
	require.Equal(t, types.FlowOK, w.Chain(ctx, packet.NewBuffer([]byte("dropped"))))
	require.True(t, w.Event(ctx, event.NewFlushStart()))
	require.Equal(t, types.FlowOK, w.Chain(ctx, packet.NewBuffer([]byte("kept"))))
	require.NoError(t, w.Flush(ctx))
	require.Equal(t, "kept", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriterError(t *testing.T) {
	ctx := context.Background()
	w := NewWriter(failingWriter{})
	require.Equal(t, types.FlowOK, w.Chain(ctx, packet.NewBuffer([]byte("x"))))
	require.False(t, w.Event(ctx, event.NewEOS()))
	require.Equal(t, types.FlowError, w.Chain(ctx, packet.NewBuffer([]byte("y"))))
	require.Error(t, w.Close(ctx))
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, types.FlowOK, Discard{}.Chain(ctx, packet.NewBuffer([]byte("x"))))
	require.True(t, Discard{}.Event(ctx, event.NewEOS()))
}
