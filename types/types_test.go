package types

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFlowReturnString(t *testing.T) {
	require.Equal(t, "not-linked", FlowNotLinked.String())
	require.Equal(t, "flushing", FlowFlushing.String())
	require.Equal(t, "FlowReturn(-42)", FlowReturn(-42).String())
	require.Equal(t, "text flow error: not-linked", fmt.Sprintf("text flow error: %s", FlowNotLinked))
	require.Equal(t, "flushing", FlowFlushing.Error())
	require.EqualError(t, fmt.Errorf("push: %w", FlowEOS), "push: eos")
	require.True(t, FlowOK.IsOK())
	require.False(t, FlowFlushing.IsFatal())
	require.True(t, FlowNotNegotiated.IsFatal())
	require.True(t, FlowError.IsFatal())
}

func TestClockTime(t *testing.T) {
	require.Equal(t, "none", ClockTimeNone.String())
	require.Equal(t, "1:01:01.000000033", ClockTime(time.Hour+time.Minute+time.Second+33).String())

	d, ok := ClockTime(66 * time.Millisecond).Duration()
	require.True(t, ok)
	require.Equal(t, 66*time.Millisecond, d)

	_, ok = ClockTimeNone.Duration()
	require.False(t, ok)

	require.Equal(t, ClockTimeNone, ClockTimeFromDuration(-1))
}

func TestCaps(t *testing.T) {
	require.True(t, CapsAny.IsAny())
	require.Equal(t, MediaTypeVideo, CapsVideoRaw.MediaType())
	require.Equal(t, MediaTypeText, CapsTextUTF8.MediaType())
	require.Equal(t, MediaTypeUnknown, CapsAny.MediaType())

	format, ok := Caps("text/x-raw, format= { utf8 }").Field("format")
	require.True(t, ok)
	require.Equal(t, "utf8", format)

	_, ok = CapsVideoRaw.Field("format")
	require.False(t, ok)

	require.True(t, CapsAny.CanIntersect(CapsTextUTF8))
	require.True(t, Caps("video/x-raw, width=320").CanIntersect(CapsVideoRaw))
	require.False(t, CapsVideoRaw.CanIntersect(CapsTextUTF8))
}

func TestCountersToStats(t *testing.T) {
	c := NewCounters()
	c.Buffers.Received.Increment(MediaTypeVideo, 100)
	c.Buffers.Received.Increment(MediaTypeVideo, 50)
	c.Buffers.Sent.Increment(MediaTypeText, 10)

	stats := c.ToStats()
	require.Equal(t, StatisticsItem{Count: 2, Bytes: 150}, stats.Buffers.Received.Video)
	require.Equal(t, StatisticsItem{Count: 1, Bytes: 10}, stats.Buffers.Sent.Text)
	require.Equal(t, uint64(2), c.Buffers.Received.TotalCount())
	require.Equal(t, uint64(150), c.Buffers.Received.TotalBytes())

	b, err := json.Marshal(stats.Buffers.Sent)
	require.NoError(t, err)
	require.JSONEq(t, `{"Unknown":{},"Other":{},"Video":{},"Audio":{},"Text":{"Count":1,"Bytes":10}}`, string(b))
}
