package kernel

import (
	"time"
)

// Clock is the source of wall-clock time for records.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

var _ Clock = SystemClock{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
