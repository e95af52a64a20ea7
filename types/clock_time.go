// clock_time.go defines ClockTime, the timestamp unit carried by buffers.

package types

import (
	"fmt"
	"math"
	"time"
)

// ClockTime is a timestamp or a duration in nanoseconds.
type ClockTime uint64

const (
	// ClockTimeNone marks a timestamp or a duration as unset.
	ClockTimeNone = ClockTime(math.MaxUint64)

	// OffsetNone marks a buffer offset as unset.
	OffsetNone = uint64(math.MaxUint64)
)

func ClockTimeFromDuration(d time.Duration) ClockTime {
	if d < 0 {
		return ClockTimeNone
	}
	return ClockTime(d)
}

func (t ClockTime) IsValid() bool {
	return t != ClockTimeNone
}

// Duration converts the value to time.Duration; the second value is false
// if the value is unset or does not fit into time.Duration.
func (t ClockTime) Duration() (time.Duration, bool) {
	if !t.IsValid() || t > ClockTime(math.MaxInt64) {
		return 0, false
	}
	return time.Duration(t), true
}

func (t ClockTime) String() string {
	if !t.IsValid() {
		return "none"
	}
	ns := uint64(t)
	sec := ns / uint64(time.Second)
	return fmt.Sprintf(
		"%d:%02d:%02d.%09d",
		sec/3600, (sec/60)%60, sec%60,
		ns%uint64(time.Second),
	)
}
