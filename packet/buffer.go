// buffer.go defines Buffer, the timed unit of payload flowing between pads.

// Package packet provides the timed buffer type and its allocators.
package packet

import (
	"fmt"

	"github.com/xaionaro-go/avtimestamp/types"
)

type Flags uint32

const (
	FlagDiscont = Flags(1 << iota)
	FlagDeltaUnit
	FlagGap
	FlagHeader
)

// Buffer is an opaque payload plus its timing metadata.
type Buffer struct {
	Payload []byte

	PTS      types.ClockTime
	DTS      types.ClockTime
	Duration types.ClockTime

	// Offset is media specific; for video it is the frame number.
	Offset    uint64
	OffsetEnd uint64

	Flags Flags

	// release is set by the allocator that produced the buffer.
	release func(*Buffer)
}

// NewBuffer wraps the payload into a buffer with all timing fields unset.
func NewBuffer(payload []byte) *Buffer {
	return &Buffer{
		Payload:   payload,
		PTS:       types.ClockTimeNone,
		DTS:       types.ClockTimeNone,
		Duration:  types.ClockTimeNone,
		Offset:    types.OffsetNone,
		OffsetEnd: types.OffsetNone,
	}
}

func (b *Buffer) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Payload)
}

// CopyMetadataFrom copies timestamps, duration and offsets; unset values are
// copied verbatim.
func (b *Buffer) CopyMetadataFrom(src *Buffer) {
	b.PTS = src.PTS
	b.DTS = src.DTS
	b.Duration = src.Duration
	b.Offset = src.Offset
	b.OffsetEnd = src.OffsetEnd
}

// SameTiming reports whether both buffers carry identical timing metadata.
func (b *Buffer) SameTiming(other *Buffer) bool {
	return b.PTS == other.PTS &&
		b.DTS == other.DTS &&
		b.Duration == other.Duration &&
		b.Offset == other.Offset
}

// Clone deep-copies the buffer; the copy is not owned by any allocator.
func (b *Buffer) Clone() *Buffer {
	result := &Buffer{
		Payload: make([]byte, len(b.Payload)),
		Flags:   b.Flags,
	}
	copy(result.Payload, b.Payload)
	result.CopyMetadataFrom(b)
	return result
}

// Release hands the buffer memory back to its allocator. The buffer must
// not be used afterwards.
func (b *Buffer) Release() {
	if b == nil || b.release == nil {
		return
	}
	release := b.release
	b.release = nil
	release(b)
}

func (b *Buffer) String() string {
	if b == nil {
		return "<nil>"
	}
	return fmt.Sprintf(
		"Buffer{size:%d, pts:%s, dts:%s, dur:%s, offset:%s}",
		len(b.Payload), b.PTS, b.DTS, b.Duration, offsetString(b.Offset),
	)
}

func offsetString(offset uint64) string {
	if offset == types.OffsetNone {
		return "none"
	}
	return fmt.Sprintf("%d", offset)
}
