// allocator.go implements buffer allocation backed by a memory pool.

package packet

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avtimestamp/pool"
	"github.com/xaionaro-go/avtimestamp/types"
)

// Allocator provides memory for new buffers; the host owns it.
type Allocator interface {
	Allocate(ctx context.Context, size int) (*Buffer, error)
}

type ErrTooLarge struct {
	Size    int
	MaxSize int
}

func (e ErrTooLarge) Error() string {
	return fmt.Sprintf("cannot allocate %d bytes: the limit is %d", e.Size, e.MaxSize)
}

type ErrInvalidSize struct {
	Size int
}

func (e ErrInvalidSize) Error() string {
	return fmt.Sprintf("invalid buffer size: %d", e.Size)
}

// Pool is the default Allocator. Buffers allocated from it return their
// memory on Release.
type Pool struct {
	// MaxSize limits a single allocation; zero means no limit.
	MaxSize int

	bytes   *pool.Bytes
	buffers *pool.Pool[Buffer]
}

var _ Allocator = (*Pool)(nil)

func NewPool(maxSize int) *Pool {
	return &Pool{
		MaxSize: maxSize,
		bytes:   pool.NewBytes(),
		buffers: pool.NewPool(
			func() *Buffer { return &Buffer{} },
			func(b *Buffer) { *b = Buffer{} },
		),
	}
}

// DefaultPool serves allocations when no allocator is configured.
var DefaultPool = NewPool(0)

func (p *Pool) Allocate(
	ctx context.Context,
	size int,
) (*Buffer, error) {
	if size < 0 {
		return nil, ErrInvalidSize{Size: size}
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		return nil, ErrTooLarge{Size: size, MaxSize: p.MaxSize}
	}
	b := p.buffers.Get()
	b.Payload = p.bytes.Get(size)
	b.PTS = types.ClockTimeNone
	b.DTS = types.ClockTimeNone
	b.Duration = types.ClockTimeNone
	b.Offset = types.OffsetNone
	b.OffsetEnd = types.OffsetNone
	b.release = p.put
	return b, nil
}

func (p *Pool) put(b *Buffer) {
	p.bytes.Put(b.Payload)
	p.buffers.Put(b)
}

// AllocatorFunc adapts a function to Allocator.
type AllocatorFunc func(ctx context.Context, size int) (*Buffer, error)

func (f AllocatorFunc) Allocate(ctx context.Context, size int) (*Buffer, error) {
	return f(ctx, size)
}
