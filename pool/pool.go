// pool.go implements generic object pools used for buffer memory.

// Package pool provides generic object pools.
package pool

import (
	"math/bits"
	"sync"
)

// ReuseMemory may be switched off to make every Get allocate (useful when
// hunting use-after-put bugs).
var ReuseMemory = true

type Pool[T any] struct {
	sync.Pool
	ResetFunc func(*T)
}

func NewPool[T any](
	allocFunc func() *T,
	resetFunc func(*T),
) *Pool[T] {
	return &Pool[T]{
		Pool: sync.Pool{
			New: func() any {
				return allocFunc()
			},
		},
		ResetFunc: resetFunc,
	}
}

func (p *Pool[T]) Get() *T {
	if !ReuseMemory {
		return p.Pool.New().(*T)
	}
	return p.Pool.Get().(*T)
}

func (p *Pool[T]) Put(items ...*T) {
	if !ReuseMemory {
		return
	}
	for _, item := range items {
		if p.ResetFunc != nil {
			p.ResetFunc(item)
		}
		p.Pool.Put(item)
	}
}

const maxSizeClass = 32

// Bytes is a pool of byte slices bucketed by power-of-two capacity.
type Bytes struct {
	classes [maxSizeClass + 1]sync.Pool
}

func NewBytes() *Bytes {
	return &Bytes{}
}

func sizeClass(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len(uint(size - 1))
}

// Get returns a slice of length size; its capacity may be larger.
func (p *Bytes) Get(size int) []byte {
	class := sizeClass(size)
	if class > maxSizeClass || !ReuseMemory {
		return make([]byte, size)
	}
	if v, ok := p.classes[class].Get().(*[]byte); ok {
		return (*v)[:size]
	}
	return make([]byte, size, 1<<class)
}

// Put returns a slice for reuse; slices with a capacity that is not a
// power of two are dropped.
func (p *Bytes) Put(b []byte) {
	if !ReuseMemory {
		return
	}
	c := cap(b)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	class := sizeClass(c)
	if class > maxSizeClass {
		return
	}
	b = b[:0]
	p.classes[class].Put(&b)
}
