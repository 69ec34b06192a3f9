// Package bufpool provides a pool of reusable byte buffers for the
// 4 MiB streaming reads of crc32np's Plain CRC driver, to avoid a
// fresh heap allocation per call.
package bufpool

import (
	"git.lukeshu.com/go/typedsync"
)

// Pool hands out []byte slices of a requested size, reusing a
// previously Put slice when its capacity is big enough instead of
// allocating.
type Pool struct {
	inner typedsync.Pool[[]byte]
}

// Get returns a slice of length size, either freshly allocated or
// recycled from a prior Put.
func (p *Pool) Get(size int) []byte {
	if size == 0 {
		return nil
	}
	ret, ok := p.inner.Get()
	if ok && cap(ret) >= size {
		ret = ret[:size]
	} else {
		ret = make([]byte, size)
	}
	return ret
}

// Put returns slice to the pool for later reuse.
func (p *Pool) Put(slice []byte) {
	if slice == nil {
		return
	}
	p.inner.Put(slice)
}
