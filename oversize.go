package rdbuf

import (
	"fmt"

	"github.com/rdbuf/rdbuf/pkg/pool"
)

// AllocateOversize hands off to a temporary, larger instance when a
// single field exceeds this buffer's capacity. The unread tail moves to
// the new instance and this buffer rebases to empty, as if the tail had
// been consumed. The caller reads from the returned instance until the
// field is done, then Disposes it; the primary buffer never grows.
func (r *ReadBuffer) AllocateOversize(n int) *ReadBuffer {
	r.mustLive()
	if n <= len(r.storage) {
		panic(fmt.Sprintf("rdbuf: oversize request %d fits existing capacity %d", n, len(r.storage)))
	}

	nb := bufferPool.Get().(*ReadBuffer)
	*nb = ReadBuffer{
		tr:       r.tr,
		conn:     r.conn,
		metrics:  r.metrics,
		storage:  pool.GetBlock(n),
		timeout:  r.timeout,
		tc:       newTimeoutController(),
		strict:   r.strict,
		lossy:    r.lossy,
		oversize: true,
	}
	nb.filled = copy(nb.storage, r.storage[r.readPos:r.filled])

	r.flushed += uint64(r.filled)
	r.readPos, r.filled = 0, 0
	return nb
}

// Oversize reports whether this instance was created by
// AllocateOversize for a single spilled field.
func (r *ReadBuffer) Oversize() bool {
	return r.oversize
}
