// Package rdbuf implements the buffered, timeout-aware read side of a
// database client connection. It sits between a wire-protocol decoder
// and the raw byte stream, delivering exactly the bytes a message needs
// while minimizing transport reads, and coordinates cooperative query
// cancellation with the owning connection.
package rdbuf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rdbuf/rdbuf/codec/text"
	"github.com/rdbuf/rdbuf/pkg/pool"
	"github.com/rdbuf/rdbuf/transport"
)

// ReadBuffer owns a fixed-capacity byte buffer over a Transport.
//
// A ReadBuffer is used by exactly one logical connection at a time and
// performs no internal locking; the protocol decoder serializes all
// access. The buffer is never resized in place: a field larger than the
// capacity spills over into a second instance, see AllocateOversize.
type ReadBuffer struct {
	tr      transport.Transport
	conn    Conn
	metrics Metrics

	storage []byte
	readPos int // next unread byte, readPos <= filled
	filled  int // one past the last valid byte, filled <= cap

	// bytes permanently retired from the buffer; wraps on overflow by
	// design. Cumulative stream position = flushed + readPos.
	flushed uint64

	timeout time.Duration
	tc      *TimeoutController

	strict text.Codec
	lossy  text.Codec

	oversize bool
	disposed bool
}

var bufferPool = sync.Pool{
	New: func() interface{} { return &ReadBuffer{} },
}

// New returns a ReadBuffer over tr. The backing array is rented from a
// shared block pool and returned on Dispose.
func New(tr transport.Transport, opts ...Option) *ReadBuffer {
	ops := defaultOptions()
	for _, op := range opts {
		op(&ops)
	}
	if ops.capacity < MinBufferSize {
		ops.capacity = MinBufferSize
	}
	r := bufferPool.Get().(*ReadBuffer)
	*r = ReadBuffer{
		tr:      tr,
		conn:    ops.conn,
		metrics: ops.metrics,
		storage: pool.GetBlock(ops.capacity),
		timeout: ops.timeout,
		tc:      newTimeoutController(),
		strict:  ops.strict,
		lossy:   ops.lossy,
	}
	return r
}

// ReadBytesLeft returns the number of buffered, unread bytes.
func (r *ReadBuffer) ReadBytesLeft() int {
	return r.filled - r.readPos
}

// Capacity returns the size of the backing array.
func (r *ReadBuffer) Capacity() int {
	return len(r.storage)
}

// CumulativePosition returns the total bytes ever consumed from the
// transport through this buffer. Wraps on overflow.
func (r *ReadBuffer) CumulativePosition() uint64 {
	return r.flushed + uint64(r.readPos)
}

// Timeout returns the per-operation read timeout, zero meaning none.
func (r *ReadBuffer) Timeout() time.Duration {
	return r.timeout
}

// SetTimeout changes the per-operation read timeout. It does not affect
// an operation already in flight.
func (r *ReadBuffer) SetTimeout(d time.Duration) {
	if d >= 0 {
		r.timeout = d
	}
}

// StrictCodec returns the codec used by default for string reads; it
// fails on malformed input.
func (r *ReadBuffer) StrictCodec() text.Codec {
	return r.strict
}

// LossyCodec returns the replacing codec, for fields where the caller
// contract tolerates malformed text.
func (r *ReadBuffer) LossyCodec() text.Codec {
	return r.lossy
}

// Ensure guarantees at least n unread bytes are buffered, pulling from
// the transport as needed. Satisfied requests return without I/O or
// allocation. n must not exceed Capacity; larger fields go through
// AllocateOversize.
func (r *ReadBuffer) Ensure(n int) error {
	return r.ensure(context.Background(), n, false)
}

// EnsureContext is Ensure in cooperative mode: the transport read runs
// on the shared worker pool and the call observes ctx at every read
// boundary. Buffer state outcomes are identical to Ensure.
func (r *ReadBuffer) EnsureContext(ctx context.Context, n int) error {
	return r.ensure(ctx, n, true)
}

func (r *ReadBuffer) ensure(ctx context.Context, n int, async bool) error {
	r.mustLive()
	if n > len(r.storage) {
		panic(fmt.Sprintf("rdbuf: ensure %d exceeds buffer capacity %d, use AllocateOversize", n, len(r.storage)))
	}
	left := r.filled - r.readPos
	if left >= n {
		return nil
	}
	r.reserve(n - left)
	return r.fill(ctx, n-left, async)
}

// reserve makes room for missing more bytes after filled, rebasing a
// drained buffer for free and compacting otherwise.
func (r *ReadBuffer) reserve(missing int) {
	if r.readPos == r.filled {
		r.flushed += uint64(r.filled)
		r.readPos, r.filled = 0, 0
		return
	}
	if missing > len(r.storage)-r.filled {
		// slide the unread tail down, a memmove not a reallocation
		copy(r.storage, r.storage[r.readPos:r.filled])
		r.flushed += uint64(r.readPos)
		r.filled -= r.readPos
		r.readPos = 0
	}
}

// ReadMore pulls at least one more byte from the transport.
func (r *ReadBuffer) ReadMore() error {
	return r.readMore(context.Background(), false)
}

// ReadMoreContext is ReadMore in cooperative mode.
func (r *ReadBuffer) ReadMoreContext(ctx context.Context) error {
	return r.readMore(ctx, true)
}

func (r *ReadBuffer) readMore(ctx context.Context, async bool) error {
	r.mustLive()
	if r.filled == len(r.storage) && r.readPos == 0 {
		panic("rdbuf: read buffer full, nothing can be read ahead")
	}
	r.reserve(1)
	return r.fill(ctx, 1, async)
}

// Peek returns a view of the next n bytes without advancing the cursor,
// pulling from the transport as needed. The view is valid until the
// next fill or compaction.
func (r *ReadBuffer) Peek(n int) ([]byte, error) {
	if err := r.Ensure(n); err != nil {
		return nil, err
	}
	return r.storage[r.readPos : r.readPos+n], nil
}

// PeekByte returns the next byte without advancing the cursor, pulling
// from the transport when the buffer is drained.
func (r *ReadBuffer) PeekByte() (byte, error) {
	if err := r.Ensure(1); err != nil {
		return 0, err
	}
	return r.storage[r.readPos], nil
}

// Skip advances the cursor past n already buffered bytes. The caller
// must have validated availability.
func (r *ReadBuffer) Skip(n int) {
	r.require(n)
	r.readPos += n
}

// SkipLong advances past n bytes, reading and discarding through the
// buffer when n exceeds what is buffered.
func (r *ReadBuffer) SkipLong(n int) error {
	return r.skipLong(context.Background(), n, false)
}

// SkipLongContext is SkipLong in cooperative mode.
func (r *ReadBuffer) SkipLongContext(ctx context.Context, n int) error {
	return r.skipLong(ctx, n, true)
}

func (r *ReadBuffer) skipLong(ctx context.Context, n int, async bool) error {
	r.mustLive()
	if n < 0 {
		panic(fmt.Sprintf("rdbuf: negative skip length %d", n))
	}
	for {
		left := r.filled - r.readPos
		if left >= n {
			r.readPos += n
			return nil
		}
		n -= left
		r.readPos = r.filled
		if n <= len(r.storage) {
			if err := r.ensure(ctx, n, async); err != nil {
				return err
			}
			r.readPos += n
			return nil
		}
		// refill to full capacity and drain again
		r.flushed += uint64(r.filled)
		r.readPos, r.filled = 0, 0
		if err := r.fill(ctx, len(r.storage), async); err != nil {
			return err
		}
	}
}

// Reset prepares the buffer for reuse on a fresh stream, clearing the
// cursors and restarting the cumulative position. A nil tr keeps the
// current transport.
func (r *ReadBuffer) Reset(tr transport.Transport) {
	r.mustLive()
	if tr != nil {
		r.tr = tr
	}
	r.readPos, r.filled, r.flushed = 0, 0, 0
	r.tc.Reset()
}

// Dispose returns the backing array to the block pool and retires the
// buffer. Dispose is idempotent; any other use afterwards panics.
func (r *ReadBuffer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.tc.Reset()
	pool.PutBlock(r.storage)
	r.storage = nil
	r.tr = nil
	r.conn = nil
	bufferPool.Put(r)
}

func (r *ReadBuffer) mustLive() {
	if r.disposed {
		panic(ErrDisposed)
	}
}

// require asserts n unread bytes are buffered. Violation means the
// caller skipped Ensure, a defect rather than a runtime condition.
func (r *ReadBuffer) require(n int) {
	if n < 0 || r.filled-r.readPos < n {
		panic(fmt.Sprintf("rdbuf: %d byte read with %d buffered, Ensure not called", n, r.filled-r.readPos))
	}
}
