package rdbuf

import (
	"bytes"
	"context"

	"github.com/rdbuf/rdbuf/codec/text"
	"github.com/rdbuf/rdbuf/pkg/pool"
)

// ReadString decodes the next n already buffered bytes with c, or the
// strict codec when c is nil. The cursor advances past the n bytes even
// when decoding fails.
func (r *ReadBuffer) ReadString(n int, c text.Codec) (string, error) {
	if c == nil {
		c = r.strict
	}
	r.require(n)
	s, err := c.Decode(r.storage[r.readPos : r.readPos+n])
	r.readPos += n
	return s, err
}

// ReadBytes copies the next len(dst) already buffered bytes into dst.
func (r *ReadBuffer) ReadBytes(dst []byte) {
	r.require(len(dst))
	copy(dst, r.storage[r.readPos:])
	r.readPos += len(dst)
}

// ReadMemory returns a zero-copy view of the next n already buffered
// bytes, valid until the next fill, compaction or Dispose.
func (r *ReadBuffer) ReadMemory(n int) []byte {
	r.require(n)
	v := r.storage[r.readPos : r.readPos+n]
	r.readPos += n
	return v
}

// NullTerminatedBytes returns a zero-copy view up to, and a cursor
// past, the next NUL. The terminator must already be buffered; calling
// this without it is a programming error.
func (r *ReadBuffer) NullTerminatedBytes() []byte {
	r.mustLive()
	window := r.storage[r.readPos:r.filled]
	i := bytes.IndexByte(window, 0)
	if i < 0 {
		panic("rdbuf: no terminator in buffered data")
	}
	r.readPos += i + 1
	return window[:i]
}

// ReadNullTerminatedString scans for the next NUL, reading more from
// the transport when the string spans a refill, and decodes everything
// before it with c (the strict codec when c is nil).
func (r *ReadBuffer) ReadNullTerminatedString(c text.Codec) (string, error) {
	return r.readNullTerminated(context.Background(), c, false)
}

// ReadNullTerminatedStringContext is ReadNullTerminatedString in
// cooperative mode.
func (r *ReadBuffer) ReadNullTerminatedStringContext(ctx context.Context, c text.Codec) (string, error) {
	return r.readNullTerminated(ctx, c, true)
}

func (r *ReadBuffer) readNullTerminated(ctx context.Context, c text.Codec, async bool) (string, error) {
	r.mustLive()
	if c == nil {
		c = r.strict
	}

	// fast path: terminator already buffered, no I/O
	window := r.storage[r.readPos:r.filled]
	if i := bytes.IndexByte(window, 0); i >= 0 {
		s, err := c.Decode(window[:i])
		r.readPos += i + 1
		return s, err
	}

	// slow path: accumulate into a pooled scratch buffer, scanning only
	// each freshly filled chunk
	scratch := pool.GetBlock(len(window) + MinBufferSize)
	defer func() {
		pool.PutBlock(scratch)
	}()
	used := copy(scratch, window)
	r.readPos = r.filled

	for {
		if err := r.ensure(ctx, 1, async); err != nil {
			return "", err
		}
		chunk := r.storage[r.readPos:r.filled]
		if i := bytes.IndexByte(chunk, 0); i >= 0 {
			scratch = appendScratch(scratch, used, chunk[:i])
			used += i
			r.readPos += i + 1
			return c.Decode(scratch[:used])
		}
		scratch = appendScratch(scratch, used, chunk)
		used += len(chunk)
		r.readPos = r.filled
	}
}

// appendScratch grows by doubling plus slack, keeping the total scan
// cost linear in string length.
func appendScratch(buf []byte, used int, p []byte) []byte {
	if used+len(p) > len(buf) {
		grown := pool.GetBlock((used + len(p)) * 2)
		copy(grown, buf[:used])
		pool.PutBlock(buf)
		buf = grown
	}
	copy(buf[used:], p)
	return buf
}

// Read copies buffered bytes into dst when any are available and
// otherwise reads from the transport directly, bypassing the buffer.
// Meant for opportunistic streaming of large values; Ensure semantics
// do not apply.
func (r *ReadBuffer) Read(dst []byte) (int, error) {
	return r.opportunistic(context.Background(), dst, false)
}

// ReadContext is Read in cooperative mode.
func (r *ReadBuffer) ReadContext(ctx context.Context, dst []byte) (int, error) {
	return r.opportunistic(ctx, dst, true)
}

func (r *ReadBuffer) opportunistic(ctx context.Context, dst []byte, async bool) (int, error) {
	r.mustLive()
	if len(dst) == 0 {
		return 0, nil
	}
	if r.readPos < r.filled {
		n := copy(dst, r.storage[r.readPos:r.filled])
		r.readPos += n
		return n, nil
	}
	return r.readDirect(ctx, dst, async)
}
