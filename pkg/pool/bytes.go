package pool

import "sync"

// Byte blocks are pooled in power-of-two size classes so that primary read
// buffers, oversize spillover buffers and scratch buffers all recycle
// through the same arena.

const (
	// MinBlockSize is the smallest block handed out, 4KB.
	MinBlockSize = 1 << 12

	// MaxCachedBlockSize is the largest block kept after release, 4MB.
	// Bigger blocks are handed to the GC instead of pinning the pool.
	MaxCachedBlockSize = 1 << 22
)

var classes [11]sync.Pool // 4KB..4MB

func classFor(size int) (class, width int) {
	class, width = 0, MinBlockSize
	for width < size && class < len(classes)-1 {
		class++
		width <<= 1
	}
	return class, width
}

// GetBlock rents a block with len(b) >= size. Contents are undefined;
// recycled blocks keep whatever the previous holder wrote.
// Blocks larger than MaxCachedBlockSize are freshly allocated.
func GetBlock(size int) []byte {
	if size < MinBlockSize {
		size = MinBlockSize
	}
	if size > MaxCachedBlockSize {
		return make([]byte, size)
	}
	c, width := classFor(size)
	if b, ok := classes[c].Get().([]byte); ok {
		return b
	}
	return make([]byte, width)
}

// PutBlock returns a block rented by GetBlock. Oversized or undersized
// slices are dropped.
func PutBlock(b []byte) {
	size := len(b)
	if size < MinBlockSize || size > MaxCachedBlockSize {
		return
	}
	c, width := classFor(size)
	if size != width {
		return
	}
	classes[c].Put(b)
}
