package rdbuf

import (
	"time"

	"github.com/rdbuf/rdbuf/codec/text"
)

const (
	// MinBufferSize is the smallest usable buffer capacity.
	MinBufferSize = 4096

	// DefaultBufferSize matches the 8KB send buffer most database
	// servers use on their side of the wire.
	DefaultBufferSize = 8192
)

type Option func(ops *Options)

type Options struct {
	capacity int
	timeout  time.Duration
	conn     Conn
	strict   text.Codec
	lossy    text.Codec
	metrics  Metrics
}

func defaultOptions() Options {
	return Options{
		capacity: DefaultBufferSize,
		strict:   text.UTF8Strict,
		lossy:    text.UTF8Lossy,
	}
}

// WithCapacity sets the buffer capacity, raised to MinBufferSize when
// smaller. The buffer is never grown in place afterwards.
func WithCapacity(n int) Option {
	return func(ops *Options) {
		ops.capacity = n
	}
}

// WithReadTimeout bounds every Ensure or Read operation as a whole.
// Zero means wait without bound.
func WithReadTimeout(d time.Duration) Option {
	return func(ops *Options) {
		if d >= 0 {
			ops.timeout = d
		}
	}
}

// WithConn attaches the connection collaborator consulted on timeouts
// and fatal errors.
func WithConn(c Conn) Option {
	return func(ops *Options) {
		ops.conn = c
	}
}

// WithCodecs replaces the strict and lossy text codecs.
func WithCodecs(strict, lossy text.Codec) Option {
	return func(ops *Options) {
		if strict != nil {
			ops.strict = strict
		}
		if lossy != nil {
			ops.lossy = lossy
		}
	}
}

// WithMetrics attaches an observability sink.
func WithMetrics(m Metrics) Option {
	return func(ops *Options) {
		ops.metrics = m
	}
}
