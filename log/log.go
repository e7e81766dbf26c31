package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
)

var ErrKvsNotInPaired = errors.New("kvs must appear in pairs")

// Level is a logger level.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return ""
	}
}

// Logger defines logger interface
// inspired by https://github.com/go-kratos/kratos/blob/main/log
type Logger interface {
	Log(level Level, kvs ...interface{})
}

// NewStdLogger returns a Logger writing key-value lines to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{
		log:  log.New(w, "", log.LstdFlags),
		pool: &sync.Pool{New: func() interface{} { return new(bytesBuilder) }},
	}
}

type stdLogger struct {
	log  *log.Logger
	pool *sync.Pool
}

type bytesBuilder struct {
	buf []byte
}

func (s *stdLogger) Log(level Level, kvs ...interface{}) {
	if len(kvs) == 0 {
		return
	}
	if len(kvs)&1 != 0 {
		kvs = append(kvs, "MISSING")
	}
	b := s.pool.Get().(*bytesBuilder)
	b.buf = append(b.buf[:0], level.String()...)
	for i := 0; i < len(kvs); i += 2 {
		b.buf = append(b.buf, ' ')
		b.buf = append(b.buf, fmt.Sprintf("%v=%v", kvs[i], kvs[i+1])...)
	}
	_ = s.log.Output(3, string(b.buf))
	s.pool.Put(b)
}

// With returns a Logger that prefixes every record with kvs.
func With(l Logger, kvs ...interface{}) (Logger, error) {
	if len(kvs)&1 != 0 {
		return l, ErrKvsNotInPaired
	}
	if d, ok := l.(*logger); ok {
		prefix := make([]interface{}, 0, len(d.prefixes)+len(kvs))
		prefix = append(prefix, d.prefixes...)
		prefix = append(prefix, kvs...)
		return &logger{l: d.l, prefixes: prefix}, nil
	}
	return &logger{l: l, prefixes: kvs}, nil
}

var _ Logger = (*logger)(nil)

type logger struct {
	l        Logger
	prefixes []interface{}
}

// Log implements Logger
func (l *logger) Log(level Level, kvs ...interface{}) {
	keyvals := make([]interface{}, 0, len(l.prefixes)+len(kvs))
	keyvals = append(keyvals, l.prefixes...)
	keyvals = append(keyvals, kvs...)
	l.l.Log(level, keyvals...)
}
