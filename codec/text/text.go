package text

import (
	"unicode/utf8"

	"github.com/rdbuf/rdbuf/internal/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Codec decodes raw wire bytes to a Go string.
//
// A strict codec fails on byte sequences that are not well formed in the
// source encoding. A lossy codec substitutes the Unicode replacement
// character instead and never fails.
type Codec interface {
	Name() string

	Decode(p []byte) (string, error)
}

var (
	// UTF8Strict fails on malformed UTF-8 input.
	UTF8Strict = NewStrictCodec(unicode.UTF8)

	// UTF8Lossy replaces malformed sequences with U+FFFD.
	UTF8Lossy = NewLossyCodec(unicode.UTF8)
)

// NewStrictCodec returns a Codec for enc that reports an error on input
// that cannot be decoded losslessly.
func NewStrictCodec(enc encoding.Encoding) Codec {
	return &strictCodec{enc: enc, utf8: enc == unicode.UTF8}
}

// NewLossyCodec returns a Codec for enc that decodes malformed input to
// replacement characters.
func NewLossyCodec(enc encoding.Encoding) Codec {
	return &lossyCodec{enc: enc, utf8: enc == unicode.UTF8}
}

type strictCodec struct {
	enc  encoding.Encoding
	utf8 bool
}

func (*strictCodec) Name() string {
	return "strict-text-codec"
}

func (c *strictCodec) Decode(p []byte) (string, error) {
	if c.utf8 {
		// the UTF-8 decoder repairs instead of failing, validate directly
		if !utf8.Valid(p) {
			return "", errors.New("malformed UTF-8 sequence in %d byte input", len(p))
		}
		return string(p), nil
	}
	s, err := c.enc.NewDecoder().Bytes(p)
	if err != nil {
		return "", errors.Wrap(err, "decode %d bytes", len(p))
	}
	// x/text decoders substitute U+FFFD rather than failing; a replacement
	// rune in the output that the input did not spell means lossy decode
	if introducedReplacement(p, s) {
		return "", errors.New("input not representable in %v", c.enc)
	}
	return string(s), nil
}

type lossyCodec struct {
	enc  encoding.Encoding
	utf8 bool
}

func (*lossyCodec) Name() string {
	return "lossy-text-codec"
}

func (c *lossyCodec) Decode(p []byte) (string, error) {
	if c.utf8 && utf8.Valid(p) {
		return string(p), nil
	}
	s, err := c.enc.NewDecoder().Bytes(p)
	if err != nil {
		return "", errors.Wrap(err, "decode %d bytes", len(p))
	}
	return string(s), nil
}

func introducedReplacement(src, decoded []byte) bool {
	n := 0
	for i := 0; i < len(decoded); {
		r, size := utf8.DecodeRune(decoded[i:])
		if r == utf8.RuneError && size == 3 {
			n++
		}
		i += size
	}
	if n == 0 {
		return false
	}
	m := 0
	for i := 0; i+3 <= len(src); i++ {
		if src[i] == 0xEF && src[i+1] == 0xBF && src[i+2] == 0xBD {
			m++
		}
	}
	return n > m
}
