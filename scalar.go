package rdbuf

import (
	"encoding/binary"
	"math"
)

// Fixed-width reads interpret the window at the cursor as the target
// type's bit pattern and advance past it, no allocation and no copy.
// The caller must have called Ensure for at least the type's width;
// skipping that is a programming error and panics.
//
// order selects the wire byte order, binary.BigEndian for network order.

// ReadByte returns the next byte.
func (r *ReadBuffer) ReadByte() byte {
	r.require(1)
	b := r.storage[r.readPos]
	r.readPos++
	return b
}

// ReadInt8 returns the next byte as a signed integer.
func (r *ReadBuffer) ReadInt8() int8 {
	return int8(r.ReadByte())
}

func (r *ReadBuffer) ReadUint16(order binary.ByteOrder) uint16 {
	r.require(2)
	v := order.Uint16(r.storage[r.readPos:])
	r.readPos += 2
	return v
}

func (r *ReadBuffer) ReadInt16(order binary.ByteOrder) int16 {
	return int16(r.ReadUint16(order))
}

func (r *ReadBuffer) ReadUint32(order binary.ByteOrder) uint32 {
	r.require(4)
	v := order.Uint32(r.storage[r.readPos:])
	r.readPos += 4
	return v
}

func (r *ReadBuffer) ReadInt32(order binary.ByteOrder) int32 {
	return int32(r.ReadUint32(order))
}

func (r *ReadBuffer) ReadUint64(order binary.ByteOrder) uint64 {
	r.require(8)
	v := order.Uint64(r.storage[r.readPos:])
	r.readPos += 8
	return v
}

func (r *ReadBuffer) ReadInt64(order binary.ByteOrder) int64 {
	return int64(r.ReadUint64(order))
}

// ReadFloat32 reinterprets the bit pattern of the same-width integer
// read, no numeric conversion.
func (r *ReadBuffer) ReadFloat32(order binary.ByteOrder) float32 {
	return math.Float32frombits(r.ReadUint32(order))
}

func (r *ReadBuffer) ReadFloat64(order binary.ByteOrder) float64 {
	return math.Float64frombits(r.ReadUint64(order))
}
