// Package codeobj implements the grow-on-write byte buffer and the
// constant/symbol tables described in spec.md §4.2, plus the CodeObject
// type produced by the compiler (C3) and consumed by the evaluator (C5).
package codeobj

import "encoding/binary"

// Buffer is a resizable byte sequence with typed writers (spec.md §4.2).
// Capacity grows by doubling; callers never need to size it up front.
type Buffer struct {
	data []byte
}

func NewBuffer() *Buffer { return &Buffer{data: make([]byte, 0, 64)} }

func (b *Buffer) Len() int        { return len(b.data) }
func (b *Buffer) Bytes() []byte   { return b.data }
func (b *Buffer) At(i int) byte   { return b.data[i] }

func (b *Buffer) grow(n int) {
	if cap(b.data)-len(b.data) >= n {
		return
	}
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = 64
	}
	for newCap-len(b.data) < n {
		newCap *= 2
	}
	nd := make([]byte, len(b.data), newCap)
	copy(nd, b.data)
	b.data = nd
}

func (b *Buffer) WriteByte(v byte) {
	b.grow(1)
	b.data = append(b.data, v)
}

// WriteInt writes a 4-byte little-endian signed integer.
func (b *Buffer) WriteInt(v int32) {
	b.grow(4)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	b.data = append(b.data, tmp[:]...)
}

// WriteUint16 writes a 2-byte little-endian unsigned integer.
func (b *Buffer) WriteUint16(v uint16) {
	b.grow(2)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// WriteUint16At backpatches a previously reserved 2-byte slot at pos.
func (b *Buffer) WriteUint16At(pos int, v uint16) {
	binary.LittleEndian.PutUint16(b.data[pos:pos+2], v)
}

// WriteDouble writes an 8-byte little-endian IEEE-754 float64, whatever
// the host's byte order.
func (b *Buffer) WriteDouble(v float64) {
	b.grow(8)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], mathFloatBits(v))
	b.data = append(b.data, tmp[:]...)
}

// WriteStr writes raw bytes followed by a NUL terminator.
func (b *Buffer) WriteStr(s string) {
	b.grow(len(s) + 1)
	b.data = append(b.data, s...)
	b.data = append(b.data, 0)
}

// Append concatenates another buffer's bytes onto this one.
func (b *Buffer) Append(other *Buffer) {
	b.grow(other.Len())
	b.data = append(b.data, other.data...)
}

// ReservePos returns the current length, to later backpatch with WriteUint16At.
func (b *Buffer) ReservePos() int {
	pos := b.Len()
	b.WriteUint16(0)
	return pos
}
