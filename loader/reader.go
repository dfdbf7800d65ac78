package loader

import (
	"encoding/binary"
	"math"

	"github.com/rhoc-lang/rhoc/errors"
)

// reader is a cursor over a .rhoc byte slice. Every read method panics
// with a *errors.FatalError on truncation; Parse recovers that panic at
// its single entry point so callers never see it.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) need(n int) {
	if r.pos+n > len(r.data) {
		panic(errors.NewFatal(errors.InvalidBytecode, "truncated .rhoc stream at offset %d", r.pos))
	}
}

func (r *reader) byte() byte {
	r.need(1)
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *reader) expect(marker byte, what string) {
	b := r.byte()
	if b != marker {
		panic(errors.NewFatal(errors.InvalidBytecode, "expected %s marker 0x%02x, got 0x%02x", what, marker, b))
	}
}

func (r *reader) u16() uint16 {
	r.need(2)
	v := binary.LittleEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v
}

func (r *reader) i32() int32 {
	r.need(4)
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return int32(v)
}

func (r *reader) f64() float64 {
	r.need(8)
	bits := binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return math.Float64frombits(bits)
}

func (r *reader) cstring() string {
	start := r.pos
	for {
		r.need(1)
		if r.data[r.pos] == 0 {
			s := string(r.data[start:r.pos])
			r.pos++
			return s
		}
		r.pos++
	}
}

func (r *reader) bytes(n int) []byte {
	r.need(n)
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}
