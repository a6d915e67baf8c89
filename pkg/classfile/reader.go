package classfile

import (
	"encoding/binary"
	"math"
)

// reader is a bounds-checked cursor over an immutable byte slice.
// All multi-byte values are big-endian. A failed read does not advance.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) position() int {
	return r.pos
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, errAt(KindTruncated, r.pos, "need %d bytes, have %d", n, r.remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	return math.Float32frombits(v), err
}

func (r *reader) f64() (float64, error) {
	v, err := r.u64()
	return math.Float64frombits(v), err
}

// bytes reads exactly n bytes and returns a copy, so decoded values never
// alias the input buffer.
func (r *reader) bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// u16s reads a u16 count followed by that many u16 values.
func (r *reader) u16s() ([]uint16, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	if int(count)*2 > r.remaining() {
		return nil, errAt(KindTruncated, r.pos, "need %d bytes for %d entries, have %d", int(count)*2, count, r.remaining())
	}
	out := make([]uint16, count)
	for i := range out {
		out[i], _ = r.u16()
	}
	return out, nil
}
