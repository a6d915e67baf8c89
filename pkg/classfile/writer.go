package classfile

import (
	"bytes"
	"encoding/binary"
	"math"
)

// writer is the encoding counterpart of reader.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *writer) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *writer) u16(v uint16) {
	w.buf.Write(binary.BigEndian.AppendUint16(nil, v))
}

func (w *writer) u32(v uint32) {
	w.buf.Write(binary.BigEndian.AppendUint32(nil, v))
}

func (w *writer) i32(v int32) {
	w.u32(uint32(v))
}

func (w *writer) u64(v uint64) {
	w.buf.Write(binary.BigEndian.AppendUint64(nil, v))
}

func (w *writer) i64(v int64) {
	w.u64(uint64(v))
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) f64(v float64) {
	w.u64(math.Float64bits(v))
}

func (w *writer) bytes(b []byte) {
	w.buf.Write(b)
}

// count writes n as a u16 table length.
func (w *writer) count(what string, n int) error {
	if n > math.MaxUint16 {
		return errAt(KindOverflow, -1, "%s count %d exceeds 65535", what, n)
	}
	w.u16(uint16(n))
	return nil
}
