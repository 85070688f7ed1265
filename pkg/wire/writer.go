package wire

import (
	"encoding/binary"
	"math"
)

// Writer appends little-endian primitives to a growing buffer.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Bytes returns the accumulated buffer
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Uint8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) Int8(v int8) *Writer {
	return w.Uint8(uint8(v))
}

func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.Uint8(1)
	}
	return w.Uint8(0)
}

func (w *Writer) Uint16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *Writer) Int16(v int16) *Writer {
	return w.Uint16(uint16(v))
}

func (w *Writer) Uint32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

func (w *Writer) Int32(v int32) *Writer {
	return w.Uint32(uint32(v))
}

func (w *Writer) Float32(v float32) *Writer {
	return w.Uint32(math.Float32bits(v))
}

func (w *Writer) Raw(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// String writes the UTF-8 byte length as uint16 followed by the bytes.
// The writer is left unchanged if s is too long.
func (w *Writer) String(s string) error {
	if len(s) > math.MaxUint16 {
		return ErrStringTooLong
	}
	w.Uint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// MustString is String for values known to fit, it panics otherwise
func (w *Writer) MustString(s string) *Writer {
	if err := w.String(s); err != nil {
		panic(err)
	}
	return w
}
