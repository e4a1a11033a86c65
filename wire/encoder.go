package wire

import (
	"encoding/binary"
	"math"
)

// integer is the set of integer kinds written with the varint wire type.
// Unsigned values are written as the signed bit pattern of the same width;
// no zigzag transform is applied.
type integer interface {
	int32 | int64 | uint32 | uint64
}

// Float is the set of floating point kinds written as fixed-width fields.
type Float interface {
	float32 | float64
}

// appendInteger appends a varint field for v. 32-bit kinds use five groups,
// 64-bit kinds ten, unless shortest is set.
func appendInteger[T integer](b []byte, num FieldNumber, v T, shortest bool) []byte {
	b = appendHeader(b, Header{FieldNumber: num, WireType: WireVarInt}, shortest)

	var (
		bits   int64  // fixed-width bit pattern
		groups int    // fixed-width group count
		word   uint64 // shortest-form value
	)
	switch x := any(v).(type) {
	case int32:
		bits, groups, word = int64(x), varIntGroups, uint64(int64(x))
	case uint32:
		bits, groups, word = int64(int32(x)), varIntGroups, uint64(x)
	case int64:
		bits, groups, word = x, varLongGroups, uint64(x)
	case uint64:
		bits, groups, word = int64(x), varLongGroups, x
	}

	if shortest {
		return AppendShortestVarInt(b, word)
	}
	return appendGroups(b, bits, groups)
}

// appendFixed appends a fixed32 or fixed64 field holding the little-endian
// IEEE-754 bits of v.
func appendFixed[T Float](b []byte, num FieldNumber, v T, shortest bool) []byte {
	switch x := any(v).(type) {
	case float32:
		b = appendHeader(b, Header{FieldNumber: num, WireType: WireFixed32}, shortest)
		return binary.LittleEndian.AppendUint32(b, math.Float32bits(x))
	case float64:
		b = appendHeader(b, Header{FieldNumber: num, WireType: WireFixed64}, shortest)
		return binary.LittleEndian.AppendUint64(b, math.Float64bits(x))
	}
	return b
}

func appendBytes(b []byte, num FieldNumber, v []byte, shortest bool) []byte {
	b = appendHeader(b, Header{FieldNumber: num, WireType: WireLengthDelimited}, shortest)
	if shortest {
		b = AppendShortestVarInt(b, uint64(len(v)))
	} else {
		b = appendGroups(b, int64(int32(len(v))), varIntGroups)
	}
	return append(b, v...)
}

// AppendInt32 appends field num holding v to b and returns the extended buffer.
func AppendInt32(b []byte, num FieldNumber, v int32) []byte { return appendInteger(b, num, v, false) }

// AppendInt64 appends field num holding v to b and returns the extended buffer.
func AppendInt64(b []byte, num FieldNumber, v int64) []byte { return appendInteger(b, num, v, false) }

// AppendUint32 appends field num holding v to b and returns the extended buffer.
func AppendUint32(b []byte, num FieldNumber, v uint32) []byte {
	return appendInteger(b, num, v, false)
}

// AppendUint64 appends field num holding v to b and returns the extended buffer.
func AppendUint64(b []byte, num FieldNumber, v uint64) []byte {
	return appendInteger(b, num, v, false)
}

// AppendFloat32 appends a fixed32 field to b.
func AppendFloat32(b []byte, num FieldNumber, v float32) []byte { return appendFixed(b, num, v, false) }

// AppendFloat64 appends a fixed64 field to b.
func AppendFloat64(b []byte, num FieldNumber, v float64) []byte { return appendFixed(b, num, v, false) }

// AppendBytes appends a length-delimited field to b.
func AppendBytes(b []byte, num FieldNumber, v []byte) []byte { return appendBytes(b, num, v, false) }

// AppendString appends the UTF-8 bytes of v as a length-delimited field.
func AppendString(b []byte, num FieldNumber, v string) []byte {
	return appendBytes(b, num, []byte(v), false)
}

// Encoder appends fields to a buffer owned by the caller. It performs no
// field number or length validation.
type Encoder struct {
	buf      []byte
	shortest bool
}

// NewEncoder creates an encoder that appends to buf, which may be nil.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// NewEncoderWithConfig creates an encoder that honors cfg.ShortestVarints.
func NewEncoderWithConfig(buf []byte, cfg Config) *Encoder {
	return &Encoder{buf: buf, shortest: cfg.ShortestVarints}
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// WriteInt32 writes v as a varint field.
func (e *Encoder) WriteInt32(num FieldNumber, v int32) { e.buf = appendInteger(e.buf, num, v, e.shortest) }
// WriteInt64 writes v as a varint field.
func (e *Encoder) WriteInt64(num FieldNumber, v int64) { e.buf = appendInteger(e.buf, num, v, e.shortest) }
// WriteUint32 writes the int32 bit pattern of v as a varint field.
func (e *Encoder) WriteUint32(num FieldNumber, v uint32) { e.buf = appendInteger(e.buf, num, v, e.shortest) }
// WriteUint64 writes the int64 bit pattern of v as a varint field.
func (e *Encoder) WriteUint64(num FieldNumber, v uint64) { e.buf = appendInteger(e.buf, num, v, e.shortest) }
// WriteFloat32 writes v as a fixed32 field.
func (e *Encoder) WriteFloat32(num FieldNumber, v float32) { e.buf = appendFixed(e.buf, num, v, e.shortest) }
// WriteFloat64 writes v as a fixed64 field.
func (e *Encoder) WriteFloat64(num FieldNumber, v float64) { e.buf = appendFixed(e.buf, num, v, e.shortest) }
// WriteBytes writes v as a length-delimited field.
func (e *Encoder) WriteBytes(num FieldNumber, v []byte) { e.buf = appendBytes(e.buf, num, v, e.shortest) }

// WriteString writes the UTF-8 bytes of v as a length-delimited field.
func (e *Encoder) WriteString(num FieldNumber, v string) {
	e.WriteBytes(num, []byte(v))
}

// WriteBool writes b as the varint 0 or 1.
func (e *Encoder) WriteBool(num FieldNumber, b bool) {
	if b {
		e.WriteInt32(num, 1)
		return
	}
	e.WriteInt32(num, 0)
}
