package wire

import "fmt"

// Marshal re-emits m as wire bytes in ascending field-number order using
// DefaultConfig.
func Marshal(m Message) ([]byte, error) {
	return NewEncoderWithConfig(nil, DefaultConfig()).WriteMessage(m)
}

// WriteMessage appends every field of m and returns the encoder's buffer.
// VarInt values are written byte-for-byte as they were decoded, so
// decoding the result reproduces m.
func (e *Encoder) WriteMessage(m Message) ([]byte, error) {
	for _, num := range m.FieldNumbers() {
		if err := e.WriteValue(num, m[num]); err != nil {
			return nil, err
		}
	}
	return e.buf, nil
}

// WriteValue appends a single field holding v.
func (e *Encoder) WriteValue(num FieldNumber, v Value) error {
	switch v.Kind() {
	case KindVarInt:
		e.buf = appendHeader(e.buf, Header{FieldNumber: num, WireType: WireVarInt}, e.shortest)
		e.buf = v.varint.AppendWire(e.buf)
	case KindFloat:
		e.WriteFloat32(num, v.f32)
	case KindDouble:
		e.WriteFloat64(num, v.f64)
	case KindString:
		e.WriteString(num, v.str)
	case KindBytes:
		e.WriteBytes(num, v.bytes)
	case KindMessage:
		nested := &Encoder{shortest: e.shortest}
		body, err := nested.WriteMessage(v.msg)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		e.WriteBytes(num, body)
	default:
		return fmt.Errorf("field %d: cannot encode %s value", num, v.Kind())
	}
	return nil
}
