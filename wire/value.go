package wire

import (
	"bytes"
	"fmt"
	"math"
	"sort"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVarInt
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindVarInt:
		return "varint"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindMessage:
		return "message"
	default:
		return "invalid"
	}
}

// Value is a decoded field value. Exactly one variant is populated,
// selected by Kind. The zero Value is KindInvalid.
type Value struct {
	kind   Kind
	varint VarInt
	f32    float32
	f64    float64
	str    string
	bytes  []byte
	msg    Message
}

// Message maps field numbers to values. A repeated field number keeps only
// its last occurrence.
type Message map[FieldNumber]Value

// VarIntValue wraps a decoded varint.
func VarIntValue(v VarInt) Value { return Value{kind: KindVarInt, varint: v} }
// FloatValue wraps a fixed32 float.
func FloatValue(v float32) Value { return Value{kind: KindFloat, f32: v} }
// DoubleValue wraps a fixed64 double.
func DoubleValue(v float64) Value { return Value{kind: KindDouble, f64: v} }
// StringValue wraps a UTF-8 string payload.
func StringValue(v string) Value { return Value{kind: KindString, str: v} }
// BytesValue wraps a raw byte payload.
func BytesValue(v []byte) Value { return Value{kind: KindBytes, bytes: v} }
// MessageValue wraps a nested message.
func MessageValue(v Message) Value { return Value{kind: KindMessage, msg: v} }
// Int32Value encodes v as a five byte varint.
func Int32Value(v int32) Value { return VarIntValue(VarIntFromInt32(v)) }
// Int64Value encodes v as a ten byte varint.
func Int64Value(v int64) Value { return VarIntValue(VarIntFromInt64(v)) }

// BoolValue encodes b as the varint 0 or 1.
func BoolValue(b bool) Value {
	if b {
		return Int32Value(1)
	}
	return Int32Value(0)
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsVarInt returns the varint held by v.
func (v Value) AsVarInt() (VarInt, bool) { return v.varint, v.kind == KindVarInt }
// AsFloat returns the fixed32 float held by v.
func (v Value) AsFloat() (float32, bool) { return v.f32, v.kind == KindFloat }
// AsDouble returns the fixed64 double held by v.
func (v Value) AsDouble() (float64, bool) { return v.f64, v.kind == KindDouble }
// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
// AsBytes returns the raw bytes held by v.
func (v Value) AsBytes() ([]byte, bool) { return v.bytes, v.kind == KindBytes }
// AsMessage returns the nested message held by v.
func (v Value) AsMessage() (Message, bool) { return v.msg, v.kind == KindMessage }

// AsBool reads a varint of exactly 0 or 1 as a boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindVarInt {
		return false, false
	}
	switch v.varint.Int32() {
	case 0:
		return false, true
	case 1:
		return true, true
	default:
		return false, false
	}
}

// AsInt32 reads a varint as int32.
func (v Value) AsInt32() (int32, bool) {
	if v.kind != KindVarInt {
		return 0, false
	}
	return v.varint.Int32(), true
}

// AsInt64 reads a varint as int64.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindVarInt {
		return 0, false
	}
	return v.varint.Int64(), true
}

// AsUint32 reads a varint as uint32 when the value is non-negative.
func (v Value) AsUint32() (uint32, bool) {
	if v.kind != KindVarInt {
		return 0, false
	}
	return v.varint.Uint32()
}

// AsUint64 reads a varint as uint64 when the value is non-negative.
func (v Value) AsUint64() (uint64, bool) {
	if v.kind != KindVarInt {
		return 0, false
	}
	return v.varint.Uint64()
}

// Equal reports whether v and o hold the same variant and payload. Floats
// compare by bit pattern so NaN payloads are equal to themselves.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindVarInt:
		return v.varint.Equal(o.varint)
	case KindFloat:
		return math.Float32bits(v.f32) == math.Float32bits(o.f32)
	case KindDouble:
		return math.Float64bits(v.f64) == math.Float64bits(o.f64)
	case KindString:
		return v.str == o.str
	case KindBytes:
		return bytes.Equal(v.bytes, o.bytes)
	case KindMessage:
		return v.msg.Equal(o.msg)
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindVarInt:
		return Closest(v.varint).String()
	case KindFloat:
		return fmt.Sprint(v.f32)
	case KindDouble:
		return fmt.Sprint(v.f64)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bytes))
	case KindMessage:
		return fmt.Sprintf("message(%d fields)", len(v.msg))
	default:
		return "invalid"
	}
}

// FieldNumbers returns the field numbers of m in ascending order.
func (m Message) FieldNumbers() []FieldNumber {
	nums := make([]FieldNumber, 0, len(m))
	for num := range m {
		nums = append(nums, num)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// Get returns the value stored for num.
func (m Message) Get(num FieldNumber) (Value, bool) {
	v, ok := m[num]
	return v, ok
}

// Equal reports whether m and o hold equal values for the same field numbers.
func (m Message) Equal(o Message) bool {
	if len(m) != len(o) {
		return false
	}
	for num, v := range m {
		ov, ok := o[num]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
