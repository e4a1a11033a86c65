package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldNamer supplies field names for rendering. messageType is the type
// reported for the enclosing message ("" for an unknown type); fieldType is
// the message type of the field itself when it is a message.
type FieldNamer interface {
	FieldName(messageType string, num FieldNumber) (name, fieldType string, ok bool)
}

// MarshalJSON renders m as a JSON object keyed by field number, in ascending
// field-number order.
func (m Message) MarshalJSON() ([]byte, error) {
	return appendJSONMessage(nil, m, nil, "")
}

// MarshalJSON renders v in the text form described on MarshalJSONNamed.
func (v Value) MarshalJSON() ([]byte, error) {
	return appendJSONValue(nil, v, nil, "")
}

// MarshalJSONNamed renders m as JSON, replacing field numbers with the names
// namer knows for messageType. The value forms are:
//
//	varint  a number, or [int32, int64?, uint32?, uint64?] when readings diverge
//	float   a number
//	string  a string
//	bytes   a standard Base64 string
//	message an object
func MarshalJSONNamed(m Message, namer FieldNamer, messageType string) ([]byte, error) {
	return appendJSONMessage(nil, m, namer, messageType)
}

func appendJSONMessage(b []byte, m Message, namer FieldNamer, messageType string) ([]byte, error) {
	b = append(b, '{')
	for i, num := range m.FieldNumbers() {
		if i > 0 {
			b = append(b, ',')
		}

		key, fieldType := strconv.FormatUint(uint64(num), 10), ""
		if namer != nil {
			if name, typ, ok := namer.FieldName(messageType, num); ok {
				key, fieldType = name, typ
			}
		}

		var err error
		if b, err = appendJSONScalar(b, key); err != nil {
			return nil, err
		}
		b = append(b, ':')
		if b, err = appendJSONValue(b, m[num], namer, fieldType); err != nil {
			return nil, fmt.Errorf("field %d: %w", num, err)
		}
	}
	return append(b, '}'), nil
}

func appendJSONValue(b []byte, v Value, namer FieldNamer, messageType string) ([]byte, error) {
	switch v.Kind() {
	case KindVarInt:
		c := Candidates(v.varint)
		if len(c) == 1 {
			return appendJSONScalar(b, c[0])
		}
		return appendJSONScalar(b, c)
	case KindFloat:
		if math.IsNaN(float64(v.f32)) || math.IsInf(float64(v.f32), 0) {
			return nil, fmt.Errorf("float %v has no JSON form", v.f32)
		}
		return appendJSONScalar(b, v.f32)
	case KindDouble:
		if math.IsNaN(v.f64) || math.IsInf(v.f64, 0) {
			return nil, fmt.Errorf("double %v has no JSON form", v.f64)
		}
		return appendJSONScalar(b, v.f64)
	case KindString:
		return appendJSONScalar(b, v.str)
	case KindBytes:
		return appendJSONScalar(b, Base64Encode(v.bytes))
	case KindMessage:
		return appendJSONMessage(b, v.msg, namer, messageType)
	default:
		return nil, fmt.Errorf("cannot render %s value", v.Kind())
	}
}

// appendJSONScalar appends the encoding/json form of x without HTML escaping.
func appendJSONScalar(b []byte, x any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(x); err != nil {
		return nil, err
	}
	return append(b, bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})...), nil
}

// UnmarshalJSON rebuilds a message from its JSON text form. The form is
// lossy, so values are typed as follows:
//
//	integer that fits 32 bits  five-group varint
//	other integer              ten-group varint
//	array                      ten-group varint from its last element
//	fractional number          double
//	string                     string (Base64 bytes are not recovered)
//	bool                       varint 0 or 1
//	object                     message
func (m *Message) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("invalid message JSON: %w", err)
	}
	if obj == nil {
		return fmt.Errorf("invalid message JSON: expected an object")
	}

	msg, err := messageFromJSON(obj)
	if err != nil {
		return err
	}
	*m = msg
	return nil
}

// ParseJSON is a convenience wrapper around Message.UnmarshalJSON.
func ParseJSON(data []byte) (Message, error) {
	var m Message
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

func messageFromJSON(obj map[string]any) (Message, error) {
	m := make(Message, len(obj))
	for key, raw := range obj {
		num, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("key %q is not a field number", key)
		}
		v, err := valueFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		m[FieldNumber(num)] = v
	}
	return m, nil
}

func valueFromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case json.Number:
		return numberFromJSON(x)
	case []any:
		if len(x) == 0 {
			return Value{}, fmt.Errorf("empty varint reading list")
		}
		n, ok := x[len(x)-1].(json.Number)
		if !ok {
			return Value{}, fmt.Errorf("varint reading list holds %T", x[len(x)-1])
		}
		bits, err := integerBits(n)
		if err != nil {
			return Value{}, err
		}
		return Int64Value(bits), nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case map[string]any:
		msg, err := messageFromJSON(x)
		if err != nil {
			return Value{}, err
		}
		return MessageValue(msg), nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON value %v", raw)
	}
}

func numberFromJSON(n json.Number) (Value, error) {
	if !strings.ContainsAny(n.String(), ".eE") {
		bits, err := integerBits(n)
		if err != nil {
			return Value{}, err
		}
		if bits >= math.MinInt32 && bits <= math.MaxInt32 {
			return Int32Value(int32(bits)), nil
		}
		return Int64Value(bits), nil
	}

	f, err := n.Float64()
	if err != nil {
		return Value{}, err
	}
	return DoubleValue(f), nil
}

// integerBits parses n as an int64, or as a uint64 reinterpreted as int64.
func integerBits(n json.Number) (int64, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i, nil
	}
	u, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s is not a 64-bit integer", n)
	}
	return int64(u), nil
}
