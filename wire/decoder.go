package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
)

// Decoder handles schema-less protobuf wire format decoding
type Decoder struct {
	buf []byte
	cfg Config
}

// NewDecoder creates a decoder over data using DefaultConfig.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
		cfg: DefaultConfig(),
	}
}

// NewDecoderWithConfig creates a decoder over data using cfg.
func NewDecoderWithConfig(data []byte, cfg Config) *Decoder {
	return &Decoder{
		buf: data,
		cfg: cfg,
	}
}

// Decode decodes protobuf bytes without a schema - main entry point
func Decode(data []byte) (Message, error) {
	return NewDecoder(data).Decode()
}

// Decode walks the whole buffer and returns the decoded fields. Any
// structural error aborts the decode and is returned as a *DecodeError.
// An empty buffer yields an empty message.
func (d *Decoder) Decode() (Message, error) {
	return d.decodeMessage(d.buf, 0, 0)
}

// decodeMessage decodes b, which starts at absolute offset base of the
// outermost buffer and sits depth levels below it.
func (d *Decoder) decodeMessage(b []byte, base, depth int) (Message, error) {
	if depth > d.cfg.maxDepth() {
		return d.tooDeep(b, base)
	}

	msg := make(Message)
	index := 0

	for index < len(b) {
		header, n, err := decodeHeaderAt(b, index)
		if err != nil {
			return nil, newDecodeError(base+index, err)
		}
		index += n

		var value Value
		switch header.WireType {
		case WireVarInt:
			v, n, err := DecodeVarIntAt(b, index)
			if err != nil {
				return nil, wrapWithField(newDecodeError(base+index, err), header.FieldNumber)
			}
			index += n
			value = VarIntValue(v)

		case WireFixed64:
			if len(b)-index < 8 {
				return nil, wrapWithField(newDecodeError(base+index, ErrTruncatedFixed64), header.FieldNumber)
			}
			value = DoubleValue(math.Float64frombits(binary.LittleEndian.Uint64(b[index:])))
			index += 8

		case WireFixed32:
			if len(b)-index < 4 {
				return nil, wrapWithField(newDecodeError(base+index, ErrTruncatedFixed32), header.FieldNumber)
			}
			value = FloatValue(math.Float32frombits(binary.LittleEndian.Uint32(b[index:])))
			index += 4

		case WireLengthDelimited:
			length, n, err := DecodeVarIntAt(b, index)
			if err != nil {
				return nil, wrapWithField(newDecodeError(base+index, err), header.FieldNumber)
			}
			index += n

			size := int(length.Int32())
			if size < 0 || len(b)-index < size {
				return nil, wrapWithField(newDecodeError(base+index, ErrTruncatedLengthDelimited), header.FieldNumber)
			}

			value, err = d.decodeLengthDelimited(b[index:index+size], base+index, depth)
			if err != nil {
				return nil, wrapWithField(err, header.FieldNumber)
			}
			index += size

		default:
			return nil, wrapWithField(newDecodeError(base+index-n, ErrUnsupportedWireType), header.FieldNumber)
		}

		msg[header.FieldNumber] = value
	}

	return msg, nil
}

// decodeLengthDelimited classifies a length-delimited payload. A failed
// nested decode only rules out the message reading. Exceeding the depth
// limit propagates only when the payload itself frames as a message.
func (d *Decoder) decodeLengthDelimited(payload []byte, base, depth int) (Value, error) {
	data := make([]byte, len(payload))
	copy(data, payload)

	candidates := []Value{BytesValue(data)}
	if utf8.Valid(payload) {
		candidates = append(candidates, StringValue(string(payload)))
	}

	nested, err := d.decodeMessage(data, base, depth+1)
	switch {
	case err == nil:
		candidates = append(candidates, MessageValue(nested))
	case errors.Is(err, ErrNestingTooDeep):
		if skipFields(data) == nil {
			return Value{}, err
		}
	}

	return resolveCandidates(candidates), nil
}

// tooDeep handles a payload nested beyond MaxDepth. It is scanned without
// descending further: a payload that does not frame as a message is simply
// not one, an empty payload is an empty message, and anything else fails the
// whole decode with ErrNestingTooDeep.
func (d *Decoder) tooDeep(b []byte, base int) (Message, error) {
	if len(b) == 0 {
		return Message{}, nil
	}
	if err := skipFields(b); err != nil {
		return nil, newDecodeError(base, err)
	}
	return nil, newDecodeError(base, ErrNestingTooDeep)
}

// skipFields checks that b frames as a sequence of fields without decoding
// any payload.
func skipFields(b []byte) error {
	index := 0
	for index < len(b) {
		header, n, err := decodeHeaderAt(b, index)
		if err != nil {
			return err
		}
		index += n

		switch header.WireType {
		case WireVarInt:
			_, n, err := DecodeVarIntAt(b, index)
			if err != nil {
				return err
			}
			index += n
		case WireFixed64:
			if len(b)-index < 8 {
				return ErrTruncatedFixed64
			}
			index += 8
		case WireFixed32:
			if len(b)-index < 4 {
				return ErrTruncatedFixed32
			}
			index += 4
		case WireLengthDelimited:
			length, n, err := DecodeVarIntAt(b, index)
			if err != nil {
				return err
			}
			index += n
			size := int(length.Int32())
			if size < 0 || len(b)-index < size {
				return ErrTruncatedLengthDelimited
			}
			index += size
		default:
			return ErrUnsupportedWireType
		}
	}
	return nil
}

// lengthDelimitedPriority ranks the readings of an ambiguous payload.
// A payload that is both valid UTF-8 and a valid message is a message.
var lengthDelimitedPriority = map[Kind]int{
	KindBytes:   0,
	KindString:  1,
	KindMessage: 2,
}

// resolveCandidates returns the highest priority candidate. The slice must
// not be empty.
func resolveCandidates(candidates []Value) Value {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if lengthDelimitedPriority[c.Kind()] > lengthDelimitedPriority[best.Kind()] {
			best = c
		}
	}
	return best
}
