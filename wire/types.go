package wire

import "fmt"

// ===== PROTOBUF WIRE FORMAT TYPES =====

// WireType represents protobuf wire format types
type WireType uint8

const (
	WireVarInt          WireType = 0 // int32, int64, uint32, uint64, sint32, sint64, bool, enum
	WireFixed64         WireType = 1 // fixed64, sfixed64, double
	WireLengthDelimited WireType = 2 // string, bytes, embedded messages, packed repeated fields
	WireStartGroup      WireType = 3 // deprecated, rejected on decode
	WireEndGroup        WireType = 4 // deprecated, rejected on decode
	WireFixed32         WireType = 5 // fixed32, sfixed32, float
)

func (t WireType) String() string {
	switch t {
	case WireVarInt:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireLengthDelimited:
		return "length-delimited"
	case WireStartGroup:
		return "start-group"
	case WireEndGroup:
		return "end-group"
	case WireFixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("wiretype(%d)", uint8(t))
	}
}

// FieldNumber represents a protobuf field number
type FieldNumber uint32

// Header represents the tag that precedes every field on the wire.
type Header struct {
	FieldNumber FieldNumber
	WireType    WireType
}

// DecodeHeader decodes a header from the raw bytes of a single varint.
func DecodeHeader(raw []byte) (Header, error) {
	word, ok := DecodeVarInt(raw).Uint32()
	if !ok {
		return Header{}, fmt.Errorf("%w: header word is negative", ErrInvalidWireType)
	}

	wireType := WireType(word & 0x7)
	if wireType > WireFixed32 {
		return Header{}, fmt.Errorf("%w: %d", ErrInvalidWireType, uint8(wireType))
	}

	return Header{
		FieldNumber: FieldNumber(word >> 3),
		WireType:    wireType,
	}, nil
}

// decodeHeaderAt reads the header starting at index and returns it together
// with the number of bytes it occupies.
func decodeHeaderAt(b []byte, index int) (Header, int, error) {
	raw := RawVarIntAt(b, index)
	if !terminated(raw) {
		return Header{}, len(raw), ErrMalformedVarint
	}
	h, err := DecodeHeader(raw)
	return h, len(raw), err
}

// AppendHeader appends the fixed-width encoding of h to b.
func AppendHeader(b []byte, h Header) []byte {
	return appendGroups(b, int64(h.word()), varIntGroups)
}

func appendHeader(b []byte, h Header, shortest bool) []byte {
	if shortest {
		return AppendShortestVarInt(b, uint64(uint32(h.word())))
	}
	return AppendHeader(b, h)
}

func (h Header) word() int32 {
	return int32(uint32(h.FieldNumber)<<3 | uint32(h.WireType))
}
