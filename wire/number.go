package wire

import (
	"fmt"
	"strconv"
)

// NumberKind is the numeric type Closest settles on for a VarInt.
type NumberKind uint8

const (
	Integer         NumberKind = iota // int32
	Long                              // int64
	UnsignedInteger                   // uint32
	UnsignedLong                      // uint64
)

func (k NumberKind) String() string {
	switch k {
	case Integer:
		return "int32"
	case Long:
		return "int64"
	case UnsignedInteger:
		return "uint32"
	case UnsignedLong:
		return "uint64"
	default:
		return fmt.Sprintf("NumberKind(%d)", uint8(k))
	}
}

// Number is a read-time view of a VarInt as a single native numeric type.
// Signed kinds populate Signed, unsigned kinds populate Unsigned.
type Number struct {
	Kind     NumberKind
	Signed   int64
	Unsigned uint64
}

// Interface returns the number as an int32, int64, uint32 or uint64.
func (n Number) Interface() any {
	switch n.Kind {
	case Long:
		return n.Signed
	case UnsignedInteger:
		return uint32(n.Unsigned)
	case UnsignedLong:
		return n.Unsigned
	default:
		return int32(n.Signed)
	}
}

func (n Number) String() string {
	switch n.Kind {
	case UnsignedInteger, UnsignedLong:
		return strconv.FormatUint(n.Unsigned, 10)
	default:
		return strconv.FormatInt(n.Signed, 10)
	}
}

// projection holds the readings of a VarInt that carry information beyond
// its 32-bit signed value.
type projection struct {
	i32    int32
	i64    int64
	hasI64 bool
	u32    uint32
	hasU32 bool
	u64    uint64
	hasU64 bool
}

func project(v VarInt) projection {
	p := projection{i32: v.Int32()}
	wide := v.Len() >= 8

	if wide {
		if i64 := v.Int64(); i64 != int64(p.i32) {
			p.i64, p.hasI64 = i64, true
		}
	}

	// Uint32 is absent whenever i32 is negative, so with the current
	// projections neither unsigned candidate survives.
	if u32, ok := v.Uint32(); ok && p.i32 < 0 {
		p.u32, p.hasU32 = u32, true
	}

	if wide && p.hasU32 {
		if u64, ok := v.Uint64(); ok && u64 != uint64(p.u32) {
			p.u64, p.hasU64 = u64, true
		}
	}

	return p
}

// Closest picks the single most informative numeric reading of v: Long,
// then UnsignedInteger, then UnsignedLong, falling back to Integer when no
// wider or unsigned reading diverges from the 32-bit signed one.
func Closest(v VarInt) Number {
	p := project(v)
	switch {
	case p.hasI64:
		return Number{Kind: Long, Signed: p.i64}
	case p.hasU32:
		return Number{Kind: UnsignedInteger, Unsigned: uint64(p.u32)}
	case p.hasU64:
		return Number{Kind: UnsignedLong, Unsigned: p.u64}
	default:
		return Number{Kind: Integer, Signed: int64(p.i32)}
	}
}

// Candidates lists every surviving reading of v in the order
// [int32, int64?, uint32?, uint64?]. The first element is always present.
func Candidates(v VarInt) []any {
	p := project(v)
	out := []any{p.i32}
	if p.hasI64 {
		out = append(out, p.i64)
	}
	if p.hasU32 {
		out = append(out, p.u32)
	}
	if p.hasU64 {
		out = append(out, p.u64)
	}
	return out
}
