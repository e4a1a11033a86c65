package wire

const (
	varIntGroups  = 5  // groups emitted for a 32-bit value
	varLongGroups = 10 // groups emitted for a 64-bit value
)

// VarInt is a decoded variable-length integer: the 7-bit payload groups of
// the wire bytes, most significant group first. It carries no sign or width;
// the projection methods reinterpret it. The zero VarInt reads as 0.
type VarInt struct {
	groups []byte
}

// DecodeVarInt strips the continuation bit from every byte of raw and orders
// the groups most significant first. It does not check termination.
func DecodeVarInt(raw []byte) VarInt {
	groups := make([]byte, len(raw))
	for i, b := range raw {
		groups[len(raw)-1-i] = b & 0x7F
	}
	return VarInt{groups: groups}
}

// RawVarIntAt returns the bytes of the varint starting at index: every byte
// with the continuation bit set plus the first byte without it. If the
// buffer ends before a terminator the returned run is unterminated.
func RawVarIntAt(b []byte, index int) []byte {
	if index < 0 || index >= len(b) {
		return nil
	}
	for i := index; i < len(b); i++ {
		if b[i]&0x80 == 0 {
			return b[index : i+1]
		}
	}
	return b[index:]
}

// DecodeVarIntAt decodes the varint starting at index and returns it with
// the number of bytes consumed.
func DecodeVarIntAt(b []byte, index int) (VarInt, int, error) {
	raw := RawVarIntAt(b, index)
	if !terminated(raw) {
		return VarInt{}, len(raw), ErrMalformedVarint
	}
	return DecodeVarInt(raw), len(raw), nil
}

func terminated(raw []byte) bool {
	return len(raw) > 0 && raw[len(raw)-1]&0x80 == 0
}

// EncodeVarInt encodes v as exactly five groups. The result is never the
// shortest form for small values; see AppendShortestVarInt.
func EncodeVarInt(v int32) []byte {
	return appendGroups(make([]byte, 0, varIntGroups), int64(v), varIntGroups)
}

// EncodeVarLong encodes v as exactly ten groups.
func EncodeVarLong(v int64) []byte {
	return appendGroups(make([]byte, 0, varLongGroups), v, varLongGroups)
}

// appendGroups emits n groups of the arithmetic-shifted bit pattern of v.
// The final byte is masked to its low five bits.
func appendGroups(b []byte, v int64, n int) []byte {
	for i := 0; i < n; i++ {
		c := byte(v >> (7 * i))
		if i == n-1 {
			c &= 0x1F
		} else {
			c |= 0x80
		}
		b = append(b, c)
	}
	return b
}

// AppendShortestVarInt appends the canonical shortest encoding of v.
func AppendShortestVarInt(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// VarIntFromInt32 returns the VarInt produced by EncodeVarInt(v).
func VarIntFromInt32(v int32) VarInt {
	return DecodeVarInt(EncodeVarInt(v))
}

// VarIntFromInt64 returns the VarInt produced by EncodeVarLong(v).
func VarIntFromInt64(v int64) VarInt {
	return DecodeVarInt(EncodeVarLong(v))
}

// Len returns the number of 7-bit groups, which equals the number of bytes
// the varint occupied on the wire.
func (v VarInt) Len() int {
	return len(v.groups)
}

// Int32 folds the groups into a 32-bit integer, wrapping on overflow.
func (v VarInt) Int32() int32 {
	var x int32
	for _, g := range v.groups {
		x = x<<7 | int32(g)
	}
	return x
}

// Int64 folds the groups into a 64-bit integer, wrapping on overflow.
func (v VarInt) Int64() int64 {
	var x int64
	for _, g := range v.groups {
		x = x<<7 | int64(g)
	}
	return x
}

// Uint32 returns the unsigned reading, absent when Int32 is negative.
func (v VarInt) Uint32() (uint32, bool) {
	x := v.Int32()
	if x < 0 {
		return 0, false
	}
	return uint32(x), true
}

// Uint64 returns the unsigned reading, absent when Int64 is negative.
func (v VarInt) Uint64() (uint64, bool) {
	x := v.Int64()
	if x < 0 {
		return 0, false
	}
	return uint64(x), true
}

// AppendWire appends the wire bytes v was decoded from.
func (v VarInt) AppendWire(b []byte) []byte {
	if len(v.groups) == 0 {
		return append(b, 0)
	}
	for i := len(v.groups) - 1; i >= 0; i-- {
		c := v.groups[i]
		if i > 0 {
			c |= 0x80
		}
		b = append(b, c)
	}
	return b
}

// Equal reports whether v and o have the same group sequence.
func (v VarInt) Equal(o VarInt) bool {
	if len(v.groups) != len(o.groups) {
		return false
	}
	for i := range v.groups {
		if v.groups[i] != o.groups[i] {
			return false
		}
	}
	return true
}
