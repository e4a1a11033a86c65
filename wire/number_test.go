package wire

import (
	"reflect"
	"testing"
)

func TestClosest(t *testing.T) {
	tests := []struct {
		name       string
		varint     VarInt
		want       Number
		candidates []any
	}{
		{
			name:       "single byte",
			varint:     DecodeVarInt([]byte{0x02}),
			want:       Number{Kind: Integer, Signed: 2},
			candidates: []any{int32(2)},
		},
		{
			name:       "negative 32-bit",
			varint:     VarIntFromInt32(-1),
			want:       Number{Kind: Integer, Signed: -1},
			candidates: []any{int32(-1)},
		},
		{
			name:       "64-bit encoding of a 32-bit value",
			varint:     VarIntFromInt64(-33334),
			want:       Number{Kind: Integer, Signed: -33334},
			candidates: []any{int32(-33334)},
		},
		{
			name:       "diverging 64-bit value",
			varint:     VarIntFromInt64(-99999999999),
			want:       Number{Kind: Long, Signed: -99999999999},
			candidates: []any{int32(-1215752191), int64(-99999999999)},
		},
		{
			name:       "high bits only visible at 64 bits",
			varint:     VarIntFromInt64(1 << 40),
			want:       Number{Kind: Long, Signed: 1 << 40},
			candidates: []any{int32(0), int64(1 << 40)},
		},
		{
			name:       "wide value under eight groups stays 32-bit",
			varint:     DecodeVarInt(AppendShortestVarInt(nil, 1<<32)),
			want:       Number{Kind: Integer, Signed: 0},
			candidates: []any{int32(0)},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Closest(test.varint)
			if got != test.want {
				t.Errorf("Closest = %+v, want %+v", got, test.want)
			}
			if c := Candidates(test.varint); !reflect.DeepEqual(c, test.candidates) {
				t.Errorf("Candidates = %#v, want %#v", c, test.candidates)
			}
		})
	}
}

// Integer is chosen exactly when no other reading survives.
func TestClosest_IntegerIffSingleCandidate(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1 << 31, -(1 << 31), 1 << 33, -99999999999, 1<<63 - 1} {
		for _, varint := range []VarInt{VarIntFromInt64(v), VarIntFromInt32(int32(v))} {
			isInteger := Closest(varint).Kind == Integer
			single := len(Candidates(varint)) == 1
			if isInteger != single {
				t.Errorf("%d: Closest kind %s with %d candidates", v, Closest(varint).Kind, len(Candidates(varint)))
			}
		}
	}
}

func TestNumber_Interface(t *testing.T) {
	tests := []struct {
		n    Number
		want any
	}{
		{Number{Kind: Integer, Signed: -5}, int32(-5)},
		{Number{Kind: Long, Signed: -5}, int64(-5)},
		{Number{Kind: UnsignedInteger, Unsigned: 5}, uint32(5)},
		{Number{Kind: UnsignedLong, Unsigned: 5}, uint64(5)},
	}
	for _, test := range tests {
		if got := test.n.Interface(); got != test.want {
			t.Errorf("%s: Interface() = %#v, want %#v", test.n.Kind, got, test.want)
		}
	}
	if s := (Number{Kind: Long, Signed: -99999999999}).String(); s != "-99999999999" {
		t.Errorf("String() = %q", s)
	}
}
