package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fixtureBase64 exercises every wire type: wide and narrow varints, both
// float widths, a string, raw bytes and a nested message.
const fixtureBase64 = "CMr7/f///////wEQgbCkvIv9////ARiaiigg/8/bw/QCLcP1SEAxswxxHH+ELkE4AUINSGVsbG8sIFdvcmxkIUogy7Z2rm0bzr4uZoGQPV2M+i52+c6kZtCFIKs/il2DQXdQAlovIgh5ZWFoeWVhaHog+RnnJSsU6kdRW/n67wdtWq59l0BbgApj5M6jlnpwZKDIOAA="

const fixtureJSON = `{"1":-33334,"2":[-1215752191,-99999999999],"3":656666,"4":1215752191,"5":3.14,"6":999999.55555,"7":1,"8":"Hello, World!","9":"y7Z2rm0bzr4uZoGQPV2M+i52+c6kZtCFIKs/il2DQXc=","10":2,"11":{"4":"yeahyeah","15":"+RnnJSsU6kdRW/n67wdtWq59l0BbgApj5M6jlnpwZKA=","905":0}}`

func fixture(t testing.TB) []byte {
	t.Helper()
	data, err := Base64Decode(fixtureBase64)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return data
}

func TestDecode_Fixture(t *testing.T) {
	msg, err := Decode(fixture(t))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(msg) != 11 {
		t.Errorf("expected 11 top-level fields, got %d", len(msg))
	}

	got, err := msg.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(got) != fixtureJSON {
		t.Errorf("JSON mismatch\n got: %s\nwant: %s", got, fixtureJSON)
	}

	t.Run("typed readings", func(t *testing.T) {
		if v, _ := msg[1].AsInt32(); v != -33334 {
			t.Errorf("field 1 = %d, want -33334", v)
		}
		if n := Closest(msg[2].varint); n.Kind != Long || n.Signed != -99999999999 {
			t.Errorf("field 2 Closest = %+v", n)
		}
		if f, ok := msg[5].AsFloat(); !ok || f != 3.14 {
			t.Errorf("field 5 = %v, %v; want float 3.14", f, ok)
		}
		if f, ok := msg[6].AsDouble(); !ok || f != 999999.55555 {
			t.Errorf("field 6 = %v, %v; want double 999999.55555", f, ok)
		}
		if b, ok := msg[7].AsBool(); !ok || !b {
			t.Errorf("field 7 = %v, %v; want true", b, ok)
		}
		if s, ok := msg[8].AsString(); !ok || s != "Hello, World!" {
			t.Errorf("field 8 = %q, %v", s, ok)
		}
		if b, ok := msg[9].AsBytes(); !ok || len(b) != 32 {
			t.Errorf("field 9 = %d bytes, %v; want 32 bytes", len(b), ok)
		}
		nested, ok := msg[11].AsMessage()
		if !ok {
			t.Fatalf("field 11 is %s, want message", msg[11].Kind())
		}
		if s, _ := nested[4].AsString(); s != "yeahyeah" {
			t.Errorf("field 11.4 = %q", s)
		}
		if v, _ := nested[905].AsInt32(); v != 0 {
			t.Errorf("field 11.905 = %d", v)
		}
	})
}

func TestDecode_Scenarios(t *testing.T) {
	nested := AppendInt32(nil, 1, 7)

	tests := []struct {
		name  string
		input []byte
		want  Message
	}{
		{
			name:  "signed 32-bit varint",
			input: AppendInt32(nil, 1, -33334),
			want:  Message{1: Int32Value(-33334)},
		},
		{
			name:  "utf-8 payload is a string",
			input: AppendString(nil, 2, "Hello, World!"),
			want:  Message{2: StringValue("Hello, World!")},
		},
		{
			name:  "payload framing a message",
			input: AppendBytes(nil, 3, nested),
			want:  Message{3: MessageValue(Message{1: Int32Value(7)})},
		},
		{
			name:  "opaque payload stays bytes",
			input: AppendBytes(nil, 4, []byte{0xff, 0xfe, 0xfd}),
			want:  Message{4: BytesValue([]byte{0xff, 0xfe, 0xfd})},
		},
		{
			name:  "empty payload is an empty message",
			input: AppendBytes(nil, 5, nil),
			want:  Message{5: MessageValue(Message{})},
		},
		{
			name:  "fixed widths",
			input: AppendFloat64(AppendFloat32(nil, 1, 1.5), 2, -2.25),
			want:  Message{1: FloatValue(1.5), 2: DoubleValue(-2.25)},
		},
		{
			name:  "64-bit varint",
			input: AppendInt64(nil, 6, -99999999999),
			want:  Message{6: Int64Value(-99999999999)},
		},
		{
			name:  "later occurrence wins",
			input: AppendInt32(AppendInt32(nil, 1, 10), 1, 20),
			want:  Message{1: Int32Value(20)},
		},
		{
			name:  "empty buffer",
			input: nil,
			want:  Message{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Decode(test.input)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_BytesAreCopied(t *testing.T) {
	input := AppendBytes(nil, 1, []byte{0xff, 0x00})
	msg, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	input[len(input)-2] = 0x01

	got, _ := msg[1].AsBytes()
	if !bytes.Equal(got, []byte{0xff, 0x00}) {
		t.Errorf("decoded bytes alias the input: % x", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		err    error
		offset int
		path   []FieldNumber
	}{
		{
			name:   "start group",
			input:  append(AppendHeader(nil, Header{7, WireStartGroup}), 0x01, 0x02, 0x03),
			err:    ErrUnsupportedWireType,
			offset: 0,
			path:   []FieldNumber{7},
		},
		{
			name:   "end group after a valid field",
			input:  AppendHeader(AppendInt32(nil, 1, 1), Header{2, WireEndGroup}),
			err:    ErrUnsupportedWireType,
			offset: 10,
			path:   []FieldNumber{2},
		},
		{
			name:   "wire type 6",
			input:  []byte{0x0e, 0x00},
			err:    ErrInvalidWireType,
			offset: 0,
		},
		{
			name:   "unterminated header",
			input:  []byte{0x80},
			err:    ErrMalformedVarint,
			offset: 0,
		},
		{
			name:   "unterminated varint value",
			input:  AppendInt32(nil, 1, 5)[:7],
			err:    ErrMalformedVarint,
			offset: 5,
			path:   []FieldNumber{1},
		},
		{
			name:   "truncated fixed32",
			input:  AppendFloat32(nil, 3, 1.5)[:7],
			err:    ErrTruncatedFixed32,
			offset: 5,
			path:   []FieldNumber{3},
		},
		{
			name:   "truncated fixed64",
			input:  AppendFloat64(nil, 4, 1.5)[:12],
			err:    ErrTruncatedFixed64,
			offset: 5,
			path:   []FieldNumber{4},
		},
		{
			name:   "payload shorter than length",
			input:  AppendString(nil, 2, "abc")[:12],
			err:    ErrTruncatedLengthDelimited,
			offset: 10,
			path:   []FieldNumber{2},
		},
		{
			name:   "negative length",
			input:  append(AppendHeader(nil, Header{2, WireLengthDelimited}), EncodeVarInt(-1)...),
			err:    ErrTruncatedLengthDelimited,
			offset: 10,
			path:   []FieldNumber{2},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg, err := Decode(test.input)
			if err == nil {
				t.Fatalf("expected error, decoded %v", msg)
			}
			if !errors.Is(err, test.err) {
				t.Errorf("expected %v, got %v", test.err, err)
			}

			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if de.Offset != test.offset {
				t.Errorf("offset = %d, want %d", de.Offset, test.offset)
			}
			if diff := cmp.Diff(test.path, de.FieldPath); diff != "" {
				t.Errorf("field path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// A nested payload that fails to decode only rules out the message reading.
func TestDecode_NestedFailureIsLocal(t *testing.T) {
	payload := append(AppendHeader(nil, Header{1, WireStartGroup}), 0xff)
	msg, err := Decode(AppendBytes(nil, 1, payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg[1].Kind() != KindBytes {
		t.Errorf("field 1 is %s, want bytes", msg[1].Kind())
	}
}

func TestDecode_Truncation(t *testing.T) {
	e := NewEncoder(nil)
	var boundaries []int
	mark := func() { boundaries = append(boundaries, len(e.Bytes())) }

	mark()
	e.WriteInt32(1, -33334)
	mark()
	e.WriteInt64(2, -99999999999)
	mark()
	e.WriteFloat32(3, 3.14)
	mark()
	e.WriteFloat64(4, 999999.55555)
	mark()
	e.WriteString(5, "Hello, World!")
	mark()
	e.WriteBytes(6, AppendInt32(nil, 1, 1))
	mark()
	full := e.Bytes()

	isBoundary := make(map[int]bool)
	for _, b := range boundaries {
		isBoundary[b] = true
	}

	for cut := 0; cut <= len(full); cut++ {
		_, err := Decode(full[:cut])
		if isBoundary[cut] && err != nil {
			t.Errorf("cut at field boundary %d: unexpected error %v", cut, err)
		}
		if !isBoundary[cut] && err == nil {
			t.Errorf("cut at %d inside a field decoded without error", cut)
		}
	}
}

func TestDecode_Idempotent(t *testing.T) {
	inputs := map[string][]byte{
		"fixture": fixture(t),
		"nested":  AppendBytes(AppendString(nil, 1, "x"), 2, AppendBytes(nil, 3, AppendInt64(nil, 4, 1<<40))),
		"empty":   nil,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			first, err := Decode(input)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			encoded, err := NewEncoder(nil).WriteMessage(first)
			if err != nil {
				t.Fatalf("WriteMessage: %v", err)
			}
			second, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode of re-encoded message: %v", err)
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("re-decode mismatch (-first +second):\n%s", diff)
			}
		})
	}
}

// nestedChain wraps inner in field 1 length-delimited layers.
func nestedChain(inner []byte, layers int) []byte {
	b := inner
	for i := 0; i < layers; i++ {
		b = AppendBytes(nil, 1, b)
	}
	return b
}

func TestDecode_DepthLimit(t *testing.T) {
	cfg := Config{MaxDepth: 4}

	t.Run("within limit", func(t *testing.T) {
		_, err := NewDecoderWithConfig(nestedChain(AppendInt32(nil, 1, 1), 4), cfg).Decode()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
	})

	t.Run("message beyond limit", func(t *testing.T) {
		_, err := NewDecoderWithConfig(nestedChain(AppendInt32(nil, 1, 1), 5), cfg).Decode()
		if !errors.Is(err, ErrNestingTooDeep) {
			t.Fatalf("expected ErrNestingTooDeep, got %v", err)
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("expected *DecodeError, got %T", err)
		}
		if diff := cmp.Diff([]FieldNumber{1, 1, 1, 1, 1}, de.FieldPath); diff != "" {
			t.Errorf("field path mismatch (-want +got):\n%s", diff)
		}
		if de.Offset != 50 {
			t.Errorf("offset = %d, want 50", de.Offset)
		}
	})

	t.Run("string beyond limit", func(t *testing.T) {
		msg, err := NewDecoderWithConfig(nestedChain([]byte("plain text"), 5), cfg).Decode()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		v := msg[1]
		for i := 0; i < 4; i++ {
			m, ok := v.AsMessage()
			if !ok {
				t.Fatalf("layer %d is %s, want message", i, v.Kind())
			}
			v = m[1]
		}
		if s, ok := v.AsString(); !ok || s != "plain text" {
			t.Errorf("innermost value = %v", v)
		}
	})

	t.Run("empty payload beyond limit", func(t *testing.T) {
		if _, err := NewDecoderWithConfig(nestedChain(nil, 5), cfg).Decode(); err != nil {
			t.Fatalf("Decode: %v", err)
		}
	})

	t.Run("unframed payload around deep message", func(t *testing.T) {
		// wire type 6 after the chain means field 1 cannot be a message
		payload := append(nestedChain(AppendInt32(nil, 1, 1), 4), 0x0e, 0x00)
		msg, err := NewDecoderWithConfig(AppendBytes(nil, 1, payload), cfg).Decode()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		b, ok := msg[1].AsBytes()
		if !ok {
			t.Fatalf("field 1 is %s, want bytes", msg[1].Kind())
		}
		if diff := cmp.Diff(payload, b); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("default limit", func(t *testing.T) {
		_, err := NewDecoderWithConfig(nestedChain(AppendInt32(nil, 1, 1), DefaultMaxDepth+1), Config{}).Decode()
		if !errors.Is(err, ErrNestingTooDeep) {
			t.Fatalf("expected ErrNestingTooDeep, got %v", err)
		}
	})
}

func TestResolveCandidates(t *testing.T) {
	b := BytesValue([]byte("x"))
	s := StringValue("x")
	m := MessageValue(Message{})

	tests := []struct {
		name       string
		candidates []Value
		want       Kind
	}{
		{"bytes only", []Value{b}, KindBytes},
		{"string beats bytes", []Value{b, s}, KindString},
		{"message beats bytes", []Value{b, m}, KindMessage},
		{"message beats string", []Value{b, s, m}, KindMessage},
		{"order does not matter", []Value{m, s, b}, KindMessage},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := resolveCandidates(test.candidates).Kind(); got != test.want {
				t.Errorf("resolveCandidates = %s, want %s", got, test.want)
			}
		})
	}
}
