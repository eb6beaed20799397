package msgpack

import (
	"bytes"
	"math"
	"testing"

	"github.com/wirepack/wirepack/errors"
	"github.com/wirepack/wirepack/value"
)

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want value.Value
	}{
		{"nil", []byte{0xc0}, value.Nil()},
		{"false", []byte{0xc2}, value.Bool(false)},
		{"true", []byte{0xc3}, value.Bool(true)},
		{"positive fixint", []byte{0x7f}, value.Int(127)},
		{"negative fixint", []byte{0xff}, value.Int(-1)},
		{"uint8", []byte{0xcc, 0x80}, value.Int(128)},
		{"int8", []byte{0xd0, 0xdf}, value.Int(-33)},
		{"uint16", []byte{0xcd, 0x01, 0x00}, value.Int(256)},
		{"int16", []byte{0xd1, 0xff, 0x7f}, value.Int(-129)},
		{"uint32", []byte{0xce, 0x80, 0x00, 0x00, 0x00}, value.Int(0x80000000)},
		{"int64", []byte{0xd3, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, value.Int(math.MinInt64)},
		{"uint64 above int64", []byte{0xcf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			value.Uint(math.MaxUint64)},
		{"float32", []byte{0xca, 0x3f, 0xc0, 0x00, 0x00}, value.Float32(1.5)},
		{"float64", []byte{0xcb, 0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, value.Float64(1.5)},
		{"fixstr", []byte{0xa2, 'h', 'i'}, value.String("hi")},
		{"bin", []byte{0xc4, 0x02, 0xde, 0xad}, value.Bin([]byte{0xde, 0xad})},
		{"array", []byte{0x92, 0x01, 0x02}, value.Array(value.Int(1), value.Int(2))},
		{"map", []byte{0x81, 0xa1, 'a', 0x01},
			value.Map(value.MapEntry{Key: value.String("a"), Val: value.Int(1)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if n != len(tt.data) {
				t.Errorf("consumed %d, want %d", n, len(tt.data))
			}
			if !value.Equal(got, tt.want) {
				t.Errorf("Decode = %v kind, want %v kind", got.Kind(), tt.want.Kind())
			}
		})
	}
}

func TestDecodeZeroCopy(t *testing.T) {
	data := []byte{0xa2, 'h', 'i'}
	v, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := v.StringBytes()
	if &got[0] != &data[1] {
		t.Error("decoded string should alias the input buffer")
	}
}

func TestDecodeTrailingData(t *testing.T) {
	_, _, err := Decode([]byte{0xc0, 0xc0})
	if !errors.IsKind(err, errors.KindTrailingData) {
		t.Fatalf("Decode = %v, want trailing_data", err)
	}
}

func TestDecodeTailFraming(t *testing.T) {
	data := []byte{0x01, 0xa1, 'x', 0xc3}
	var got []value.Value
	for len(data) > 0 {
		v, rest, err := DecodeTail(data)
		if err != nil {
			t.Fatalf("DecodeTail: %v", err)
		}
		got = append(got, v)
		data = rest
	}
	want := []value.Value{value.Int(1), value.String("x"), value.Bool(true)}
	if len(got) != len(want) {
		t.Fatalf("decoded %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if !value.Equal(got[i], want[i]) {
			t.Errorf("value %d = %v kind, want %v kind", i, got[i].Kind(), want[i].Kind())
		}
	}
}

func TestDecodeReservedTag(t *testing.T) {
	_, _, err := Decode([]byte{0xc1})
	if !errors.IsKind(err, errors.KindReservedTag) {
		t.Fatalf("Decode = %v, want reserved_tag", err)
	}
}

func TestDecodeExtRejected(t *testing.T) {
	for _, data := range [][]byte{
		{0xd4, 0x01, 0x00},
		{0xc7, 0x01, 0x01, 0x00},
	} {
		_, _, err := Decode(data)
		if !errors.IsKind(err, errors.KindUnsupportedExt) {
			t.Errorf("Decode(% x) = %v, want unsupported_ext", data, err)
		}
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	_, _, err := Decode([]byte{0xa1, 0xff})
	if !errors.IsKind(err, errors.KindInvalidUTF8) {
		t.Fatalf("Decode = %v, want invalid_utf8", err)
	}
}

func TestDecodeTruncationSweep(t *testing.T) {
	encodings := [][]byte{
		{0xcc, 0x80},
		{0xcd, 0x01, 0x00},
		{0xcb, 0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0xa2, 'h', 'i'},
		{0xc4, 0x02, 0xde, 0xad},
		{0x92, 0x01, 0x02},
		{0x81, 0xa1, 'a', 0x01},
		{0xdc, 0x00, 0x02, 0x01, 0x02},
		{0xd9, 0x03, 'a', 'b', 'c'},
	}
	for _, enc := range encodings {
		for cut := 1; cut <= len(enc); cut++ {
			_, _, err := Decode(enc[:len(enc)-cut])
			if len(enc) == cut {
				continue // empty input handled below
			}
			if !errors.IsKind(err, errors.KindUnexpectedEOF) {
				t.Errorf("Decode(% x truncated by %d) = %v, want unexpected_eof", enc, cut, err)
			}
		}
	}

	_, _, err := Decode(nil)
	if !errors.IsKind(err, errors.KindUnexpectedEOF) {
		t.Errorf("Decode(empty) = %v, want unexpected_eof", err)
	}
}

func TestDecodeDeclaredLengthBeyondInput(t *testing.T) {
	// str32 claiming 4 GiB
	_, _, err := Decode([]byte{0xdb, 0xff, 0xff, 0xff, 0xff, 'a'})
	if !errors.IsKind(err, errors.KindUnexpectedEOF) {
		t.Fatalf("Decode = %v, want unexpected_eof", err)
	}
	// array16 claiming more elements than bytes remain
	_, _, err = Decode([]byte{0xdc, 0xff, 0xff, 0x01})
	if !errors.IsKind(err, errors.KindUnexpectedEOF) {
		t.Fatalf("Decode = %v, want unexpected_eof", err)
	}
}

func TestCursorReads(t *testing.T) {
	data := []byte{
		0xc3,             // true
		0x7b,             // 123
		0xcc, 0xff,       // 255
		0xca, 0x3f, 0xc0, 0x00, 0x00, // 1.5
		0xa2, 'o', 'k',   // "ok"
		0x91, 0xc0,       // [nil]
	}
	d := NewDecoder(data)

	b, err := d.ReadBool()
	if err != nil || !b {
		t.Fatalf("ReadBool = %v, %v", b, err)
	}
	i, err := d.ReadInt()
	if err != nil || i != 123 {
		t.Fatalf("ReadInt = %d, %v", i, err)
	}
	u, err := d.ReadUint()
	if err != nil || u != 255 {
		t.Fatalf("ReadUint = %d, %v", u, err)
	}
	f, err := d.ReadFloat32()
	if err != nil || f != 1.5 {
		t.Fatalf("ReadFloat32 = %v, %v", f, err)
	}
	s, err := d.ReadString()
	if err != nil || string(s) != "ok" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	n, err := d.ReadArrayHeader()
	if err != nil || n != 1 {
		t.Fatalf("ReadArrayHeader = %d, %v", n, err)
	}
	if err := d.ReadNil(); err != nil {
		t.Fatalf("ReadNil: %v", err)
	}
	if d.Pos() != len(data) {
		t.Errorf("Pos() = %d, want %d", d.Pos(), len(data))
	}
	if len(d.Rest()) != 0 {
		t.Errorf("Rest() = % x, want empty", d.Rest())
	}
}

func TestCursorCoercions(t *testing.T) {
	// integer tags satisfy a float read
	d := NewDecoder([]byte{0x2a})
	f, err := d.ReadFloat64()
	if err != nil || f != 42 {
		t.Fatalf("ReadFloat64 = %v, %v", f, err)
	}

	// unsigned above int64 range does not satisfy an int read
	d = NewDecoder([]byte{0xcf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	if _, err := d.ReadInt(); !errors.IsKind(err, errors.KindOutOfRange) {
		t.Fatalf("ReadInt = %v, want out_of_range", err)
	}

	// negative does not satisfy a uint read
	d = NewDecoder([]byte{0xff})
	if _, err := d.ReadUint(); !errors.IsKind(err, errors.KindOutOfRange) {
		t.Fatalf("ReadUint = %v, want out_of_range", err)
	}

	// nil is not a float
	d = NewDecoder([]byte{0xc0})
	if _, err := d.ReadFloat64(); !errors.IsKind(err, errors.KindInvalidTag) {
		t.Fatalf("ReadFloat64(nil) = %v, want invalid_tag", err)
	}
}

func TestCursorWrongTagKeepsPosition(t *testing.T) {
	d := NewDecoder([]byte{0xa1, 'x'})
	if _, err := d.ReadInt(); !errors.IsKind(err, errors.KindInvalidTag) {
		t.Fatalf("ReadInt = %v, want invalid_tag", err)
	}
	if d.Pos() != 0 {
		t.Errorf("Pos() after failed read = %d, want 0", d.Pos())
	}
	s, err := d.ReadString()
	if err != nil || string(s) != "x" {
		t.Fatalf("ReadString after failed read = %q, %v", s, err)
	}
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"fixint", []byte{0x05}},
		{"nil", []byte{0xc0}},
		{"uint64", []byte{0xcf, 0, 0, 0, 0, 0, 0, 0, 1}},
		{"str", []byte{0xa3, 'a', 'b', 'c'}},
		{"bin", []byte{0xc4, 0x02, 1, 2}},
		{"nested array", []byte{0x92, 0x91, 0x01, 0xa1, 'x'}},
		{"map", []byte{0x81, 0xa1, 'k', 0x92, 0x01, 0x02}},
		{"fixext4", []byte{0xd6, 0xff, 1, 2, 3, 4}},
		{"ext8", []byte{0xc7, 0x03, 0x01, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(append(tt.data, 0xc3))
			if err := d.Skip(); err != nil {
				t.Fatalf("Skip: %v", err)
			}
			b, err := d.ReadBool()
			if err != nil || !b {
				t.Fatalf("cursor misaligned after Skip: %v, %v", b, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	values := []value.Value{
		value.Nil(),
		value.Bool(true),
		value.Int(-33),
		value.Int(127),
		value.Uint(math.MaxUint64),
		value.Float32(float32(math.Pi)),
		value.Float64(math.Inf(-1)),
		value.Float64(math.NaN()),
		value.String("héllo"),
		value.Bin([]byte{0, 1, 2, 255}),
		value.Array(value.Int(1), value.String("a"), value.Array(value.Nil())),
		value.Map(
			value.MapEntry{Key: value.String("k"), Val: value.Int(1)},
			value.MapEntry{Key: value.Int(2), Val: value.Bool(false)},
		),
	}
	for _, v := range values {
		for _, mode := range []string{"compact", "named"} {
			data := encodeCompact(t, v)
			if mode == "named" {
				data = encodeNamed(t, v)
			}
			got, n, err := Decode(data)
			if err != nil {
				t.Errorf("%s decode(% x): %v", mode, data, err)
				continue
			}
			if n != len(data) {
				t.Errorf("%s consumed %d of %d", mode, n, len(data))
			}
			if !value.Equal(got, v) {
				t.Errorf("%s round trip of %v kind not equal", mode, v.Kind())
			}
		}
	}
}

func TestDecodeStringBin16(t *testing.T) {
	payload := bytes.Repeat([]byte{'z'}, 300)
	data := append([]byte{0xda, 0x01, 0x2c}, payload...)
	v, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind() != value.KindString || len(v.StringBytes()) != 300 {
		t.Errorf("Decode = %v kind, %d bytes", v.Kind(), len(v.StringBytes()))
	}
}

func TestReadChar(t *testing.T) {
	for _, r := range []rune{'A', 'é', '中', '😀'} {
		data := encodeCompact(t, value.Char(r))
		d := NewDecoder(data)
		got, err := d.ReadChar()
		if err != nil {
			t.Errorf("ReadChar(%q): %v", r, err)
			continue
		}
		if got != r {
			t.Errorf("ReadChar = %q, want %q", got, r)
		}
		if d.Pos() != len(data) {
			t.Errorf("Pos() after %q = %d, want %d", r, d.Pos(), len(data))
		}
	}
}

func TestReadCharRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind errors.Kind
	}{
		{"two runes", []byte{0xa2, 'a', 'b'}, errors.KindInvalidType},
		{"empty str", []byte{0xa0}, errors.KindInvalidType},
		{"not a str", []byte{0x05}, errors.KindInvalidTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.data)
			if _, err := d.ReadChar(); !errors.IsKind(err, tt.kind) {
				t.Fatalf("ReadChar = %v, want %s", err, tt.kind)
			}
			if d.Pos() != 0 {
				t.Errorf("Pos() after failed read = %d, want 0", d.Pos())
			}
		})
	}
}

func TestReadBytesTruncatedStrHeader(t *testing.T) {
	d := NewDecoder([]byte{0xd9})
	if _, err := d.ReadBytes(); !errors.IsKind(err, errors.KindUnexpectedEOF) {
		t.Fatalf("ReadBytes = %v, want unexpected_eof", err)
	}
}
