package msgpack

import (
	"testing"

	"github.com/wirepack/wirepack/errors"
	"github.com/wirepack/wirepack/value"
)

func testPointSchema() *value.StructSchema {
	return &value.StructSchema{Name: "Point", Fields: []string{"x", "y"}}
}

func TestDecodeStructBothShapes(t *testing.T) {
	point := testPointSchema()
	want := value.NewStruct(point, value.Int(1), value.Int(2))

	tests := []struct {
		name string
		data []byte
	}{
		{"array shape", []byte{0x92, 0x01, 0x02}},
		{"map by name", []byte{0x82, 0xa1, 'x', 0x01, 0xa1, 'y', 0x02}},
		{"map shuffled", []byte{0x82, 0xa1, 'y', 0x02, 0xa1, 'x', 0x01}},
		{"map by index", []byte{0x82, 0x00, 0x01, 0x01, 0x02}},
		{"map mixed keys", []byte{0x82, 0xa1, 'x', 0x01, 0x01, 0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := DecodeStruct(tt.data, point)
			if err != nil {
				t.Fatalf("DecodeStruct: %v", err)
			}
			if n != len(tt.data) {
				t.Errorf("consumed %d, want %d", n, len(tt.data))
			}
			if !value.Equal(got, want) {
				t.Errorf("fields = %v, want x=1 y=2", got.Elems())
			}
		})
	}
}

func TestDecodeStructUnknownKeySkipped(t *testing.T) {
	point := testPointSchema()
	// extra key "z" with a nested value worth skipping
	data := []byte{0x83, 0xa1, 'z', 0x92, 0x01, 0x02, 0xa1, 'x', 0x01, 0xa1, 'y', 0x02}
	got, _, err := DecodeStruct(data, point)
	if err != nil {
		t.Fatalf("DecodeStruct: %v", err)
	}
	if !value.Equal(got, value.NewStruct(point, value.Int(1), value.Int(2))) {
		t.Errorf("fields = %v, want x=1 y=2", got.Elems())
	}
}

func TestDecodeStructMissingField(t *testing.T) {
	point := testPointSchema()
	tests := []struct {
		name string
		data []byte
	}{
		{"short array", []byte{0x91, 0x01}},
		{"map missing y", []byte{0x81, 0xa1, 'x', 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeStruct(tt.data, point)
			if !errors.IsKind(err, errors.KindMissingField) {
				t.Fatalf("DecodeStruct = %v, want missing_field", err)
			}
		})
	}
}

func TestDecodeStructSurplusElements(t *testing.T) {
	point := testPointSchema()
	_, _, err := DecodeStruct([]byte{0x93, 0x01, 0x02, 0x03}, point)
	if !errors.IsKind(err, errors.KindTrailingData) {
		t.Fatalf("DecodeStruct = %v, want trailing_data", err)
	}
}

func TestDecodeStructWrongShape(t *testing.T) {
	_, _, err := DecodeStruct([]byte{0xa1, 'x'}, testPointSchema())
	if !errors.IsKind(err, errors.KindInvalidTag) {
		t.Fatalf("DecodeStruct = %v, want invalid_tag", err)
	}
}

func TestDecodeEnumBothIdentifiers(t *testing.T) {
	color := testColorSchema()

	tests := []struct {
		name string
		data []byte
		want value.Value
	}{
		{"unit by index", []byte{0x00}, value.Variant(color, 0)},
		{"unit by name", []byte{0xa3, 'R', 'e', 'd'}, value.Variant(color, 0)},
		{"newtype by index", []byte{0x81, 0x01, 0x05},
			value.Variant(color, 1, value.Int(5))},
		{"newtype by name", []byte{0x81, 0xa4, 'G', 'r', 'a', 'y', 0x05},
			value.Variant(color, 1, value.Int(5))},
		{"tuple by index", []byte{0x81, 0x02, 0x93, 0x01, 0x02, 0x03},
			value.Variant(color, 2, value.Int(1), value.Int(2), value.Int(3))},
		{"struct by index compact payload", []byte{0x81, 0x03, 0x93, 0x01, 0x02, 0x03},
			value.Variant(color, 3, value.Int(1), value.Int(2), value.Int(3))},
		{"struct by name map payload",
			[]byte{0x81, 0xa3, 'H', 's', 'l', 0x83, 0xa1, 'h', 0x01, 0xa1, 's', 0x02, 0xa1, 'l', 0x03},
			value.Variant(color, 3, value.Int(1), value.Int(2), value.Int(3))},
		// cross presentation: name identifier with compact payload
		{"name ident array payload", []byte{0x81, 0xa3, 'H', 's', 'l', 0x93, 0x01, 0x02, 0x03},
			value.Variant(color, 3, value.Int(1), value.Int(2), value.Int(3))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := DecodeEnum(tt.data, color)
			if err != nil {
				t.Fatalf("DecodeEnum: %v", err)
			}
			if n != len(tt.data) {
				t.Errorf("consumed %d, want %d", n, len(tt.data))
			}
			if !value.Equal(got, tt.want) {
				_, idx := got.Enum()
				t.Errorf("variant %d payload %v, want %v", idx, got.Elems(), tt.want.Elems())
			}
		})
	}
}

func TestDecodeEnumUnknownVariant(t *testing.T) {
	color := testColorSchema()
	tests := []struct {
		name string
		data []byte
	}{
		{"index out of range", []byte{0x09}},
		{"unknown name", []byte{0xa5, 'M', 'a', 'u', 'v', 'e'}},
		{"unknown in map", []byte{0x81, 0x09, 0x05}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeEnum(tt.data, color)
			if !errors.IsKind(err, errors.KindUnknownVariant) {
				t.Fatalf("DecodeEnum = %v, want unknown_variant", err)
			}
		})
	}
}

func TestDecodeEnumShapeMismatch(t *testing.T) {
	color := testColorSchema()

	// payload variant given as a bare identifier
	_, _, err := DecodeEnum([]byte{0x01}, color)
	if !errors.IsKind(err, errors.KindInvalidType) {
		t.Fatalf("bare newtype ident = %v, want invalid_type", err)
	}

	// unit variant wrapped in a map
	_, _, err = DecodeEnum([]byte{0x81, 0x00, 0xc0}, color)
	if !errors.IsKind(err, errors.KindInvalidType) {
		t.Fatalf("unit in map = %v, want invalid_type", err)
	}

	// tuple with wrong arity
	_, _, err = DecodeEnum([]byte{0x81, 0x02, 0x92, 0x01, 0x02}, color)
	if !errors.IsKind(err, errors.KindInvalidType) {
		t.Fatalf("tuple arity = %v, want invalid_type", err)
	}

	// map with two entries
	_, _, err = DecodeEnum([]byte{0x82, 0x01, 0x05, 0x02, 0x05}, color)
	if !errors.IsKind(err, errors.KindInvalidType) {
		t.Fatalf("two entry map = %v, want invalid_type", err)
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	point := testPointSchema()
	color := testColorSchema()

	structs := []value.Value{
		value.NewStruct(point, value.Int(-1), value.Uint(300)),
	}
	for _, v := range structs {
		for _, enc := range []func(*testing.T, value.Value) []byte{encodeCompact, encodeNamed} {
			data := enc(t, v)
			got, _, err := DecodeStruct(data, point)
			if err != nil {
				t.Fatalf("DecodeStruct(% x): %v", data, err)
			}
			if !value.Equal(got, v) {
				t.Errorf("struct round trip mismatch for % x", data)
			}
		}
	}

	enums := []value.Value{
		value.Variant(color, 0),
		value.Variant(color, 1, value.String("slate")),
		value.Variant(color, 2, value.Int(1), value.Int(2), value.Int(3)),
		value.Variant(color, 3, value.Float64(0.5), value.Float64(0.25), value.Float64(0.125)),
	}
	for _, v := range enums {
		for _, enc := range []func(*testing.T, value.Value) []byte{encodeCompact, encodeNamed} {
			data := enc(t, v)
			got, _, err := DecodeEnum(data, color)
			if err != nil {
				t.Fatalf("DecodeEnum(% x): %v", data, err)
			}
			if !value.Equal(got, v) {
				t.Errorf("enum round trip mismatch for % x", data)
			}
		}
	}
}
