package msgpack

import (
	"github.com/wirepack/wirepack/errors"
	"github.com/wirepack/wirepack/value"
)

// DecodeStruct reads one struct from data against the schema and
// requires the whole buffer to be consumed.
func DecodeStruct(data []byte, sch *value.StructSchema) (value.Value, int, error) {
	d := NewDecoder(data)
	v, err := d.ReadStruct(sch)
	if err != nil {
		return value.Nil(), d.pos, err
	}
	if d.pos != len(data) {
		return value.Nil(), d.pos, errors.TrailingData(d.pos)
	}
	return v, d.pos, nil
}

// DecodeEnum reads one enum value from data against the schema and
// requires the whole buffer to be consumed.
func DecodeEnum(data []byte, sch *value.EnumSchema) (value.Value, int, error) {
	d := NewDecoder(data)
	v, err := d.ReadEnum(sch)
	if err != nil {
		return value.Nil(), d.pos, err
	}
	if d.pos != len(data) {
		return value.Nil(), d.pos, errors.TrailingData(d.pos)
	}
	return v, d.pos, nil
}

func isIntTag(tag byte) bool {
	return tag <= 0x7f || tag >= fixIntN ||
		(tag >= tagUint8 && tag <= tagInt64)
}

func isStrTag(tag byte) bool {
	return (tag >= fixStr && tag < tagNil) ||
		tag == tagStr8 || tag == tagStr16 || tag == tagStr32
}

func isMapTag(tag byte) bool {
	return (tag >= fixMap && tag < fixArray) ||
		tag == tagMap16 || tag == tagMap32
}

func isArrayTag(tag byte) bool {
	return (tag >= fixArray && tag < fixStr) ||
		tag == tagArray16 || tag == tagArray32
}

// ReadStruct reads one struct against the schema. Both wire shapes are
// accepted: an array resolves fields by position, a map by field name
// for string keys or by field index for integer keys. Unknown map keys
// are skipped; every schema field must be present.
func (d *Decoder) ReadStruct(sch *value.StructSchema) (value.Value, error) {
	start := d.pos
	tag, err := d.Peek()
	if err != nil {
		return value.Nil(), err
	}

	switch {
	case isArrayTag(tag):
		return d.readStructArray(sch)
	case isMapTag(tag):
		return d.readStructMap(sch)
	}
	return value.Nil(), errors.InvalidTag(start, tag, "struct "+sch.Name)
}

func (d *Decoder) readStructArray(sch *value.StructSchema) (value.Value, error) {
	n, err := d.ReadArrayHeader()
	if err != nil {
		return value.Nil(), err
	}
	if n < len(sch.Fields) {
		return value.Nil(), errors.MissingField(sch.Name, sch.Fields[n])
	}
	if n > len(sch.Fields) {
		return value.Nil(), errors.TrailingData(d.pos)
	}
	fields := make([]value.Value, n)
	for i := range fields {
		if fields[i], err = d.ReadValue(); err != nil {
			return value.Nil(), err
		}
	}
	return value.NewStruct(sch, fields...), nil
}

func (d *Decoder) readStructMap(sch *value.StructSchema) (value.Value, error) {
	n, err := d.ReadMapHeader()
	if err != nil {
		return value.Nil(), err
	}

	fields := make([]value.Value, len(sch.Fields))
	seen := make([]bool, len(sch.Fields))

	for e := 0; e < n; e++ {
		idx, err := d.readFieldKey(sch)
		if err != nil {
			return value.Nil(), err
		}
		if idx < 0 {
			if err := d.Skip(); err != nil {
				return value.Nil(), err
			}
			continue
		}
		if fields[idx], err = d.ReadValue(); err != nil {
			return value.Nil(), err
		}
		seen[idx] = true
	}

	for i, ok := range seen {
		if !ok {
			return value.Nil(), errors.MissingField(sch.Name, sch.Fields[i])
		}
	}
	return value.NewStruct(sch, fields...), nil
}

// readFieldKey resolves a map key to a field position, -1 for keys
// outside the schema
func (d *Decoder) readFieldKey(sch *value.StructSchema) (int, error) {
	start := d.pos
	tag, err := d.Peek()
	if err != nil {
		return 0, err
	}

	switch {
	case isStrTag(tag):
		name, err := d.ReadString()
		if err != nil {
			return 0, err
		}
		return sch.FieldIndex(string(name)), nil
	case isIntTag(tag):
		i, err := d.ReadInt()
		if err != nil {
			return 0, err
		}
		if i < 0 || i >= int64(len(sch.Fields)) {
			return -1, nil
		}
		return int(i), nil
	}
	return 0, errors.InvalidTag(start, tag, "field key")
}

// ReadEnum reads one enum value against the schema. A bare integer or
// string is a unit variant; a single-entry map carries a payload
// variant keyed by index or name.
func (d *Decoder) ReadEnum(sch *value.EnumSchema) (value.Value, error) {
	start := d.pos
	tag, err := d.Peek()
	if err != nil {
		return value.Nil(), err
	}

	switch {
	case isIntTag(tag), isStrTag(tag):
		vs, err := d.readVariantIdent(sch)
		if err != nil {
			return value.Nil(), err
		}
		if vs.Shape != value.ShapeUnit {
			return value.Nil(), errors.New(errors.PhaseDecode, errors.KindInvalidType).
				Offset(start).
				Detail("variant %q of %q carries a payload", vs.Name, sch.Name).
				Build()
		}
		return value.Variant(sch, vs.Index), nil
	case isMapTag(tag):
		n, err := d.ReadMapHeader()
		if err != nil {
			return value.Nil(), err
		}
		if n != 1 {
			return value.Nil(), errors.New(errors.PhaseDecode, errors.KindInvalidType).
				Offset(start).
				Detail("enum map must have exactly one entry, got %d", n).
				Build()
		}
		vs, err := d.readVariantIdent(sch)
		if err != nil {
			return value.Nil(), err
		}
		payload, err := d.readVariantPayload(vs)
		if err != nil {
			return value.Nil(), err
		}
		return value.Variant(sch, vs.Index, payload...), nil
	}
	return value.Nil(), errors.InvalidTag(start, tag, "enum "+sch.Name)
}

func (d *Decoder) readVariantIdent(sch *value.EnumSchema) (*value.VariantSchema, error) {
	start := d.pos
	tag, err := d.Peek()
	if err != nil {
		return nil, err
	}

	switch {
	case isStrTag(tag):
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		vs := sch.ByName(string(name))
		if vs == nil {
			return nil, errors.UnknownVariant(start, sch.Name, string(name))
		}
		return vs, nil
	case isIntTag(tag):
		i, err := d.ReadInt()
		if err != nil {
			return nil, err
		}
		vs := sch.ByIndex(int(i))
		if vs == nil {
			return nil, errors.UnknownVariant(start, sch.Name, i)
		}
		return vs, nil
	}
	return nil, errors.InvalidTag(start, tag, "variant identifier")
}

func (d *Decoder) readVariantPayload(vs *value.VariantSchema) ([]value.Value, error) {
	start := d.pos
	switch vs.Shape {
	case value.ShapeNewtype:
		v, err := d.ReadValue()
		if err != nil {
			return nil, err
		}
		return []value.Value{v}, nil
	case value.ShapeTuple:
		n, err := d.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if n != vs.Arity {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidType).
				Offset(start).
				Detail("variant %q expects %d elements, got %d", vs.Name, vs.Arity, n).
				Build()
		}
		elems := make([]value.Value, n)
		for i := range elems {
			if elems[i], err = d.ReadValue(); err != nil {
				return nil, err
			}
		}
		return elems, nil
	case value.ShapeStruct:
		v, err := d.ReadStruct(vs.Struct)
		if err != nil {
			return nil, err
		}
		return v.Elems(), nil
	}
	return nil, errors.New(errors.PhaseDecode, errors.KindInvalidType).
		Offset(start).
		Detail("unit variant %q takes no payload", vs.Name).
		Build()
}
