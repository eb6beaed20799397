package json

import (
	"github.com/wirepack/wirepack/errors"
	"github.com/wirepack/wirepack/value"
)

// DecodeStruct reads one struct from buf against the schema and
// requires only whitespace to remain.
func DecodeStruct(buf []byte, sch *value.StructSchema, opts ...DecOption) (value.Value, error) {
	d := NewDecoder(buf, opts...)
	v, err := d.ReadStruct(sch)
	if err != nil {
		return value.Nil(), err
	}
	if err := d.expectEnd(); err != nil {
		return value.Nil(), err
	}
	return v, nil
}

// DecodeEnum reads one enum value from buf against the schema and
// requires only whitespace to remain.
func DecodeEnum(buf []byte, sch *value.EnumSchema, opts ...DecOption) (value.Value, error) {
	d := NewDecoder(buf, opts...)
	v, err := d.ReadEnum(sch)
	if err != nil {
		return value.Nil(), err
	}
	if err := d.expectEnd(); err != nil {
		return value.Nil(), err
	}
	return v, nil
}

// ReadStruct reads one struct against the schema. An object resolves
// fields by name, an array by position. Unknown object keys are
// skipped, or rejected under the Strict option; every schema field
// must be present.
func (d *Decoder) ReadStruct(sch *value.StructSchema) (value.Value, error) {
	c, err := d.peek()
	if err != nil {
		return value.Nil(), err
	}
	switch c {
	case '{':
		return d.readStructObject(sch)
	case '[':
		return d.readStructArray(sch)
	}
	return value.Nil(), d.typeError("struct " + sch.Name)
}

func (d *Decoder) readStructObject(sch *value.StructSchema) (value.Value, error) {
	d.pos++ // '{'
	fields := make([]value.Value, len(sch.Fields))
	seen := make([]bool, len(sch.Fields))

	c, err := d.peek()
	if err != nil {
		return value.Nil(), err
	}
	if c != '}' {
		for {
			keyStart := d.pos
			key, err := d.ReadString()
			if err != nil {
				return value.Nil(), err
			}
			if err := d.expect(':'); err != nil {
				return value.Nil(), err
			}

			idx := sch.FieldIndex(string(key))
			if idx < 0 {
				if d.cfg.strict {
					return value.Nil(), errors.UnknownField(keyStart, sch.Name, string(key))
				}
				if err := d.Skip(); err != nil {
					return value.Nil(), err
				}
			} else {
				if fields[idx], err = d.ReadValue(); err != nil {
					return value.Nil(), err
				}
				seen[idx] = true
			}

			c, err := d.peek()
			if err != nil {
				return value.Nil(), err
			}
			if c == ',' {
				d.pos++
				continue
			}
			if c == '}' {
				break
			}
			return value.Nil(), errors.Syntax(d.pos, "expected ',' or '}'")
		}
	}
	d.pos++ // '}'

	for i, ok := range seen {
		if !ok {
			return value.Nil(), errors.MissingField(sch.Name, sch.Fields[i])
		}
	}
	return value.NewStruct(sch, fields...), nil
}

func (d *Decoder) readStructArray(sch *value.StructSchema) (value.Value, error) {
	d.pos++ // '['
	fields := make([]value.Value, 0, len(sch.Fields))

	c, err := d.peek()
	if err != nil {
		return value.Nil(), err
	}
	if c != ']' {
		for {
			if len(fields) == len(sch.Fields) {
				return value.Nil(), errors.TrailingData(d.pos)
			}
			v, err := d.ReadValue()
			if err != nil {
				return value.Nil(), err
			}
			fields = append(fields, v)

			c, err := d.peek()
			if err != nil {
				return value.Nil(), err
			}
			if c == ',' {
				d.pos++
				continue
			}
			if c == ']' {
				break
			}
			return value.Nil(), errors.Syntax(d.pos, "expected ',' or ']'")
		}
	}
	d.pos++ // ']'

	if len(fields) < len(sch.Fields) {
		return value.Nil(), errors.MissingField(sch.Name, sch.Fields[len(fields)])
	}
	return value.NewStruct(sch, fields...), nil
}

// ReadEnum reads one enum value against the schema. A bare string or
// integer is a unit variant; an object carries a payload variant keyed
// by name; an array pairs a variant index with its payload.
func (d *Decoder) ReadEnum(sch *value.EnumSchema) (value.Value, error) {
	start := d.pos
	c, err := d.peek()
	if err != nil {
		return value.Nil(), err
	}

	switch {
	case c == '"':
		name, err := d.ReadString()
		if err != nil {
			return value.Nil(), err
		}
		vs := sch.ByName(string(name))
		if vs == nil {
			return value.Nil(), errors.UnknownVariant(start, sch.Name, string(name))
		}
		return d.unitVariant(sch, vs, start)
	case c == '-' || (c >= '0' && c <= '9'):
		idx, err := d.ReadInt()
		if err != nil {
			return value.Nil(), err
		}
		vs := sch.ByIndex(int(idx))
		if vs == nil {
			return value.Nil(), errors.UnknownVariant(start, sch.Name, idx)
		}
		return d.unitVariant(sch, vs, start)
	case c == '{':
		return d.readEnumObject(sch)
	case c == '[':
		return d.readEnumArray(sch)
	}
	return value.Nil(), d.typeError("enum " + sch.Name)
}

func (d *Decoder) unitVariant(sch *value.EnumSchema, vs *value.VariantSchema, start int) (value.Value, error) {
	if vs.Shape != value.ShapeUnit {
		return value.Nil(), errors.New(errors.PhaseDecode, errors.KindInvalidType).
			Offset(start).
			Detail("variant %q of %q carries a payload", vs.Name, sch.Name).
			Build()
	}
	return value.Variant(sch, vs.Index), nil
}

func (d *Decoder) readEnumObject(sch *value.EnumSchema) (value.Value, error) {
	d.pos++ // '{'
	keyStart := d.pos
	name, err := d.ReadString()
	if err != nil {
		return value.Nil(), err
	}
	vs := sch.ByName(string(name))
	if vs == nil {
		return value.Nil(), errors.UnknownVariant(keyStart, sch.Name, string(name))
	}
	if err := d.expect(':'); err != nil {
		return value.Nil(), err
	}
	payload, err := d.readVariantPayload(vs)
	if err != nil {
		return value.Nil(), err
	}
	if err := d.expect('}'); err != nil {
		return value.Nil(), err
	}
	return value.Variant(sch, vs.Index, payload...), nil
}

func (d *Decoder) readEnumArray(sch *value.EnumSchema) (value.Value, error) {
	d.pos++ // '['
	idxStart := d.pos
	idx, err := d.ReadInt()
	if err != nil {
		return value.Nil(), err
	}
	vs := sch.ByIndex(int(idx))
	if vs == nil {
		return value.Nil(), errors.UnknownVariant(idxStart, sch.Name, idx)
	}
	if err := d.expect(','); err != nil {
		return value.Nil(), err
	}
	payload, err := d.readVariantPayload(vs)
	if err != nil {
		return value.Nil(), err
	}
	if err := d.expect(']'); err != nil {
		return value.Nil(), err
	}
	return value.Variant(sch, vs.Index, payload...), nil
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
		return d.readTuplePayload(vs)
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

func (d *Decoder) readTuplePayload(vs *value.VariantSchema) ([]value.Value, error) {
	start := d.pos
	if err := d.expect('['); err != nil {
		return nil, err
	}
	elems := make([]value.Value, 0, vs.Arity)
	c, err := d.peek()
	if err != nil {
		return nil, err
	}
	if c != ']' {
		for {
			v, err := d.ReadValue()
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)

			c, err := d.peek()
			if err != nil {
				return nil, err
			}
			if c == ',' {
				d.pos++
				continue
			}
			if c == ']' {
				break
			}
			return nil, errors.Syntax(d.pos, "expected ',' or ']'")
		}
	}
	d.pos++ // ']'

	if len(elems) != vs.Arity {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidType).
			Offset(start).
			Detail("variant %q expects %d elements, got %d", vs.Name, vs.Arity, len(elems)).
			Build()
	}
	return elems, nil
}
