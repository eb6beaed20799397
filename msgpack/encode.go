package msgpack

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/wirepack/wirepack"
	"github.com/wirepack/wirepack/errors"
	"github.com/wirepack/wirepack/value"
)

// EncodeCompact writes v to s with structs as arrays and enum variants
// identified by index.
func EncodeCompact(s wirepack.Sink, v value.Value) error {
	e := encoder{sink: s}
	return e.encode(v)
}

// EncodeNamed writes v to s with structs as maps keyed by field name
// and enum variants identified by name.
func EncodeNamed(s wirepack.Sink, v value.Value) error {
	e := encoder{sink: s, named: true}
	return e.encode(v)
}

// AppendCompact appends the compact encoding of v to dst
func AppendCompact(dst []byte, v value.Value) ([]byte, error) {
	s := appendSink{buf: dst}
	if err := EncodeCompact(&s, v); err != nil {
		return dst, err
	}
	return s.buf, nil
}

// AppendNamed appends the named encoding of v to dst
func AppendNamed(dst []byte, v value.Value) ([]byte, error) {
	s := appendSink{buf: dst}
	if err := EncodeNamed(&s, v); err != nil {
		return dst, err
	}
	return s.buf, nil
}

type appendSink struct {
	buf []byte
}

func (s *appendSink) Append(p []byte) error {
	s.buf = append(s.buf, p...)
	return nil
}

type encoder struct {
	sink  wirepack.Sink
	named bool
}

func (e *encoder) write(p []byte) error {
	if err := e.sink.Append(p); err != nil {
		return errors.SinkFull(err)
	}
	return nil
}

func (e *encoder) writeByte(b byte) error {
	return e.write([]byte{b})
}

func (e *encoder) writeTag16(tag byte, v uint16) error {
	var buf [3]byte
	buf[0] = tag
	binary.BigEndian.PutUint16(buf[1:], v)
	return e.write(buf[:])
}

func (e *encoder) writeTag32(tag byte, v uint32) error {
	var buf [5]byte
	buf[0] = tag
	binary.BigEndian.PutUint32(buf[1:], v)
	return e.write(buf[:])
}

func (e *encoder) writeTag64(tag byte, v uint64) error {
	var buf [9]byte
	buf[0] = tag
	binary.BigEndian.PutUint64(buf[1:], v)
	return e.write(buf[:])
}

func (e *encoder) encode(v value.Value) error {
	switch v.Kind() {
	case value.KindNil:
		return e.writeByte(tagNil)
	case value.KindBool:
		if v.Bool() {
			return e.writeByte(tagTrue)
		}
		return e.writeByte(tagFalse)
	case value.KindInt:
		return e.writeInt(v.Int())
	case value.KindUint:
		return e.writeUint(v.Uint())
	case value.KindFloat32:
		return e.writeTag32(tagFloat32, math.Float32bits(v.Float32()))
	case value.KindFloat64:
		return e.writeTag64(tagFloat64, math.Float64bits(v.Float64()))
	case value.KindChar:
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], v.Char())
		if err := e.writeStrHeader(n); err != nil {
			return err
		}
		return e.write(buf[:n])
	case value.KindString:
		b := v.StringBytes()
		if err := e.writeStrHeader(len(b)); err != nil {
			return err
		}
		return e.write(b)
	case value.KindBytes:
		b := v.Bytes()
		if err := e.writeBinHeader(len(b)); err != nil {
			return err
		}
		return e.write(b)
	case value.KindArray:
		return e.encodeArray(v.Elems())
	case value.KindMap:
		entries := v.Entries()
		if err := e.writeMapHeader(len(entries)); err != nil {
			return err
		}
		for _, ent := range entries {
			if err := e.encode(ent.Key); err != nil {
				return err
			}
			if err := e.encode(ent.Val); err != nil {
				return err
			}
		}
		return nil
	case value.KindStruct:
		return e.encodeStruct(v)
	case value.KindEnum:
		return e.encodeEnum(v)
	}
	return errors.NotRepresentable("unknown value kind " + v.Kind().String())
}

// writeInt picks the narrowest encoding that round-trips the value,
// alternating signed and unsigned widths on the way up.
func (e *encoder) writeInt(i int64) error {
	switch {
	case i >= -32 && i <= 127:
		return e.writeByte(byte(i))
	case i >= math.MinInt8 && i <= math.MaxInt8:
		return e.write([]byte{tagInt8, byte(i)})
	case i >= 0 && i <= math.MaxUint8:
		return e.write([]byte{tagUint8, byte(i)})
	case i >= math.MinInt16 && i <= math.MaxInt16:
		return e.writeTag16(tagInt16, uint16(i))
	case i >= 0 && i <= math.MaxUint16:
		return e.writeTag16(tagUint16, uint16(i))
	case i >= math.MinInt32 && i <= math.MaxInt32:
		return e.writeTag32(tagInt32, uint32(i))
	case i >= 0 && i <= math.MaxUint32:
		return e.writeTag32(tagUint32, uint32(i))
	default:
		return e.writeTag64(tagInt64, uint64(i))
	}
}

func (e *encoder) writeUint(u uint64) error {
	switch {
	case u <= 127:
		return e.writeByte(byte(u))
	case u <= math.MaxUint8:
		return e.write([]byte{tagUint8, byte(u)})
	case u <= math.MaxUint16:
		return e.writeTag16(tagUint16, uint16(u))
	case u <= math.MaxUint32:
		return e.writeTag32(tagUint32, uint32(u))
	default:
		return e.writeTag64(tagUint64, u)
	}
}

func (e *encoder) writeStrHeader(n int) error {
	switch {
	case n <= fixStrMax:
		return e.writeByte(fixStr | byte(n))
	case n <= math.MaxUint8:
		return e.write([]byte{tagStr8, byte(n)})
	case n <= math.MaxUint16:
		return e.writeTag16(tagStr16, uint16(n))
	case int64(n) <= math.MaxUint32:
		return e.writeTag32(tagStr32, uint32(n))
	default:
		return e.lengthOverflow(n)
	}
}

func (e *encoder) writeBinHeader(n int) error {
	switch {
	case n <= math.MaxUint8:
		return e.write([]byte{tagBin8, byte(n)})
	case n <= math.MaxUint16:
		return e.writeTag16(tagBin16, uint16(n))
	case int64(n) <= math.MaxUint32:
		return e.writeTag32(tagBin32, uint32(n))
	default:
		return e.lengthOverflow(n)
	}
}

func (e *encoder) writeArrayHeader(n int) error {
	switch {
	case n <= fixArrayMax:
		return e.writeByte(fixArray | byte(n))
	case n <= math.MaxUint16:
		return e.writeTag16(tagArray16, uint16(n))
	case int64(n) <= math.MaxUint32:
		return e.writeTag32(tagArray32, uint32(n))
	default:
		return e.lengthOverflow(n)
	}
}

func (e *encoder) writeMapHeader(n int) error {
	switch {
	case n <= fixMapMax:
		return e.writeByte(fixMap | byte(n))
	case n <= math.MaxUint16:
		return e.writeTag16(tagMap16, uint16(n))
	case int64(n) <= math.MaxUint32:
		return e.writeTag32(tagMap32, uint32(n))
	default:
		return e.lengthOverflow(n)
	}
}

func (e *encoder) lengthOverflow(n int) error {
	return errors.New(errors.PhaseEncode, errors.KindLengthOverflow).
		Detail("length %d exceeds the 32 bit wire limit", n).
		Build()
}

func (e *encoder) encodeArray(elems []value.Value) error {
	if err := e.writeArrayHeader(len(elems)); err != nil {
		return err
	}
	for _, el := range elems {
		if err := e.encode(el); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeStruct(v value.Value) error {
	sch := v.Struct()
	fields := v.Elems()
	if sch == nil || len(fields) != len(sch.Fields) {
		return errors.NotRepresentable("struct value does not match its schema")
	}

	if !e.named {
		return e.encodeArray(fields)
	}

	if err := e.writeMapHeader(len(fields)); err != nil {
		return err
	}
	for i, f := range fields {
		if err := e.encodeName(sch.Fields[i]); err != nil {
			return err
		}
		if err := e.encode(f); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeName(name string) error {
	if err := e.writeStrHeader(len(name)); err != nil {
		return err
	}
	return e.write([]byte(name))
}

func (e *encoder) encodeEnum(v value.Value) error {
	sch, idx := v.Enum()
	if sch == nil {
		return errors.NotRepresentable("enum value without schema")
	}
	vs := sch.ByIndex(idx)
	if vs == nil {
		return errors.NotRepresentable("variant index not in schema " + sch.Name)
	}

	if vs.Shape == value.ShapeUnit {
		if e.named {
			return e.encodeName(vs.Name)
		}
		return e.writeInt(int64(idx))
	}

	// payload variants are a single-entry map from identifier to payload
	if err := e.writeByte(fixMap | 1); err != nil {
		return err
	}
	if e.named {
		if err := e.encodeName(vs.Name); err != nil {
			return err
		}
	} else {
		if err := e.writeInt(int64(idx)); err != nil {
			return err
		}
	}
	return e.encodePayload(vs, v.Elems())
}

func (e *encoder) encodePayload(vs *value.VariantSchema, payload []value.Value) error {
	switch vs.Shape {
	case value.ShapeNewtype:
		if len(payload) != 1 {
			return errors.NotRepresentable("newtype variant " + vs.Name + " requires one payload value")
		}
		return e.encode(payload[0])
	case value.ShapeTuple:
		if len(payload) != vs.Arity {
			return errors.NotRepresentable("tuple variant " + vs.Name + " payload arity mismatch")
		}
		return e.encodeArray(payload)
	case value.ShapeStruct:
		if vs.Struct == nil || len(payload) != len(vs.Struct.Fields) {
			return errors.NotRepresentable("struct variant " + vs.Name + " payload does not match its schema")
		}
		return e.encodeStruct(value.NewStruct(vs.Struct, payload...))
	}
	return errors.NotRepresentable("variant " + vs.Name + " has no payload shape")
}
