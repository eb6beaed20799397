package json

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/wirepack/wirepack"
	"github.com/wirepack/wirepack/errors"
	"github.com/wirepack/wirepack/value"
)

// Encoder writes values as JSON text to a Sink. The presentation mode
// and byte strategy are fixed at construction.
type Encoder struct {
	sink   wirepack.Sink
	byteFn func(b []byte) ([]byte, error)
	bytes  ByteEncoding
	named  bool
}

// NewEncoder creates an encoder over s. Defaults are the named
// presentation and the array byte strategy.
func NewEncoder(s wirepack.Sink, opts ...EncOption) *Encoder {
	e := &Encoder{sink: s, named: true, bytes: ByteArray}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Marshal renders v with a growable buffer and returns the text
func Marshal(v value.Value, opts ...EncOption) ([]byte, error) {
	var s wirepack.BufferSink
	if err := NewEncoder(&s, opts...).Encode(v); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// MarshalCompact renders v in the compact presentation
func MarshalCompact(v value.Value, opts ...EncOption) ([]byte, error) {
	return Marshal(v, append([]EncOption{Compact()}, opts...)...)
}

// Encode writes one value. Any sink failure aborts immediately.
func (e *Encoder) Encode(v value.Value) error {
	return e.encode(v)
}

func (e *Encoder) write(p []byte) error {
	if err := e.sink.Append(p); err != nil {
		return errors.SinkFull(err)
	}
	return nil
}

func (e *Encoder) writeByte(b byte) error {
	return e.write([]byte{b})
}

func (e *Encoder) encode(v value.Value) error {
	switch v.Kind() {
	case value.KindNil:
		return e.write([]byte("null"))
	case value.KindBool:
		if v.Bool() {
			return e.write([]byte("true"))
		}
		return e.write([]byte("false"))
	case value.KindInt:
		return e.write(strconv.AppendInt(nil, v.Int(), 10))
	case value.KindUint:
		return e.write(strconv.AppendUint(nil, v.Uint(), 10))
	case value.KindFloat32:
		return e.writeFloat(float64(v.Float32()), 32)
	case value.KindFloat64:
		return e.writeFloat(v.Float64(), 64)
	case value.KindChar:
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], v.Char())
		return e.writeString(buf[:n])
	case value.KindString:
		return e.writeString(v.StringBytes())
	case value.KindBytes:
		return e.writeBlob(v.Bytes())
	case value.KindArray:
		return e.encodeArray(v.Elems())
	case value.KindMap:
		return e.encodeMap(v.Entries())
	case value.KindStruct:
		return e.encodeStruct(v)
	case value.KindEnum:
		return e.encodeEnum(v)
	}
	return errors.NotRepresentable("unknown value kind " + v.Kind().String())
}

func (e *Encoder) writeFloat(f float64, bits int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.NotRepresentable("JSON has no encoding for NaN or infinity")
	}
	return e.write(strconv.AppendFloat(nil, f, 'g', -1, bits))
}

const hexDigits = "0123456789abcdef"

// writeString emits b as a quoted JSON string, escaping quotes,
// backslashes, and control bytes. Multi-byte UTF-8 passes through.
func (e *Encoder) writeString(b []byte) error {
	if err := e.writeByte('"'); err != nil {
		return err
	}
	run := 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if i > run {
			if err := e.write(b[run:i]); err != nil {
				return err
			}
		}
		run = i + 1

		var esc []byte
		switch c {
		case '"':
			esc = []byte(`\"`)
		case '\\':
			esc = []byte(`\\`)
		case '\b':
			esc = []byte(`\b`)
		case '\t':
			esc = []byte(`\t`)
		case '\n':
			esc = []byte(`\n`)
		case '\f':
			esc = []byte(`\f`)
		case '\r':
			esc = []byte(`\r`)
		default:
			esc = []byte{'\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0x0f]}
		}
		if err := e.write(esc); err != nil {
			return err
		}
	}
	if run < len(b) {
		if err := e.write(b[run:]); err != nil {
			return err
		}
	}
	return e.writeByte('"')
}

func (e *Encoder) writeBlob(b []byte) error {
	if e.byteFn != nil {
		frag, err := e.byteFn(b)
		if err != nil {
			return errors.New(errors.PhaseEncode, errors.KindNotRepresentable).
				Detail("byte encoder failed").
				Cause(err).
				Build()
		}
		return e.write(frag)
	}

	switch e.bytes {
	case ByteArray:
		if err := e.writeByte('['); err != nil {
			return err
		}
		for i, c := range b {
			if i > 0 {
				if err := e.writeByte(','); err != nil {
					return err
				}
			}
			if err := e.write(strconv.AppendUint(nil, uint64(c), 10)); err != nil {
				return err
			}
		}
		return e.writeByte(']')
	case ByteHex:
		out := make([]byte, 2+hex.EncodedLen(len(b)))
		out[0] = '"'
		hex.Encode(out[1:], b)
		out[len(out)-1] = '"'
		return e.write(out)
	case ByteBase64:
		n := base64.StdEncoding.EncodedLen(len(b))
		out := make([]byte, 2+n)
		out[0] = '"'
		base64.StdEncoding.Encode(out[1:], b)
		out[len(out)-1] = '"'
		return e.write(out)
	case BytePassThrough:
		return e.write(b)
	}
	return errors.NotRepresentable("byte strategy not valid for encoding")
}

func (e *Encoder) encodeArray(elems []value.Value) error {
	if err := e.writeByte('['); err != nil {
		return err
	}
	for i, el := range elems {
		if i > 0 {
			if err := e.writeByte(','); err != nil {
				return err
			}
		}
		if err := e.encode(el); err != nil {
			return err
		}
	}
	return e.writeByte(']')
}

func (e *Encoder) encodeMap(entries []value.MapEntry) error {
	if err := e.writeByte('{'); err != nil {
		return err
	}
	for i, ent := range entries {
		if i > 0 {
			if err := e.writeByte(','); err != nil {
				return err
			}
		}
		if err := e.writeKey(ent.Key); err != nil {
			return err
		}
		if err := e.writeByte(':'); err != nil {
			return err
		}
		if err := e.encode(ent.Val); err != nil {
			return err
		}
	}
	return e.writeByte('}')
}

// writeKey renders a scalar as an object key. Non-string scalars are
// quoted; floats and compound values cannot be keys.
func (e *Encoder) writeKey(k value.Value) error {
	switch k.Kind() {
	case value.KindString:
		return e.writeString(k.StringBytes())
	case value.KindInt:
		return e.writeQuoted(strconv.AppendInt(nil, k.Int(), 10))
	case value.KindUint:
		return e.writeQuoted(strconv.AppendUint(nil, k.Uint(), 10))
	case value.KindBool:
		if k.Bool() {
			return e.writeQuoted([]byte("true"))
		}
		return e.writeQuoted([]byte("false"))
	case value.KindChar:
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], k.Char())
		return e.writeString(buf[:n])
	}
	return errors.New(errors.PhaseEncode, errors.KindInvalidKey).
		Detail("%s cannot be an object key", k.Kind()).
		Build()
}

func (e *Encoder) writeQuoted(b []byte) error {
	out := make([]byte, 0, len(b)+2)
	out = append(out, '"')
	out = append(out, b...)
	out = append(out, '"')
	return e.write(out)
}

func (e *Encoder) encodeStruct(v value.Value) error {
	sch := v.Struct()
	fields := v.Elems()
	if sch == nil || len(fields) != len(sch.Fields) {
		return errors.NotRepresentable("struct value does not match its schema")
	}

	if !e.named {
		return e.encodeArray(fields)
	}

	if err := e.writeByte('{'); err != nil {
		return err
	}
	for i, f := range fields {
		if i > 0 {
			if err := e.writeByte(','); err != nil {
				return err
			}
		}
		if err := e.writeString([]byte(sch.Fields[i])); err != nil {
			return err
		}
		if err := e.writeByte(':'); err != nil {
			return err
		}
		if err := e.encode(f); err != nil {
			return err
		}
	}
	return e.writeByte('}')
}

func (e *Encoder) encodeEnum(v value.Value) error {
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
			return e.writeString([]byte(vs.Name))
		}
		return e.write(strconv.AppendInt(nil, int64(idx), 10))
	}

	if e.named {
		if err := e.writeByte('{'); err != nil {
			return err
		}
		if err := e.writeString([]byte(vs.Name)); err != nil {
			return err
		}
		if err := e.writeByte(':'); err != nil {
			return err
		}
		if err := e.encodePayload(vs, v.Elems()); err != nil {
			return err
		}
		return e.writeByte('}')
	}

	if err := e.writeByte('['); err != nil {
		return err
	}
	if err := e.write(strconv.AppendInt(nil, int64(idx), 10)); err != nil {
		return err
	}
	if err := e.writeByte(','); err != nil {
		return err
	}
	if err := e.encodePayload(vs, v.Elems()); err != nil {
		return err
	}
	return e.writeByte(']')
}

func (e *Encoder) encodePayload(vs *value.VariantSchema, payload []value.Value) error {
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
