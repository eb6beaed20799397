package value

import (
	"bytes"
	"math"
)

// Value is a node in the data model tree. The zero Value is nil.
type Value struct {
	schema  *StructSchema
	enum    *EnumSchema
	payload []byte
	elems   []Value
	entries []MapEntry
	num     uint64
	variant int
	kind    Kind
	boolean bool
}

// MapEntry is a single key-value pair of a map. Entries preserve wire
// order; duplicate keys are the producer's problem.
type MapEntry struct {
	Key Value
	Val Value
}

// Nil returns the nil value
func Nil() Value {
	return Value{kind: KindNil}
}

// Bool returns a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Int returns a signed integer value
func Int(i int64) Value {
	return Value{kind: KindInt, num: uint64(i)}
}

// Uint returns an unsigned integer value
func Uint(u uint64) Value {
	return Value{kind: KindUint, num: u}
}

// Float32 returns a 32 bit float value
func Float32(f float32) Value {
	return Value{kind: KindFloat32, num: uint64(math.Float32bits(f))}
}

// Float64 returns a 64 bit float value
func Float64(f float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(f)}
}

// Char returns a single character value
func Char(r rune) Value {
	return Value{kind: KindChar, num: uint64(uint32(r))}
}

// String returns a string value
func String(s string) Value {
	return Value{kind: KindString, payload: []byte(s)}
}

// StringBytes returns a string value backed by b without copying.
// The caller must not mutate b while the value is in use.
func StringBytes(b []byte) Value {
	return Value{kind: KindString, payload: b}
}

// Bin returns a byte blob value backed by b without copying
func Bin(b []byte) Value {
	return Value{kind: KindBytes, payload: b}
}

// Array returns an array value over elems
func Array(elems ...Value) Value {
	return Value{kind: KindArray, elems: elems}
}

// Map returns a map value over entries
func Map(entries ...MapEntry) Value {
	return Value{kind: KindMap, entries: entries}
}

// NewStruct returns a struct value. The fields must appear in the
// schema's declaration order and match its arity.
func NewStruct(schema *StructSchema, fields ...Value) Value {
	return Value{kind: KindStruct, schema: schema, elems: fields}
}

// Variant returns an enum value for the variant at the given index of
// the schema, carrying zero or more payload values. Unit variants take
// no payload, newtype variants exactly one, tuple and struct variants
// one per element or field.
func Variant(schema *EnumSchema, index int, payload ...Value) Value {
	return Value{kind: KindEnum, enum: schema, variant: index, elems: payload}
}

// Kind returns the runtime type of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNil reports whether the value is nil
func (v Value) IsNil() bool {
	return v.kind == KindNil
}

// Accessors return the zero value when called on the wrong kind.
// Callers switch on Kind first.

// Bool returns the boolean payload
func (v Value) Bool() bool {
	return v.boolean
}

// Int returns the signed integer payload
func (v Value) Int() int64 {
	return int64(v.num)
}

// Uint returns the unsigned integer payload
func (v Value) Uint() uint64 {
	return v.num
}

// Float32 returns the 32 bit float payload
func (v Value) Float32() float32 {
	return math.Float32frombits(uint32(v.num))
}

// Float64 returns the 64 bit float payload
func (v Value) Float64() float64 {
	return math.Float64frombits(v.num)
}

// Char returns the character payload
func (v Value) Char() rune {
	return rune(uint32(v.num))
}

// Text returns the string payload as a string, copying
func (v Value) Text() string {
	return string(v.payload)
}

// StringBytes returns the string payload without copying. The bytes
// may alias a decoder's input buffer.
func (v Value) StringBytes() []byte {
	return v.payload
}

// Bytes returns the byte blob payload without copying
func (v Value) Bytes() []byte {
	return v.payload
}

// Elems returns the array elements, struct field values, or enum
// variant payload
func (v Value) Elems() []Value {
	return v.elems
}

// Entries returns the map entries
func (v Value) Entries() []MapEntry {
	return v.entries
}

// Struct returns the struct schema, nil for non-struct values
func (v Value) Struct() *StructSchema {
	return v.schema
}

// Enum returns the enum schema and variant index. The schema is nil
// for non-enum values.
func (v Value) Enum() (*EnumSchema, int) {
	return v.enum, v.variant
}

// Equal reports deep equality of two values. Integers compare
// numerically across the signed and unsigned kinds, so a round trip
// through a self-describing format that widens or re-signs an integer
// still compares equal. Floats compare by bit pattern within the same
// width, so NaN equals NaN and negative zero differs from zero.
func Equal(a, b Value) bool {
	if an, aok := a.asNumber(); aok {
		bn, bok := b.asNumber()
		return bok && an == bn && a.numNegative() == b.numNegative()
	}

	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindFloat32, KindFloat64, KindChar:
		return a.num == b.num
	case KindString, KindBytes:
		return bytes.Equal(a.payload, b.payload)
	case KindArray:
		return elemsEqual(a.elems, b.elems)
	case KindMap:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if !Equal(a.entries[i].Key, b.entries[i].Key) ||
				!Equal(a.entries[i].Val, b.entries[i].Val) {
				return false
			}
		}
		return true
	case KindStruct:
		return a.schema == b.schema && elemsEqual(a.elems, b.elems)
	case KindEnum:
		return a.enum == b.enum && a.variant == b.variant && elemsEqual(a.elems, b.elems)
	}
	return false
}

func (v Value) asNumber() (uint64, bool) {
	switch v.kind {
	case KindInt, KindUint:
		return v.num, true
	}
	return 0, false
}

func (v Value) numNegative() bool {
	return v.kind == KindInt && int64(v.num) < 0
}

func elemsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
