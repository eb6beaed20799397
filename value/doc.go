// Package value defines the in-memory data model shared by the wire codecs.
//
// A Value is a tagged union over the kinds both formats can carry: nil,
// booleans, signed and unsigned integers, 32 and 64 bit floats, characters,
// strings, byte blobs, arrays, maps, structs, and enum variants. Encoders
// walk a Value tree to produce wire bytes; decoders produce a Value tree
// from wire bytes.
//
// String and byte payloads are held as []byte so that decoders can hand out
// views into their input buffer without copying. Callers that mutate the
// input after decoding must copy first.
//
// Schemas describe the shape of structs and enums for schema-directed
// decoding:
//
//	point := &value.StructSchema{
//		Name:   "Point",
//		Fields: []string{"x", "y"},
//	}
//
// A StructSchema names the fields in declaration order, which fixes both the
// compact (array) layout and the set of accepted keys in the named (map)
// layout. An EnumSchema lists the variants with their index, name, and
// payload shape.
package value
