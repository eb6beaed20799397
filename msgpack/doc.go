// Package msgpack implements the MessagePack binary format over the
// shared data model.
//
// Encoding appends to a Sink and never buffers internally. Two
// presentation modes exist for structs and enums:
//
//   - EncodeCompact writes structs as arrays of field values and
//     identifies enum variants by index.
//   - EncodeNamed writes structs as maps keyed by field name and
//     identifies variants by name.
//
// Integers take the smallest wire width that holds the value, so 127
// encodes in one byte and 128 in two. Floats keep their declared width.
//
// Decoding walks a []byte with a cursor. Strings and byte blobs in the
// result are sub-slices of the input, never copies. Self-describing
// decode via Decode or ReadValue builds a neutral value tree;
// schema-directed decode via DecodeStruct and DecodeEnum accepts both
// the compact and the named wire shape regardless of which mode
// produced the bytes.
//
// Extension types are never produced. Skip steps over them so a cursor
// stays aligned, but reading one as a value fails.
package msgpack
