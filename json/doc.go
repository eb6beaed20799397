// Package json implements an RFC 8259 codec over the shared data model.
//
// Encoding appends UTF-8 text to a Sink. Structs and enums follow the
// encoder's presentation mode: named mode writes structs as objects and
// enum variants as "name" or {"name": payload}, compact mode writes
// structs as arrays and variants as index or [index, payload]. NaN and
// infinite floats have no JSON representation and fail the encode.
//
// JSON has no native byte blob, so the byte strategy chooses a
// carrier: an array of numbers, a hex string, a base64 string, a
// caller-rendered verbatim fragment, or a custom encoder function. On
// decode the array form is always accepted; the string form follows
// the configured strategy.
//
// Decoding works in place on a mutable buffer. Escape-free strings are
// returned as views into the input; strings with escapes are unescaped
// into their own storage, shrinking the region, and the view covers
// the decoded bytes. Either way no copy is made, so the caller must
// not rely on the buffer contents after a decode.
package json
