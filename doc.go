// Package wirepack provides buffer-oriented codecs for MessagePack and JSON.
//
// Both codecs convert between a shared in-memory data model and complete
// in-memory buffers. There is no streaming reader abstraction: encoders
// append to a Sink, decoders walk a []byte and hand out views into it
// wherever the wire bytes can serve as the payload directly.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	wirepack/            Root package with the Sink output abstraction
//	├── value/           Shared data model and struct/enum schemas
//	├── msgpack/         MessagePack binary codec
//	├── json/            RFC 8259 JSON text codec
//	├── errors/          Structured error types shared by both codecs
//	└── cmd/wirepack/    Format conversion and inspection tool
//
// # Quick Start
//
// Encode a value to MessagePack and decode it back:
//
//	var sink wirepack.BufferSink
//	err := msgpack.EncodeCompact(&sink, value.Array(value.Int(1), value.String("hi")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, n, err := msgpack.Decode(sink.Bytes())
//
// Convert between formats by decoding with one codec and encoding with
// the other; the data model is the pivot.
//
// # Presentation Modes
//
// Structs and enums have two wire presentations. Compact mode encodes
// structs as arrays of field values and identifies enum variants by
// index. Named mode encodes structs as maps keyed by field name and
// identifies variants by name. Schema-directed decoding accepts either
// presentation regardless of which mode produced it.
//
// # Zero Copy
//
// Decoded strings and byte blobs are views into the input buffer
// wherever the wire representation permits. JSON strings containing
// escape sequences are unescaped in place, so decoding mutates the
// input buffer. Callers that need the input intact afterwards must
// pass a copy.
package wirepack
