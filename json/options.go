package json

// ByteEncoding selects the JSON carrier for byte blobs
type ByteEncoding uint8

const (
	// ByteArray renders blobs as arrays of numbers. Always accepted on
	// decode regardless of the configured strategy.
	ByteArray ByteEncoding = iota
	// ByteHex renders blobs as lower-case hex strings. The decode
	// default for string-carried blobs.
	ByteHex
	// ByteBase64 renders blobs as base64 strings, standard alphabet
	// with padding.
	ByteBase64
	// BytePassThrough emits the blob bytes verbatim. The caller
	// guarantees they form a valid JSON fragment. Encode only.
	BytePassThrough
	// ByteRaw takes the unescaped string bytes as the blob without
	// validating them. Decode only.
	ByteRaw
)

// EncOption configures an Encoder
type EncOption func(*Encoder)

// Named selects the named presentation: structs as objects keyed by
// field name, enum variants by name. This is the default.
func Named() EncOption {
	return func(e *Encoder) { e.named = true }
}

// Compact selects the compact presentation: structs as arrays, enum
// variants by index
func Compact() EncOption {
	return func(e *Encoder) { e.named = false }
}

// WithByteEncoding sets the blob carrier strategy
func WithByteEncoding(enc ByteEncoding) EncOption {
	return func(e *Encoder) { e.bytes = enc }
}

// WithByteEncoder installs a custom blob encoder. The returned bytes
// are emitted verbatim and must form a valid JSON fragment.
func WithByteEncoder(fn func(b []byte) ([]byte, error)) EncOption {
	return func(e *Encoder) { e.byteFn = fn }
}

// DecOption configures a Decoder
type DecOption func(*decodeConfig)

type decodeConfig struct {
	byteFn  func(raw []byte) ([]byte, error)
	bytes   ByteEncoding
	float32 bool
	strict  bool
}

// WithFloat32 makes self-describing number decode produce Float32
// values instead of Float64
func WithFloat32() DecOption {
	return func(c *decodeConfig) { c.float32 = true }
}

// Strict makes object keys outside a struct schema an error instead of
// skipping them
func Strict() DecOption {
	return func(c *decodeConfig) { c.strict = true }
}

// WithByteDecoding sets the strategy for string-carried blobs. The
// array form is accepted under any strategy.
func WithByteDecoding(enc ByteEncoding) DecOption {
	return func(c *decodeConfig) { c.bytes = enc }
}

// WithByteDecoder installs a custom blob decoder. It receives the
// unescaped string contents.
func WithByteDecoder(fn func(raw []byte) ([]byte, error)) DecOption {
	return func(c *decodeConfig) { c.byteFn = fn }
}
