package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates which half of a codec produced the error
type Phase string

const (
	PhaseEncode Phase = "encode" // value model to wire bytes
	PhaseDecode Phase = "decode" // wire bytes to value model
)

// Kind categorizes the error
type Kind string

// Write-side kinds.
const (
	KindSinkFull         Kind = "sink_full"         // sink capacity exhausted
	KindNotRepresentable Kind = "not_representable" // value has no encoding in the target format
	KindInvalidKey       Kind = "invalid_key"       // value cannot be used as an object key
)

// Read-side kinds.
const (
	KindUnexpectedEOF  Kind = "unexpected_eof"
	KindInvalidTag     Kind = "invalid_tag"
	KindReservedTag    Kind = "reserved_tag"
	KindUnsupportedExt Kind = "unsupported_ext"
	KindSyntax         Kind = "syntax"
	KindInvalidEscape  Kind = "invalid_escape"
	KindControlChar    Kind = "control_char"
	KindInvalidNumber  Kind = "invalid_number"
	KindOutOfRange     Kind = "out_of_range"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindMissingField   Kind = "missing_field"
	KindUnknownField   Kind = "unknown_field"
	KindUnknownVariant Kind = "unknown_variant"
	KindTrailingData   Kind = "trailing_data"
	KindInvalidType    Kind = "invalid_type"
)

// Shared by both phases: a length that does not fit its length class on the
// way out, or that cannot be addressed on the way in.
const KindLengthOverflow Kind = "length_overflow"

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Field  string
	Detail string
	Offset int // byte offset in the input, -1 when not applicable
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	if e.Field != "" {
		b.WriteString(" (field ")
		b.WriteString(strconv.Quote(e.Field))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Offset sets the byte offset in the input
func (b *Builder) Offset(n int) *Builder {
	b.err.Offset = n
	return b
}

// Field sets the struct field or enum variant name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// SinkFull creates a write-side capacity exhaustion error
func SinkFull(cause error) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindSinkFull,
		Offset: -1,
		Cause:  cause,
	}
}

// NotRepresentable creates a write-side error for a value the target
// format has no encoding for
func NotRepresentable(detail string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindNotRepresentable,
		Offset: -1,
		Detail: detail,
	}
}

// EOF creates an unexpected end-of-input error
func EOF(offset int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnexpectedEOF,
		Offset: offset,
	}
}

// Syntax creates a read-side grammar error
func Syntax(offset int, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindSyntax,
		Offset: offset,
		Detail: detail,
	}
}

// InvalidTag creates an error for a wire tag that cannot begin the
// expected value
func InvalidTag(offset int, tag byte, expected string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidTag,
		Offset: offset,
		Detail: fmt.Sprintf("tag 0x%02x, expected %s", tag, expected),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(offset int, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// OutOfRange creates an error for a number that does not fit its target
func OutOfRange(offset int, value any, target string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindOutOfRange,
		Offset: offset,
		Detail: fmt.Sprintf("value %v does not fit %s", value, target),
	}
}

// MissingField creates an error for a required schema field absent from
// the wire
func MissingField(schema, field string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMissingField,
		Offset: -1,
		Field:  field,
		Detail: fmt.Sprintf("required field %q of %q not present", field, schema),
	}
}

// UnknownField creates an error for an object key not present in the
// schema (strict mode only)
func UnknownField(offset int, schema, field string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownField,
		Offset: offset,
		Field:  field,
		Detail: fmt.Sprintf("field %q not in schema %q", field, schema),
	}
}

// UnknownVariant creates an error for an enum identifier outside the schema
func UnknownVariant(offset int, schema string, ident any) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownVariant,
		Offset: offset,
		Detail: fmt.Sprintf("variant %v not in enum %q", ident, schema),
	}
}

// TrailingData creates an error for bytes remaining after a complete value
func TrailingData(offset int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTrailingData,
		Offset: offset,
	}
}
