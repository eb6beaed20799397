// Package errors provides structured error types for the wirepack codecs.
//
// Errors are categorized by Phase (encode or decode) and Kind (error
// category). The two phases have disjoint kind sets: a write-side error is
// either a full sink or a value the format cannot represent, while the
// read-side kinds describe exactly what was wrong with the input and, where
// available, at which byte offset.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnknownField).
//		Offset(pos).
//		Field("color").
//		Detail("no such field in schema %q", schema.Name).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.EOF(pos)
//	err := errors.MissingField(schema.Name, "id")
//
// All errors implement the standard error interface and support
// errors.Is/As; IsKind matches against a Kind regardless of other fields.
package errors
