package wirepack

import "errors"

// ErrSinkFull is returned by bounded sinks when an append does not fit
var ErrSinkFull = errors.New("wirepack: sink full")

// Sink receives encoder output. Append either consumes all of p or
// returns an error; partial writes are not part of the contract. An
// encoder stops at the first Append error and reports it wrapped in
// the library's error type.
type Sink interface {
	Append(p []byte) error
}

// SliceSink writes into a caller-supplied buffer of fixed capacity.
// Appends beyond the capacity fail with ErrSinkFull and leave the
// already-written prefix intact.
type SliceSink struct {
	buf []byte
	n   int
}

// NewSliceSink returns a sink over buf. Writes start at buf[0].
func NewSliceSink(buf []byte) *SliceSink {
	return &SliceSink{buf: buf}
}

// Append implements Sink
func (s *SliceSink) Append(p []byte) error {
	if len(p) > len(s.buf)-s.n {
		return ErrSinkFull
	}
	copy(s.buf[s.n:], p)
	s.n += len(p)
	return nil
}

// Bytes returns the written prefix of the buffer
func (s *SliceSink) Bytes() []byte {
	return s.buf[:s.n]
}

// Len returns the number of bytes written
func (s *SliceSink) Len() int {
	return s.n
}

// Cap returns the total capacity of the underlying buffer
func (s *SliceSink) Cap() int {
	return len(s.buf)
}

// Reset discards the written bytes, keeping the buffer
func (s *SliceSink) Reset() {
	s.n = 0
}

// BufferSink is a growable sink. The zero value is ready to use.
type BufferSink struct {
	buf []byte
}

// Append implements Sink
func (s *BufferSink) Append(p []byte) error {
	s.buf = append(s.buf, p...)
	return nil
}

// Bytes returns the accumulated output
func (s *BufferSink) Bytes() []byte {
	return s.buf
}

// Len returns the number of bytes written
func (s *BufferSink) Len() int {
	return len(s.buf)
}

// Reset discards the accumulated output, keeping the allocation
func (s *BufferSink) Reset() {
	s.buf = s.buf[:0]
}

// TallySink counts bytes without storing them. Useful for sizing a
// buffer before a real encode.
type TallySink struct {
	n int
}

// Append implements Sink
func (s *TallySink) Append(p []byte) error {
	s.n += len(p)
	return nil
}

// Len returns the number of bytes appended so far
func (s *TallySink) Len() int {
	return s.n
}

// Reset zeroes the count
func (s *TallySink) Reset() {
	s.n = 0
}
