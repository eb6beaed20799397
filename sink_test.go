package wirepack

import (
	"bytes"
	"errors"
	"testing"
)

func TestSliceSink(t *testing.T) {
	buf := make([]byte, 4)
	s := NewSliceSink(buf)

	if err := s.Append([]byte{1, 2}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append([]byte{3}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if got := s.Bytes(); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Bytes() = %v, want [1 2 3]", got)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestSliceSinkFull(t *testing.T) {
	s := NewSliceSink(make([]byte, 2))
	if err := s.Append([]byte{1, 2}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	err := s.Append([]byte{3})
	if !errors.Is(err, ErrSinkFull) {
		t.Fatalf("Append = %v, want ErrSinkFull", err)
	}
	// the written prefix survives a failed append
	if got := s.Bytes(); !bytes.Equal(got, []byte{1, 2}) {
		t.Errorf("Bytes() = %v, want [1 2]", got)
	}
}

func TestSliceSinkReset(t *testing.T) {
	s := NewSliceSink(make([]byte, 2))
	if err := s.Append([]byte{1, 2}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
	if err := s.Append([]byte{9}); err != nil {
		t.Fatalf("Append after Reset: %v", err)
	}
	if got := s.Bytes(); !bytes.Equal(got, []byte{9}) {
		t.Errorf("Bytes() = %v, want [9]", got)
	}
}

func TestBufferSink(t *testing.T) {
	var s BufferSink
	for _, p := range [][]byte{{1}, {2, 3}, nil, {4}} {
		if err := s.Append(p); err != nil {
			t.Fatalf("Append(%v): %v", p, err)
		}
	}
	if got := s.Bytes(); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Bytes() = %v, want [1 2 3 4]", got)
	}
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
}

func TestTallySink(t *testing.T) {
	var s TallySink
	if err := s.Append([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append([]byte{4}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
}
