package groupkit

import (
	"io"
	"iter"
)

// Source is the raw record input of a traversal.
// It must be forward-only and finite, and it must yield records sorted by the composite grouping key.
type Source[R any] interface {
	// Next will ensure that Value returns the next record.
	// If the next record is not retrievable, Next returns false and Err reports the cause.
	Next() bool
	// Value returns the current record.
	Value() R
	// Err return the error cause.
	Err() error
	io.Closer
}

// FromSlice creates a Source that yields the elements of rs in order.
func FromSlice[R any](rs []R) Source[R] {
	return &sliceSource[R]{records: rs}
}

type sliceSource[R any] struct {
	records []R

	closed bool
	index  int
	value  R
}

func (s *sliceSource[R]) Close() error {
	s.closed = true
	return nil
}

func (s *sliceSource[R]) Err() error { return nil }

func (s *sliceSource[R]) Next() bool {
	if s.closed {
		return false
	}
	if len(s.records) <= s.index {
		return false
	}
	s.value = s.records[s.index]
	s.index++
	return true
}

func (s *sliceSource[R]) Value() R { return s.value }

// FromSeq creates a Source from an iter.Seq.
// The sequence is pulled on demand, and Close stops it.
func FromSeq[R any](seq iter.Seq[R]) Source[R] {
	next, stop := iter.Pull(seq)
	return &pullSource[R]{
		next: func() (R, error, bool) {
			v, ok := next()
			return v, nil, ok
		},
		stop: stop,
	}
}

// FromErrSeq creates a Source from an iter.Seq2 that yields records with their error.
// The first non-nil error ends the Source and is reported by Err.
func FromErrSeq[R any](seq iter.Seq2[R, error]) Source[R] {
	next, stop := iter.Pull2(seq)
	return &pullSource[R]{next: next, stop: stop}
}

type pullSource[R any] struct {
	next func() (R, error, bool)
	stop func()

	value R
	err   error
	done  bool
}

func (s *pullSource[R]) Next() bool {
	if s.done {
		return false
	}
	v, err, ok := s.next()
	if !ok {
		s.done = true
		return false
	}
	if err != nil {
		s.err = err
		s.done = true
		return false
	}
	s.value = v
	return true
}

func (s *pullSource[R]) Value() R { return s.value }

func (s *pullSource[R]) Err() error { return s.err }

func (s *pullSource[R]) Close() error {
	s.done = true
	s.stop()
	return nil
}

// noCopy may be embedded into structs which must not be copied after the first use.
// See go vet -copylocks.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// lookahead is the single-slot buffer shared by every level of a traversal.
// It is owned by the Root, and only the Leaf level is allowed to consume.
type lookahead[R any] struct {
	_ noCopy

	src Source[R]

	record   R
	buffered bool
	eos      bool
	err      error
	consumed int
}

// peek returns the buffered record, pulling one from the Source when the slot is empty.
func (b *lookahead[R]) peek() (R, error) {
	if b.buffered {
		return b.record, nil
	}
	var zero R
	if b.err != nil {
		return zero, b.err
	}
	if b.eos {
		return zero, ErrEndOfSequence
	}
	if !b.src.Next() {
		if err := b.src.Err(); err != nil {
			b.err = err
			return zero, err
		}
		b.eos = true
		return zero, ErrEndOfSequence
	}
	b.record = b.src.Value()
	b.buffered = true
	return b.record, nil
}

// consume clears the slot, so the next peek pulls a fresh record.
func (b *lookahead[R]) consume() {
	if b.buffered {
		b.consumed++
	}
	var zero R
	b.record = zero
	b.buffered = false
}

// within makes the buffer the parent of the Root level.
func (b *lookahead[R]) within() (R, error) { return b.peek() }
