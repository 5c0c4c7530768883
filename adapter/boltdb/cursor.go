package boltdb

//go:generate mockgen -destination mock_cursor_test.go -source cursor.go -package boltdb

import (
	"encoding/json"
)

// Cursor is the part of *bolt.Cursor that a record source depends on.
type Cursor interface {
	First() (key []byte, value []byte)
	Next() (key []byte, value []byte)
}

func newCursorSource[R any](c Cursor, close func() error) *cursorSource[R] {
	return &cursorSource[R]{cursor: c, close: close}
}

// cursorSource walks a bucket in key order and decodes every value as a JSON record.
type cursorSource[R any] struct {
	cursor  Cursor
	close   func() error
	started bool
	done    bool
	value   R
	err     error
}

func (s *cursorSource[R]) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	var k, v []byte
	if s.started {
		k, v = s.cursor.Next()
	} else {
		s.started = true
		k, v = s.cursor.First()
	}
	if k == nil {
		s.done = true
		return false
	}
	var r R
	if err := json.Unmarshal(v, &r); err != nil {
		s.err = ErrDecode.F("key %x: %w", k, err)
		return false
	}
	s.value = r
	return true
}

func (s *cursorSource[R]) Value() R {
	return s.value
}

func (s *cursorSource[R]) Err() error {
	return s.err
}

func (s *cursorSource[R]) Close() error {
	s.done = true
	if s.close == nil {
		return nil
	}
	fn := s.close
	s.close = nil
	return fn()
}
