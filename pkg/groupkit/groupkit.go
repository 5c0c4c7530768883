// Package groupkit turns a flat, pre-ordered record stream into a lazily evaluated tree of nested iterators.
//
// # Summary
//
// A grouping traversal is described by a Spec: an ordered list of Grouping levels and a Leaf function.
// Each Grouping has a key extractor and a Combiner.
// The Root level yields one Node per group of its key,
// and every Node carries the Iterator of the next level (conventionally under SubKey).
// The last grouping level hands its records to the Leaf level, which yields one Node per record.
//
// All levels of a traversal share a single lookahead slot owned by the Root.
// Every level may peek at the buffered record, but only the Leaf level consumes it,
// so each input record is consumed exactly once, regardless of the depth of the tree.
//
// The input must be sorted by the composite key (all grouping keys in order).
// Input is never validated or re-sorted: non-contiguous repeats of a key produce separate groups.
//
// # Usage
//
// A traversal is single-use and single-owner.
// Drain a child Iterator before asking its parent for the next sibling group,
// otherwise the next sibling starts from whatever record is left in the shared slot.
package groupkit

import (
	"context"
	"io"

	"go.llib.dev/frameless/pkg/logging"

	uuid "github.com/satori/go.uuid"
)

// SubKey is the conventional Node field that holds the nested children.
const SubKey = "sub"

// Node is the value produced by a Combiner or a LeafFunc.
// Non-leaf Nodes hold their child Iterator in one of their fields,
// which is replaced with []Node once the tree is materialised with Collect.
type Node map[string]any

// Iterator is one level of a grouping traversal.
// Interface design follows the pull iterator of frameless: Next advances, Value returns the current Node.
type Iterator interface {
	// Next will ensure that Value returns the next Node of this level.
	// It returns false when this level's group ended, when the input is exhausted or when the source failed.
	Next() bool
	// Value returns the current Node.
	// The action is repeatable without side effects.
	Value() Node
	// Err returns the source failure cause, if any.
	// Group and sequence boundaries are not errors.
	Err() error
	io.Closer
}

// Combiner builds the Node of a group from the group's first record and the Iterator of its children.
type Combiner[R any] func(record R, children Iterator) Node

// LeafFunc builds the Node of a single record.
type LeafFunc[R any] func(record R) Node

// Grouping is one level of grouping: a key extractor and the Combiner of the level's groups.
type Grouping[R any] struct {
	boundary func() boundary[R]
	combine  Combiner[R]
}

// By creates a Grouping where records with equal consecutive keys form one group.
func By[R any, K comparable](key func(R) K, combine Combiner[R]) Grouping[R] {
	g := Grouping[R]{combine: combine}
	if key != nil {
		g.boundary = func() boundary[R] { return &keyBoundary[R, K]{key: key} }
	}
	return g
}

// Spec is the description of a grouping traversal.
// A Spec is immutable and can be used to Build any number of traversals.
type Spec[R any] struct {
	Groupings []Grouping[R]
	Leaf      LeafFunc[R]
}

// Validate reports whether the Spec can Build a traversal.
func (s Spec[R]) Validate() error {
	if len(s.Groupings) == 0 {
		return ErrEmptySpec
	}
	for i, g := range s.Groupings {
		if g.boundary == nil {
			return ErrInvalidGrouping.F("grouping #%d has no key extractor", i)
		}
		if g.combine == nil {
			return ErrInvalidGrouping.F("grouping #%d has no combiner", i)
		}
	}
	if s.Leaf == nil {
		return ErrMissingLeaf
	}
	return nil
}

// Build creates the Root level of a new traversal over src.
// The returned Root owns src and closes it on Close.
func (s Spec[R]) Build(ctx context.Context, src Source[R], opts ...Option) (*Root[R], error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c := ToConfig(opts)
	r := &Root[R]{
		spec:        s,
		ctx:         ctx,
		logger:      c.GetLogger(),
		traversalID: uuid.NewV4().String(),
	}
	r.buffer.src = src
	r.level = level[R]{
		root:     r,
		parent:   &r.buffer,
		boundary: s.Groupings[0].boundary(),
		combine:  s.Groupings[0].combine,
	}
	r.logger.Debug(ctx, "grouping traversal built",
		logging.Field("traversal_id", r.traversalID),
		logging.Field("depth", len(s.Groupings)))
	return r, nil
}

// New is a shorthand for building a traversal from a Spec made of groupings and leaf.
func New[R any](ctx context.Context, src Source[R], groupings []Grouping[R], leaf LeafFunc[R], opts ...Option) (*Root[R], error) {
	return Spec[R]{Groupings: groupings, Leaf: leaf}.Build(ctx, src, opts...)
}
