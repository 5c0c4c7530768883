package groupkit

import (
	"context"
	"sync"

	"go.llib.dev/frameless/pkg/logging"
)

// parent is the upward link of a level.
// within returns the buffered record if it still belongs to the parent's current group,
// re-validating every ancestor on the way up.
type parent[R any] interface {
	within() (R, error)
}

// boundary tracks the current key of a grouping level.
type boundary[R any] interface {
	start(R)
	crossed(R) bool
}

type keyBoundary[R any, K comparable] struct {
	key     func(R) K
	current K
}

func (b *keyBoundary[R, K]) start(r R) { b.current = b.key(r) }

func (b *keyBoundary[R, K]) crossed(r R) bool { return b.key(r) != b.current }

// level is a grouping level of a traversal.
// The Root embeds it with the lookahead buffer as its parent; mid levels have a level as their parent.
type level[R any] struct {
	root     *Root[R]
	parent   parent[R]
	depth    int
	boundary boundary[R]
	combine  Combiner[R]

	value Node
	done  bool
}

// Next starts the next sibling group with the buffered record.
func (l *level[R]) Next() bool {
	if l.done {
		return false
	}
	candidate, err := l.parent.within()
	if err != nil {
		l.end(err)
		return false
	}
	l.boundary.start(candidate)
	l.value = l.combine(candidate, l.root.child(l))
	return true
}

func (l *level[R]) within() (R, error) {
	candidate, err := l.parent.within()
	if err != nil {
		l.end(err)
		return candidate, err
	}
	if l.boundary.crossed(candidate) {
		var zero R
		return zero, ErrEndOfGroup
	}
	return candidate, nil
}

func (l *level[R]) end(err error) {
	l.done = true
	if !isBoundary(err) {
		l.root.failed(err)
	}
}

func (l *level[R]) Value() Node { return l.value }

func (l *level[R]) Err() error { return l.root.buffer.err }

func (l *level[R]) Close() error {
	l.done = true
	return nil
}

// leafLevel yields one Node per record and is the only consumer of the shared buffer.
type leafLevel[R any] struct {
	root   *Root[R]
	parent parent[R]
	leaf   LeafFunc[R]

	value Node
	done  bool
}

func (l *leafLevel[R]) Next() bool {
	if l.done {
		return false
	}
	record, err := l.parent.within()
	if err != nil {
		l.done = true
		if !isBoundary(err) {
			l.root.failed(err)
		}
		return false
	}
	l.value = l.leaf(record)
	l.root.buffer.consume()
	return true
}

func (l *leafLevel[R]) Value() Node { return l.value }

func (l *leafLevel[R]) Err() error { return l.root.buffer.err }

func (l *leafLevel[R]) Close() error {
	l.done = true
	return nil
}

// Root is the top level of a traversal.
// It owns the Source and the lookahead buffer shared by every level below it.
type Root[R any] struct {
	level[R]

	spec   Spec[R]
	buffer lookahead[R]

	// ctx is the Build context, kept for the lifecycle logs only.
	// Next and Close are part of the Iterator interface and take no context.
	ctx         context.Context
	logger      *logging.Logger
	traversalID string

	failOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
}

// child allocates the level below l for the group l just started.
func (r *Root[R]) child(l *level[R]) Iterator {
	depth := l.depth + 1
	if depth < len(r.spec.Groupings) {
		g := r.spec.Groupings[depth]
		return &level[R]{
			root:     r,
			parent:   l,
			depth:    depth,
			boundary: g.boundary(),
			combine:  g.combine,
		}
	}
	return &leafLevel[R]{
		root:   r,
		parent: l,
		leaf:   r.spec.Leaf,
	}
}

func (r *Root[R]) failed(err error) {
	r.failOnce.Do(func() {
		r.logger.Warn(r.ctx, "grouping traversal source failed",
			logging.Field("traversal_id", r.traversalID),
			logging.ErrField(err))
	})
}

// Consumed tells how many records were consumed by the Leaf levels so far.
func (r *Root[R]) Consumed() int { return r.buffer.consumed }

// Close ends the traversal and closes the Source.
func (r *Root[R]) Close() error {
	r.closeOnce.Do(func() {
		r.done = true
		r.closeErr = r.buffer.src.Close()
		r.logger.Debug(r.ctx, "grouping traversal closed",
			logging.Field("traversal_id", r.traversalID),
			logging.Field("consumed", r.buffer.consumed))
	})
	return r.closeErr
}

// List materialises the traversal, see Collect.
func (r *Root[R]) List(opts ...CollectOption) ([]Node, error) {
	return Collect(r, opts...)
}
