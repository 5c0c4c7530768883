package groupkit

import (
	"errors"

	"go.llib.dev/frameless/pkg/errorkit"
)

const (
	// ErrEndOfSequence signals that the input is exhausted.
	// It ends the iteration of every level and is never reported by Err.
	ErrEndOfSequence errorkit.Error = "groupkit: end of sequence"
	// ErrEndOfGroup signals that a group boundary was crossed at a level or at one of its ancestors.
	// It ends the iteration of the levels below the boundary and is never reported by Err.
	ErrEndOfGroup errorkit.Error = "groupkit: end of group"
)

// Construction errors, returned by Spec.Validate, Spec.Build and New.
const (
	// ErrEmptySpec is returned when a Spec has no Groupings.
	ErrEmptySpec errorkit.Error = "groupkit: grouping spec has no groupings"
	// ErrMissingLeaf is returned when a Spec has no Leaf function.
	ErrMissingLeaf errorkit.Error = "groupkit: grouping spec has no leaf function"
	// ErrInvalidGrouping is returned when a Grouping lacks its key extractor or its combiner.
	ErrInvalidGrouping errorkit.Error = "groupkit: invalid grouping"
)

func isBoundary(err error) bool {
	return errors.Is(err, ErrEndOfGroup) || errors.Is(err, ErrEndOfSequence)
}
