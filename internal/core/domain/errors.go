package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks shape or value violations in caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDegenerateGeometry marks a zero distance between a source and a target.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	// ErrNotFound is returned by repositories for unknown IDs.
	ErrNotFound = errors.New("not found")
)

// InputError reports which input set and which field violated the contract.
// Index is -1 when the violation concerns the set as a whole.
type InputError struct {
	Set    string
	Index  int
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	switch {
	case e.Index < 0 && e.Field == "":
		return fmt.Sprintf("invalid input: %s: %s", e.Set, e.Reason)
	case e.Index < 0:
		return fmt.Sprintf("invalid input: %s.%s: %s", e.Set, e.Field, e.Reason)
	default:
		return fmt.Sprintf("invalid input: %s[%d].%s: %s", e.Set, e.Index, e.Field, e.Reason)
	}
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// NewInputError builds an InputError for a single element.
func NewInputError(set string, index int, field, reason string) *InputError {
	return &InputError{Set: set, Index: index, Field: field, Reason: reason}
}

// DegenerateGeometryError reports a coincident source/target pair.
type DegenerateGeometryError struct {
	Set      string // "populations" or "competitors"
	Row      int    // facility index
	Col      int    // target index within Set
	Distance float64
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry: facilities[%d] and %s[%d] are %g apart",
		e.Row, e.Set, e.Col, e.Distance)
}

func (e *DegenerateGeometryError) Unwrap() error { return ErrDegenerateGeometry }
