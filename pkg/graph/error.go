package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrReferentialIntegrity is returned when a node or edge references an
	// entity id that does not exist in the store. The failing call leaves
	// the graph unchanged.
	ErrReferentialIntegrity = errors.New("referential integrity violation")

	// ErrMalformedSnapshot is returned when Restore is given a document it
	// cannot fully validate. The store is left as it was before the call.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// NotFoundError is returned by write-style operations on an unknown entity id.
// Read-style lookups return a (value, ok) pair instead.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
