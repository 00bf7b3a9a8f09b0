package diff

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIdentity is returned when two items of one sequence share a
	// diff identifier.
	ErrDuplicateIdentity = errors.New("duplicate diff identifier")

	// ErrIndexOutOfRange is returned by Apply for edits outside the sequences.
	ErrIndexOutOfRange = errors.New("edit index out of range")

	// ErrInconsistentBatch is returned by Apply when the edits do not
	// transform the old row count into the new one, or reuse an index.
	ErrInconsistentBatch = errors.New("inconsistent batch")
)

// Side names the sequence an error refers to.
type Side string

const (
	SideOld Side = "old"
	SideNew Side = "new"
)

// DuplicateIdentityError reports the first duplicated identifier found.
type DuplicateIdentityError struct {
	Key    string
	Side   Side
	First  int
	Second int
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("%s: %q at %s positions %d and %d",
		ErrDuplicateIdentity, e.Key, e.Side, e.First, e.Second)
}

// Unwrap lets errors.Is match ErrDuplicateIdentity.
func (e *DuplicateIdentityError) Unwrap() error {
	return ErrDuplicateIdentity
}
