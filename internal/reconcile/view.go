// Package reconcile connects a section model to a list view.
//
// Section publishes carry section-local rows. The Reconciler rewrites them
// to (section, row) index paths and hands the list view whole batches, so a
// view sees one atomic update per mutation or per update cycle.
package reconcile

import (
	"strings"

	"github.com/leapstack-labs/difftable/pkg/section"
)

// ListView is the view side of the reconciler.
type ListView interface {
	// ReloadData discards all displayed rows and reads the model again.
	ReloadData()
	// ApplyBatch applies every change atomically. Deletes, updates and move
	// sources address the rows before the batch; inserts and move targets
	// address the rows after it. An error leaves the view unchanged.
	ApplyBatch(Batch) error
}

// Batch is the set of changes applied in one step.
type Batch struct {
	Changes []section.Change
}

// Empty reports whether the batch carries no changes.
func (b Batch) Empty() bool {
	return len(b.Changes) == 0
}

// Sections returns the distinct sections touched by the batch, in order of
// first appearance.
func (b Batch) Sections() []int {
	var out []int
	seen := make(map[int]bool)
	for _, c := range b.Changes {
		s := c.From.Section
		if c.From.Row < 0 {
			s = c.To.Section
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (b Batch) String() string {
	parts := make([]string, len(b.Changes))
	for i, c := range b.Changes {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
