package section

import (
	"fmt"

	"github.com/leapstack-labs/difftable/pkg/diff"
)

// IndexPath addresses a row in a table.
type IndexPath struct {
	Section int
	Row     int
}

func (p IndexPath) String() string {
	return fmt.Sprintf("%d.%d", p.Section, p.Row)
}

// Change is an edit addressed by index paths. From is the old position
// (delete, update, move) and To the new one (insert, move); the unused one
// has Row -1.
type Change struct {
	Kind diff.Kind
	From IndexPath
	To   IndexPath
}

// InSection returns the change rewritten to the given section.
func (c Change) InSection(section int) Change {
	c.From.Section = section
	c.To.Section = section
	return c
}

func (c Change) String() string {
	switch c.Kind {
	case diff.KindDelete, diff.KindUpdate:
		return fmt.Sprintf("%s(%s)", c.Kind, c.From)
	case diff.KindInsert:
		return fmt.Sprintf("%s(%s)", c.Kind, c.To)
	default:
		return fmt.Sprintf("%s(%s->%s)", c.Kind, c.From, c.To)
	}
}

// Changes converts a diff result into section 0 changes in application
// order.
func Changes(r diff.Result) []Change {
	edits := r.Edits()
	changes := make([]Change, len(edits))
	for i, e := range edits {
		changes[i] = Change{
			Kind: e.Kind,
			From: IndexPath{Row: e.From},
			To:   IndexPath{Row: e.To},
		}
	}
	return changes
}
