package diff

import (
	"fmt"
	"sort"
)

// Item is the capability every diffed value must provide.
type Item interface {
	// DiffIdentifier returns the identity key. It must be unique within a
	// sequence and stable across content changes of the same row.
	DiffIdentifier() string
	// DiffEqual reports content equality. It is only called for items with
	// equal identifiers.
	DiffEqual(other Item) bool
}

// Kind is the type of an edit.
type Kind uint8

const (
	KindDelete Kind = 0x01 // Remove the row at From
	KindInsert Kind = 0x02 // Insert a row at To
	KindUpdate Kind = 0x03 // Reload the row at From
	KindMove   Kind = 0x04 // Move the row at From to To
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindDelete:
		return "delete"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindMove:
		return "move"
	default:
		return "unknown"
	}
}

// Edit is a single operation of an edit script.
// From is an old index (delete, update, move); To is a new index (insert,
// move). Unused indices are -1.
type Edit struct {
	Kind Kind
	From int
	To   int
}

// String formats the edit for logs and CLI output.
func (e Edit) String() string {
	switch e.Kind {
	case KindDelete, KindUpdate:
		return fmt.Sprintf("%s(%d)", e.Kind, e.From)
	case KindInsert:
		return fmt.Sprintf("%s(%d)", e.Kind, e.To)
	default:
		return fmt.Sprintf("%s(%d->%d)", e.Kind, e.From, e.To)
	}
}

// Move is a relocation of an unchanged item.
type Move struct {
	From int
	To   int
}

// Result is the edit set produced by Diff. Index slices are sorted
// ascending; moves are sorted by target index.
type Result struct {
	Deletes []int
	Inserts []int
	Updates []int
	Moves   []Move
}

// HasChanges reports whether the result contains any edit.
func (r Result) HasChanges() bool {
	return r.Len() > 0
}

// Len returns the number of edits.
func (r Result) Len() int {
	return len(r.Deletes) + len(r.Inserts) + len(r.Updates) + len(r.Moves)
}

// Edits returns the edits in application order: updates and deletes by
// descending old index, inserts by ascending new index, then moves.
func (r Result) Edits() []Edit {
	edits := make([]Edit, 0, r.Len())

	removals := make([]Edit, 0, len(r.Deletes)+len(r.Updates))
	for _, i := range r.Updates {
		removals = append(removals, Edit{Kind: KindUpdate, From: i, To: -1})
	}
	for _, i := range r.Deletes {
		removals = append(removals, Edit{Kind: KindDelete, From: i, To: -1})
	}
	sort.SliceStable(removals, func(a, b int) bool {
		return removals[a].From > removals[b].From
	})
	edits = append(edits, removals...)

	for _, j := range r.Inserts {
		edits = append(edits, Edit{Kind: KindInsert, From: -1, To: j})
	}
	for _, m := range r.Moves {
		edits = append(edits, Edit{Kind: KindMove, From: m.From, To: m.To})
	}
	return edits
}
