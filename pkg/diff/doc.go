// Package diff computes edit scripts between two ordered sequences of
// identifiable items.
//
// # Items
//
// Every item exposes a diff identifier, stable across mutations of the same
// logical row, and a content equality test used for items whose identifiers
// match:
//
//	type Card struct{ ID, Bank string }
//
//	func (c Card) DiffIdentifier() string { return c.ID }
//	func (c Card) DiffEqual(other diff.Item) bool {
//	    o, ok := other.(Card)
//	    return ok && o == c
//	}
//
// # Results
//
// Diff returns a Result describing the edit set: deletes and updates at old
// indices, inserts at new indices, and moves from an old to a new index.
// Result.Edits orders them for application inside a single batch: updates and
// deletes by descending old index, inserts by ascending new index, then moves.
//
// Apply replays a Result with list-view batch rules and is used to verify
// that a script reproduces the new sequence.
package diff
