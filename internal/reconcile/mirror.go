package reconcile

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
)

// RowOp is a keyed row operation derived from a batch. Moves are expressed
// as a Delete of the old row followed by an Insert, which is what
// identity-addressed views such as the DOM need.
type RowOp struct {
	Kind    diff.Kind
	Section int
	Key     string
	// Item is the content to show for Insert and Update.
	Item diff.Item
	// After is the key of the row preceding an inserted row, or "" when the
	// row becomes the first of its section.
	After string
}

func (op RowOp) String() string {
	switch op.Kind {
	case diff.KindInsert:
		return fmt.Sprintf("insert(%d:%s after %q)", op.Section, op.Key, op.After)
	default:
		return fmt.Sprintf("%s(%d:%s)", op.Kind, op.Section, op.Key)
	}
}

// Mirror keeps the rows a list view currently displays and applies batches
// to them with list-view rules. After every batch the displayed rows must
// match the model exactly; a mismatch fails the batch with
// diff.ErrInconsistentBatch and leaves the mirror unchanged.
type Mirror struct {
	sections [][]diff.Item
}

// NewMirror returns an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{}
}

// Reload copies every section of model.
func (m *Mirror) Reload(model section.Model) {
	m.sections = nil
	if model == nil {
		return
	}
	for _, s := range model.Sections() {
		m.sections = append(m.sections, s.Items())
	}
}

// NumberOfSections returns the number of displayed sections.
func (m *Mirror) NumberOfSections() int {
	return len(m.sections)
}

// NumberOfRows returns the number of displayed rows in section s.
func (m *Mirror) NumberOfRows(s int) int {
	if s < 0 || s >= len(m.sections) {
		return 0
	}
	return len(m.sections[s])
}

// Row returns the displayed item at p.
func (m *Mirror) Row(p section.IndexPath) (diff.Item, bool) {
	if p.Section < 0 || p.Section >= len(m.sections) {
		return nil, false
	}
	rows := m.sections[p.Section]
	if p.Row < 0 || p.Row >= len(rows) {
		return nil, false
	}
	return rows[p.Row], true
}

// Rows returns a copy of the displayed rows of section s.
func (m *Mirror) Rows(s int) []diff.Item {
	if s < 0 || s >= len(m.sections) {
		return nil
	}
	return append([]diff.Item(nil), m.sections[s]...)
}

// Find returns the index path of the displayed row with the given key.
func (m *Mirror) Find(key string) (section.IndexPath, bool) {
	for s, rows := range m.sections {
		for r, item := range rows {
			if item.DiffIdentifier() == key {
				return section.IndexPath{Section: s, Row: r}, true
			}
		}
	}
	return section.IndexPath{}, false
}

// Apply applies b against the displayed rows and checks the outcome
// against model. It returns the keyed row operations that turn the old
// display into the new one: removals first, then updates, then inserts in
// ascending row order so each insert's predecessor is already in place.
func (m *Mirror) Apply(b Batch, model section.Model) ([]RowOp, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: no model", diff.ErrInconsistentBatch)
	}
	sections := model.Sections()
	if len(sections) != len(m.sections) {
		return nil, fmt.Errorf("%w: view has %d sections, model has %d",
			diff.ErrInconsistentBatch, len(m.sections), len(sections))
	}

	results := make(map[int]*diff.Result)
	for _, c := range b.Changes {
		s := c.From.Section
		if c.Kind == diff.KindInsert {
			s = c.To.Section
		}
		if s < 0 || s >= len(sections) {
			return nil, fmt.Errorf("%w: section %d (len %d)", diff.ErrIndexOutOfRange, s, len(sections))
		}
		if c.Kind == diff.KindMove && c.To.Section != s {
			return nil, fmt.Errorf("%w: move across sections %s", diff.ErrInconsistentBatch, c)
		}
		r := results[s]
		if r == nil {
			r = &diff.Result{}
			results[s] = r
		}
		switch c.Kind {
		case diff.KindDelete:
			r.Deletes = append(r.Deletes, c.From.Row)
		case diff.KindInsert:
			r.Inserts = append(r.Inserts, c.To.Row)
		case diff.KindUpdate:
			r.Updates = append(r.Updates, c.From.Row)
		case diff.KindMove:
			r.Moves = append(r.Moves, diff.Move{From: c.From.Row, To: c.To.Row})
		default:
			return nil, fmt.Errorf("%w: unknown change %s", diff.ErrInconsistentBatch, c)
		}
	}

	touched := make([]int, 0, len(results))
	for s := range results {
		touched = append(touched, s)
	}
	sort.Ints(touched)

	next := make(map[int][]diff.Item, len(touched))
	var removals, updates, inserts []RowOp
	for _, s := range touched {
		prev := m.sections[s]
		want := sections[s].Items()
		got, err := diff.Apply(prev, want, *results[s])
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", s, err)
		}
		if err := sameRows(got, want); err != nil {
			return nil, fmt.Errorf("section %d: %w", s, err)
		}
		next[s] = got

		r := results[s]
		for _, i := range r.Deletes {
			removals = append(removals, RowOp{Kind: diff.KindDelete, Section: s, Key: prev[i].DiffIdentifier()})
		}
		for _, mv := range r.Moves {
			removals = append(removals, RowOp{Kind: diff.KindDelete, Section: s, Key: prev[mv.From].DiffIdentifier()})
		}
		for _, i := range r.Updates {
			key := prev[i].DiffIdentifier()
			updates = append(updates, RowOp{Kind: diff.KindUpdate, Section: s, Key: key, Item: itemByKey(got, key)})
		}

		placed := append([]int(nil), r.Inserts...)
		for _, mv := range r.Moves {
			placed = append(placed, mv.To)
		}
		sort.Ints(placed)
		for _, j := range placed {
			op := RowOp{Kind: diff.KindInsert, Section: s, Key: got[j].DiffIdentifier(), Item: got[j]}
			if j > 0 {
				op.After = got[j-1].DiffIdentifier()
			}
			inserts = append(inserts, op)
		}
	}

	// Sections the batch did not touch must already agree with the model.
	for s, sec := range sections {
		if _, ok := next[s]; ok {
			continue
		}
		if err := sameRows(m.sections[s], sec.Items()); err != nil {
			return nil, fmt.Errorf("section %d: %w", s, err)
		}
	}

	for s, rows := range next {
		m.sections[s] = rows
	}

	ops := make([]RowOp, 0, len(removals)+len(updates)+len(inserts))
	ops = append(ops, removals...)
	ops = append(ops, updates...)
	ops = append(ops, inserts...)
	return ops, nil
}

func sameRows(got, want []diff.Item) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: view has %d rows, model has %d", diff.ErrInconsistentBatch, len(got), len(want))
	}
	for i := range got {
		if got[i].DiffIdentifier() != want[i].DiffIdentifier() {
			return fmt.Errorf("%w: row %d shows %q, model has %q",
				diff.ErrInconsistentBatch, i, got[i].DiffIdentifier(), want[i].DiffIdentifier())
		}
		if !got[i].DiffEqual(want[i]) {
			return fmt.Errorf("%w: row %d (%q) is stale", diff.ErrInconsistentBatch, i, got[i].DiffIdentifier())
		}
	}
	return nil
}

func itemByKey(items []diff.Item, key string) diff.Item {
	for _, item := range items {
		if item.DiffIdentifier() == key {
			return item
		}
	}
	return nil
}
