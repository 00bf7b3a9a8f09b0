package diff

import "fmt"

// Apply replays r against prev the way a list view applies one batch:
// deletes, updates and move sources address prev, inserts and move targets
// address next. Updated rows take their content from next. The returned
// slice is the sequence the list ends up showing.
func Apply(prev, next []Item, r Result) ([]Item, error) {
	removed := make(map[int]bool, len(r.Deletes)+len(r.Moves))
	placed := make(map[int]bool, len(r.Inserts)+len(r.Moves))
	updated := make(map[int]bool, len(r.Updates))

	for _, i := range r.Deletes {
		if err := checkIndex("delete", i, len(prev)); err != nil {
			return nil, err
		}
		if removed[i] {
			return nil, fmt.Errorf("%w: row %d removed twice", ErrInconsistentBatch, i)
		}
		removed[i] = true
	}
	for _, m := range r.Moves {
		if err := checkIndex("move source", m.From, len(prev)); err != nil {
			return nil, err
		}
		if err := checkIndex("move target", m.To, len(next)); err != nil {
			return nil, err
		}
		if removed[m.From] {
			return nil, fmt.Errorf("%w: row %d removed twice", ErrInconsistentBatch, m.From)
		}
		removed[m.From] = true
	}
	for _, i := range r.Updates {
		if err := checkIndex("update", i, len(prev)); err != nil {
			return nil, err
		}
		if removed[i] || updated[i] {
			return nil, fmt.Errorf("%w: row %d updated and removed", ErrInconsistentBatch, i)
		}
		updated[i] = true
	}
	for _, j := range r.Inserts {
		if err := checkIndex("insert", j, len(next)); err != nil {
			return nil, err
		}
		if placed[j] {
			return nil, fmt.Errorf("%w: row %d inserted twice", ErrInconsistentBatch, j)
		}
		placed[j] = true
	}
	for _, m := range r.Moves {
		if placed[m.To] {
			return nil, fmt.Errorf("%w: row %d inserted twice", ErrInconsistentBatch, m.To)
		}
		placed[m.To] = true
	}

	if want := len(prev) - len(removed) + len(placed); want != len(next) {
		return nil, fmt.Errorf("%w: %d rows before, %d removed, %d added, expected %d",
			ErrInconsistentBatch, len(prev), len(removed), len(placed), len(next))
	}

	var nextIndex map[string]int
	if len(updated) > 0 {
		var err error
		if nextIndex, err = indexByIdentity(next, SideNew); err != nil {
			return nil, err
		}
	}

	out := make([]Item, len(next))
	for _, j := range r.Inserts {
		out[j] = next[j]
	}
	for _, m := range r.Moves {
		out[m.To] = prev[m.From]
	}

	slot := 0
	for i, item := range prev {
		if removed[i] {
			continue
		}
		if updated[i] {
			j, ok := nextIndex[item.DiffIdentifier()]
			if !ok {
				return nil, fmt.Errorf("%w: updated row %d (%q) missing from new sequence",
					ErrInconsistentBatch, i, item.DiffIdentifier())
			}
			item = next[j]
		}
		for placed[slot] {
			slot++
		}
		out[slot] = item
		slot++
	}

	return out, nil
}

func checkIndex(op string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s at %d (len %d)", ErrIndexOutOfRange, op, i, n)
	}
	return nil
}
