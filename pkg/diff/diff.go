package diff

import "sort"

// Option configures Diff.
type Option func(*options)

type options struct {
	splitMovedUpdates bool
}

// WithSplitMovedUpdates reports an item whose content changed and whose
// relative order changed as a Delete at its old index plus an Insert at its
// new index. Without it such an item is reported as an Update at its old
// index only.
func WithSplitMovedUpdates() Option {
	return func(o *options) {
		o.splitMovedUpdates = true
	}
}

// SplitMovedUpdates sets the WithSplitMovedUpdates behaviour from a flag.
func SplitMovedUpdates(enabled bool) Option {
	return func(o *options) {
		o.splitMovedUpdates = enabled
	}
}

// match is an item present in both sequences.
type match struct {
	old     int
	new     int
	changed bool
}

// Diff compares two sequences and returns the edits that transform prev
// into next. Neither slice is modified.
func Diff(prev, next []Item, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	prevIndex, err := indexByIdentity(prev, SideOld)
	if err != nil {
		return Result{}, err
	}
	nextIndex, err := indexByIdentity(next, SideNew)
	if err != nil {
		return Result{}, err
	}

	var r Result
	matches := make([]match, 0, len(prev))

	for i, item := range prev {
		j, ok := nextIndex[item.DiffIdentifier()]
		if !ok {
			r.Deletes = append(r.Deletes, i)
			continue
		}
		matches = append(matches, match{
			old:     i,
			new:     j,
			changed: !item.DiffEqual(next[j]),
		})
	}

	for j, item := range next {
		if _, ok := prevIndex[item.DiffIdentifier()]; !ok {
			r.Inserts = append(r.Inserts, j)
		}
	}

	kept := stableMatches(matches, len(next))

	split := false
	for k, m := range matches {
		switch {
		case m.changed && !kept[k] && o.splitMovedUpdates:
			r.Deletes = append(r.Deletes, m.old)
			r.Inserts = append(r.Inserts, m.new)
			split = true
		case m.changed:
			r.Updates = append(r.Updates, m.old)
		case !kept[k]:
			r.Moves = append(r.Moves, Move{From: m.old, To: m.new})
		}
	}

	if split {
		sort.Ints(r.Deletes)
		sort.Ints(r.Inserts)
	}
	sort.Slice(r.Moves, func(a, b int) bool {
		return r.Moves[a].To < r.Moves[b].To
	})

	return r, nil
}

// indexByIdentity maps identifiers to positions, rejecting duplicates.
func indexByIdentity(items []Item, side Side) (map[string]int, error) {
	index := make(map[string]int, len(items))
	for i, item := range items {
		key := item.DiffIdentifier()
		if first, ok := index[key]; ok {
			return nil, &DuplicateIdentityError{Key: key, Side: side, First: first, Second: i}
		}
		index[key] = i
	}
	return index, nil
}

// stableMatches picks the matches that keep their relative order: the
// maximum-weight subsequence whose new positions increase in old order.
// Everything outside it has moved. Items sitting at the same index in both
// sequences always stay; changed items are preferred over unchanged ones so
// that an Update rarely has to carry a position change.
func stableMatches(matches []match, nextLen int) []bool {
	kept := make([]bool, len(matches))
	if len(matches) == 0 {
		return kept
	}

	fixedBonus := 3 * (len(matches) + 1)
	best := make([]int, len(matches))
	prev := make([]int, len(matches))
	tree := newMaxTree(nextLen)

	top, topSum := -1, 0
	for k, m := range matches {
		weight := 2
		if m.changed {
			weight++
		}
		if m.old == m.new {
			weight += fixedBonus
		}

		sum, from := tree.query(m.new - 1)
		best[k] = sum + weight
		prev[k] = from
		tree.update(m.new, best[k], k)

		if best[k] > topSum {
			top, topSum = k, best[k]
		}
	}

	for k := top; k >= 0; k = prev[k] {
		kept[k] = true
	}
	return kept
}

// maxTree is a Fenwick tree answering prefix-maximum queries over
// positions, remembering which match produced each maximum.
type maxTree struct {
	sum []int
	idx []int
}

func newMaxTree(n int) *maxTree {
	t := &maxTree{
		sum: make([]int, n+1),
		idx: make([]int, n+1),
	}
	for i := range t.idx {
		t.idx[i] = -1
	}
	return t
}

// update records sum for match idx at position pos.
func (t *maxTree) update(pos, sum, idx int) {
	for i := pos + 1; i < len(t.sum); i += i & -i {
		if sum > t.sum[i] {
			t.sum[i] = sum
			t.idx[i] = idx
		}
	}
}

// query returns the best sum over positions [0, pos] and its match, or
// (0, -1) when the range is empty.
func (t *maxTree) query(pos int) (int, int) {
	best, idx := 0, -1
	for i := pos + 1; i > 0; i -= i & -i {
		if t.sum[i] > best {
			best = t.sum[i]
			idx = t.idx[i]
		}
	}
	return best, idx
}
