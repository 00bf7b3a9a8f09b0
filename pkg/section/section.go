// Package section holds mutable, diffed sequences of items and the table
// model grouping them.
package section

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/difftable/pkg/diff"
)

// ErrIndexOutOfRange is returned by mutations addressing a missing row.
var ErrIndexOutOfRange = errors.New("index out of range")

// Section owns an ordered sequence of items. Every mutation diffs the new
// sequence against the previous one and publishes the changes to the
// current subscriber, if any.
type Section struct {
	items    []diff.Item
	diffOpts []diff.Option
	logger   *slog.Logger

	sub    *Subscription
	nextID uint64
}

// Option configures a Section.
type Option func(*Section)

// WithDiffOptions sets the options passed to diff.Diff on every mutation.
func WithDiffOptions(opts ...diff.Option) Option {
	return func(s *Section) {
		s.diffOpts = append(s.diffOpts, opts...)
	}
}

// WithLogger sets the section logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Section) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a section holding a copy of items.
// It fails if two items share a diff identifier.
func New(items []diff.Item, opts ...Option) (*Section, error) {
	s := &Section{
		items:  append([]diff.Item(nil), items...),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Diffing the items against themselves validates identities.
	if _, err := diff.Diff(s.items, s.items, s.diffOpts...); err != nil {
		return nil, fmt.Errorf("invalid section items: %w", err)
	}
	return s, nil
}

// Len returns the number of items.
func (s *Section) Len() int {
	return len(s.items)
}

// Item returns the item at index i.
func (s *Section) Item(i int) (diff.Item, bool) {
	if i < 0 || i >= len(s.items) {
		return nil, false
	}
	return s.items[i], true
}

// Items returns a copy of the current sequence.
func (s *Section) Items() []diff.Item {
	return append([]diff.Item(nil), s.items...)
}

// InsertAt inserts item at index i, 0 <= i <= Len().
func (s *Section) InsertAt(i int, item diff.Item) error {
	if i < 0 || i > len(s.items) {
		return fmt.Errorf("%w: insert at %d (len %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	next := make([]diff.Item, 0, len(s.items)+1)
	next = append(next, s.items[:i]...)
	next = append(next, item)
	next = append(next, s.items[i:]...)
	return s.commit(next)
}

// Append adds item at the end.
func (s *Section) Append(item diff.Item) error {
	return s.InsertAt(len(s.items), item)
}

// RemoveAt removes and returns the item at index i.
func (s *Section) RemoveAt(i int) (diff.Item, error) {
	if i < 0 || i >= len(s.items) {
		return nil, fmt.Errorf("%w: remove at %d (len %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	removed := s.items[i]
	next := make([]diff.Item, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	if err := s.commit(next); err != nil {
		return nil, err
	}
	return removed, nil
}

// ReplaceAt swaps the item at index i for item.
func (s *Section) ReplaceAt(i int, item diff.Item) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: replace at %d (len %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	next := s.Items()
	next[i] = item
	return s.commit(next)
}

// ReplaceAll replaces the whole sequence.
func (s *Section) ReplaceAll(items []diff.Item) error {
	return s.commit(append([]diff.Item(nil), items...))
}

// commit diffs next against the current sequence, installs it and
// publishes the changes. On a diff error nothing changes.
func (s *Section) commit(next []diff.Item) error {
	prev := s.items
	r, err := diff.Diff(prev, next, s.diffOpts...)
	if err != nil {
		return err
	}
	s.items = next

	changes := Changes(r)
	s.logger.Debug("section changed",
		"rows_before", len(prev),
		"rows_after", len(next),
		"changes", len(changes),
	)

	if s.sub != nil && len(changes) > 0 {
		s.sub.fn(changes)
	}
	return nil
}
