// Package storescreen serves the store screen as a live web list.
//
// All model mutations run on the screen loop goroutine. The web list view
// renders DOM patches on that goroutine and fans them out to SSE listeners
// through the notifier.
package storescreen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/table"
	"github.com/leapstack-labs/difftable/internal/ui/notifier"
	"github.com/leapstack-labs/difftable/pkg/configurator"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
)

// ErrStopped is returned by Do once the loop has stopped.
var ErrStopped = errors.New("store screen stopped")

// Config holds the dependencies of a Screen.
type Config struct {
	Title    string
	Store    *store.Store
	Notifier *notifier.Notifier[Event]
	Logger   *slog.Logger
	DiffOpts []diff.Option
}

// Screen owns the store, its table and the web list view.
type Screen struct {
	title    string
	store    *store.Store
	table    *table.Table
	view     *webView
	notifier *notifier.Notifier[Event]
	logger   *slog.Logger

	actions chan func()
	done    chan struct{}

	selected diff.Item
}

// NewScreen builds the screen and attaches the store's model.
func NewScreen(cfg Config) (*Screen, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := cfg.Notifier
	if n == nil {
		n = notifier.New[Event]()
	}

	registry := configurator.NewRegistry(logger)
	if err := registry.RegisterAll(Configurators()...); err != nil {
		return nil, err
	}

	s := &Screen{
		title:    cfg.Title,
		store:    cfg.Store,
		view:     newWebView(n),
		notifier: n,
		logger:   logger,
		actions:  make(chan func()),
		done:     make(chan struct{}),
	}
	if s.title == "" {
		s.title = "Store"
	}

	s.table = table.New(registry, s.view,
		table.WithOwner(s),
		table.WithLogger(logger),
		table.WithDiffOptions(cfg.DiffOpts...),
		table.WithErrorHandler(func(err error) {
			logger.Warn("list view reloaded after rejected batch", "error", err)
		}),
	)
	s.view.table = s.table

	if err := s.table.SetModel(cfg.Store.Model()); err != nil {
		return nil, err
	}
	return s, nil
}

// Title returns the page title.
func (s *Screen) Title() string {
	return s.title
}

// Notifier returns the notifier carrying list events.
func (s *Screen) Notifier() *notifier.Notifier[Event] {
	return s.notifier
}

// Run executes submitted actions until ctx is done.
func (s *Screen) Run(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-s.actions:
			fn()
		}
	}
}

// Do runs fn on the loop goroutine and waits for its result.
func (s *Screen) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	action := func() { result <- fn() }

	select {
	case s.actions <- action:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddCard inserts a random credit card.
func (s *Screen) AddCard(ctx context.Context) (store.CreditCard, error) {
	var card store.CreditCard
	err := s.Do(ctx, func() error {
		var err error
		card, _, err = s.store.AddCreditCardAtRandom()
		return err
	})
	return card, err
}

// RemoveRandom removes a random item. It returns nil when the store is
// empty.
func (s *Screen) RemoveRandom(ctx context.Context) (diff.Item, error) {
	var removed diff.Item
	err := s.Do(ctx, func() error {
		var err error
		removed, _, err = s.store.DeleteRandom()
		return err
	})
	return removed, err
}

// Replace swaps every item as one batch.
func (s *Screen) Replace(ctx context.Context, items []diff.Item) error {
	return s.Do(ctx, func() error {
		return s.store.Replace(items)
	})
}

// Select reports a selection of the row at at and returns its item.
func (s *Screen) Select(ctx context.Context, at section.IndexPath) (diff.Item, error) {
	var item diff.Item
	err := s.Do(ctx, func() error {
		s.selected = nil
		if err := s.table.SelectRow(at); err != nil {
			return err
		}
		item = s.selected
		return nil
	})
	return item, err
}

// RenderList renders the whole list with the row of selected highlighted.
// It also returns the sequence number of the last event the rendering
// includes.
func (s *Screen) RenderList(ctx context.Context, selected string) (html string, seq uint64, err error) {
	err = s.Do(ctx, func() error {
		var err error
		html, err = s.view.renderList(selected)
		seq = s.view.seq
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("rendering list: %w", err)
	}
	return html, seq, nil
}

// DidSelectRow implements table.Owner.
func (s *Screen) DidSelectRow(item diff.Item, at section.IndexPath) {
	s.selected = item
	s.logger.Info("row selected", "at", at.String(), "item", store.Describe(item))
}

// WillDisplayCell implements table.Owner.
func (s *Screen) WillDisplayCell(configurator.Cell, diff.Item, section.IndexPath) {}
