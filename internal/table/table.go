// Package table is the data source of a list view: it resolves rows to
// configurators, hands out bound cells, caches row heights and forwards
// model changes through a reconciler.
package table

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/difftable/internal/reconcile"
	"github.com/leapstack-labs/difftable/pkg/configurator"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
)

// ErrNoMeasurer is returned when a row without a fixed height is measured
// and the table has no Measurer.
var ErrNoMeasurer = errors.New("no measurer for dynamic row height")

// Owner receives row callbacks.
type Owner interface {
	DidSelectRow(item diff.Item, at section.IndexPath)
	WillDisplayCell(cell configurator.Cell, item diff.Item, at section.IndexPath)
}

// Measurer sizes a bound offscreen cell for a given width.
type Measurer interface {
	Measure(cell configurator.Cell, width int) int
}

// Table binds a section model to a list view.
type Table struct {
	registry *configurator.Registry
	view     reconcile.ListView
	rec      *reconcile.Reconciler

	owner    Owner
	measurer Measurer
	logger   *slog.Logger

	recOpts []reconcile.Option

	heights   map[heightKey]int
	reusable  map[string][]configurator.Cell
	offscreen map[string]configurator.Cell
}

type heightKey struct {
	at    section.IndexPath
	width int
}

// Option configures a Table.
type Option func(*Table)

// WithOwner sets the receiver of selection and display callbacks.
func WithOwner(o Owner) Option {
	return func(t *Table) { t.owner = o }
}

// WithMeasurer sets the measurer used for rows without a fixed height.
func WithMeasurer(m Measurer) Option {
	return func(t *Table) { t.measurer = m }
}

// WithLogger sets the table logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithDiffOptions sets the diff options used to flush update cycles.
func WithDiffOptions(opts ...diff.Option) Option {
	return func(t *Table) {
		t.recOpts = append(t.recOpts, reconcile.WithDiffOptions(opts...))
	}
}

// WithErrorHandler sets the callback for batches the view rejected outside
// PerformUpdates. The view has already been reloaded when it runs.
func WithErrorHandler(fn func(error)) Option {
	return func(t *Table) {
		t.recOpts = append(t.recOpts, reconcile.WithErrorHandler(fn))
	}
}

// New creates a table resolving rows through registry and driving view.
func New(registry *configurator.Registry, view reconcile.ListView, opts ...Option) *Table {
	t := &Table{
		registry:  registry,
		view:      view,
		logger:    slog.New(slog.DiscardHandler),
		heights:   make(map[heightKey]int),
		reusable:  make(map[string][]configurator.Cell),
		offscreen: make(map[string]configurator.Cell),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.rec = reconcile.New(cachingView{t}, t.logger, t.recOpts...)
	return t
}

// SetModel validates that every item of m has a registered configurator
// and makes m the displayed model. On error the current model is kept.
func (t *Table) SetModel(m section.Model) error {
	if m != nil {
		var keyed []configurator.Keyed
		for si, s := range m.Sections() {
			for ri, item := range s.Items() {
				k, ok := item.(configurator.Keyed)
				if !ok {
					return fmt.Errorf("%w: row %d.%d (%T) has no configurator key",
						configurator.ErrNotRegistered, si, ri, item)
				}
				keyed = append(keyed, k)
			}
		}
		if err := t.registry.Validate(keyed); err != nil {
			return fmt.Errorf("validating model: %w", err)
		}
	}
	t.rec.Attach(m)
	return nil
}

// Model returns the displayed model, or nil.
func (t *Table) Model() section.Model {
	return t.rec.Model()
}

// Registry returns the configurator registry.
func (t *Table) Registry() *configurator.Registry {
	return t.registry
}

// NumberOfSections returns the number of sections of the model.
func (t *Table) NumberOfSections() int {
	if m := t.Model(); m != nil {
		return len(m.Sections())
	}
	return 0
}

// NumberOfRows returns the number of rows in section s.
func (t *Table) NumberOfRows(s int) int {
	m := t.Model()
	if m == nil {
		return 0
	}
	sections := m.Sections()
	if s < 0 || s >= len(sections) {
		return 0
	}
	return sections[s].Len()
}

// Item returns the item displayed at at.
func (t *Table) Item(at section.IndexPath) (diff.Item, bool) {
	m := t.Model()
	if m == nil {
		return nil, false
	}
	sections := m.Sections()
	if at.Section < 0 || at.Section >= len(sections) {
		return nil, false
	}
	return sections[at.Section].Item(at.Row)
}

// CellForRow returns a cell bound to the item at at. Cells come from the
// reuse queue of the row's configurator when one is available. The owner's
// WillDisplayCell runs after binding.
func (t *Table) CellForRow(at section.IndexPath) (configurator.Cell, error) {
	item, c, err := t.resolve(at)
	if err != nil {
		return nil, err
	}

	cell := t.dequeue(c)
	if err := c.Bind(cell, item.(configurator.Keyed), at); err != nil {
		return nil, fmt.Errorf("binding row %s: %w", at, err)
	}
	if t.owner != nil {
		t.owner.WillDisplayCell(cell, item, at)
	}
	return cell, nil
}

// EnqueueReusableCell returns a cell that is no longer displayed to the
// reuse queue of key.
func (t *Table) EnqueueReusableCell(key string, cell configurator.Cell) {
	if cell == nil {
		return
	}
	t.reusable[key] = append(t.reusable[key], cell)
}

func (t *Table) dequeue(c configurator.Configurator) configurator.Cell {
	queue := t.reusable[c.Key()]
	if n := len(queue); n > 0 {
		cell := queue[n-1]
		t.reusable[c.Key()] = queue[:n-1]
		return cell
	}
	return c.NewCell()
}

// HeightForRow returns the height of the row at at for the given width.
// Fixed heights come from the configurator; other rows are bound to an
// offscreen cell and measured. Results are cached until the next batch or
// reload.
func (t *Table) HeightForRow(at section.IndexPath, width int) (int, error) {
	key := heightKey{at: at, width: width}
	if h, ok := t.heights[key]; ok {
		return h, nil
	}

	item, c, err := t.resolve(at)
	if err != nil {
		return 0, err
	}
	keyed := item.(configurator.Keyed)

	h, ok, err := c.Height(keyed)
	if err != nil {
		return 0, fmt.Errorf("height of row %s: %w", at, err)
	}
	if !ok {
		if t.measurer == nil {
			return 0, fmt.Errorf("%w: row %s (%s)", ErrNoMeasurer, at, c.Key())
		}
		cell, exists := t.offscreen[c.Key()]
		if !exists {
			cell = c.NewCell()
			t.offscreen[c.Key()] = cell
		}
		if err := c.Bind(cell, keyed, at); err != nil {
			return 0, fmt.Errorf("measuring row %s: %w", at, err)
		}
		h = t.measurer.Measure(cell, width)
	}

	t.heights[key] = h
	return h, nil
}

// SelectRow reports a selection of the row at at to the owner.
func (t *Table) SelectRow(at section.IndexPath) error {
	item, ok := t.Item(at)
	if !ok {
		return fmt.Errorf("%w: select %s", section.ErrIndexOutOfRange, at)
	}
	t.logger.Debug("row selected", "at", at.String(), "id", item.DiffIdentifier())
	if t.owner != nil {
		t.owner.DidSelectRow(item, at)
	}
	return nil
}

// PerformUpdates applies every change fn makes to the model as one batch.
func (t *Table) PerformUpdates(fn func() error) error {
	return t.rec.PerformUpdates(fn)
}

// ReloadData drops cached heights and reloads the view.
func (t *Table) ReloadData() {
	cachingView{t}.ReloadData()
}

func (t *Table) resolve(at section.IndexPath) (diff.Item, configurator.Configurator, error) {
	item, ok := t.Item(at)
	if !ok {
		return nil, configurator.Configurator{}, fmt.Errorf("%w: row %s", section.ErrIndexOutOfRange, at)
	}
	keyed, ok := item.(configurator.Keyed)
	if !ok {
		return nil, configurator.Configurator{}, fmt.Errorf("%w: row %s (%T) has no configurator key",
			configurator.ErrNotRegistered, at, item)
	}
	c, err := t.registry.Resolve(keyed)
	if err != nil {
		return nil, configurator.Configurator{}, fmt.Errorf("row %s: %w", at, err)
	}
	return item, c, nil
}

func (t *Table) clearHeights() {
	if len(t.heights) > 0 {
		t.heights = make(map[heightKey]int)
	}
}

// cachingView is the ListView handed to the reconciler. It invalidates the
// height cache before the real view sees any change.
type cachingView struct {
	t *Table
}

func (v cachingView) ReloadData() {
	v.t.clearHeights()
	v.t.view.ReloadData()
}

func (v cachingView) ApplyBatch(b reconcile.Batch) error {
	v.t.clearHeights()
	return v.t.view.ApplyBatch(b)
}
