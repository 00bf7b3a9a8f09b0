package reconcile

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
)

// Reconciler subscribes to every section of a model and forwards their
// changes to a ListView.
//
// Outside an update cycle each section publish becomes its own batch.
// Inside PerformUpdates the publishes only mark sections dirty; when the
// outermost cycle ends every dirty section is diffed against its snapshot
// and the view receives a single batch.
//
// A Reconciler is not safe for concurrent use. Mutations and the view must
// share one goroutine.
type Reconciler struct {
	view     ListView
	logger   *slog.Logger
	diffOpts []diff.Option

	model section.Model
	subs  []*section.Subscription

	depth     int
	snapshots map[*section.Section][]diff.Item
	dirty     map[*section.Section]bool

	onError func(error)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithDiffOptions sets the options used when a cycle diffs snapshots.
func WithDiffOptions(opts ...diff.Option) Option {
	return func(r *Reconciler) {
		r.diffOpts = append(r.diffOpts, opts...)
	}
}

// WithErrorHandler sets a callback for batches rejected outside an update
// cycle, where there is no caller to return the error to.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Reconciler) {
		r.onError = fn
	}
}

// New creates a reconciler driving view.
func New(view ListView, logger *slog.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Reconciler{
		view:   view,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Model returns the attached model, or nil.
func (r *Reconciler) Model() section.Model {
	return r.model
}

// Attach makes model the data of the view. Any previous model is detached
// first. The view is reloaded and every section subscribed. Attaching
// inside an update cycle restarts the cycle's snapshots.
func (r *Reconciler) Attach(model section.Model) {
	r.Detach()
	r.model = model
	if model == nil {
		r.view.ReloadData()
		return
	}

	for i, s := range model.Sections() {
		offset := i
		target := s
		r.subs = append(r.subs, s.Subscribe(func(changes []section.Change) {
			r.sectionChanged(offset, target, changes)
		}))
	}
	if r.depth > 0 {
		r.begin()
	}
	r.logger.Debug("model attached", "sections", len(r.subs))
	r.view.ReloadData()
}

// Detach releases every section subscription.
func (r *Reconciler) Detach() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
	r.model = nil
	if r.depth > 0 {
		r.begin()
	}
}

// InCycle reports whether an update cycle is open.
func (r *Reconciler) InCycle() bool {
	return r.depth > 0
}

// PerformUpdates runs fn inside an update cycle and applies everything fn
// changed as one batch. Cycles nest; only the outermost one flushes.
// The batch is applied even when fn fails or panics, since the model
// already holds fn's mutations.
func (r *Reconciler) PerformUpdates(fn func() error) (err error) {
	if r.depth == 0 {
		r.begin()
	}
	r.depth++

	defer func() {
		r.depth--
		if r.depth > 0 {
			return
		}
		err = errors.Join(err, r.flush())
	}()

	return fn()
}

func (r *Reconciler) begin() {
	r.snapshots = make(map[*section.Section][]diff.Item)
	r.dirty = make(map[*section.Section]bool)
	if r.model == nil {
		return
	}
	for _, s := range r.model.Sections() {
		r.snapshots[s] = s.Items()
	}
}

func (r *Reconciler) sectionChanged(offset int, s *section.Section, changes []section.Change) {
	if r.depth > 0 {
		r.dirty[s] = true
		return
	}

	batch := Batch{Changes: make([]section.Change, len(changes))}
	for i, c := range changes {
		batch.Changes[i] = c.InSection(offset)
	}
	if err := r.apply(batch); err != nil {
		r.logger.Warn("batch rejected", "section", offset, "error", err)
		if r.onError != nil {
			r.onError(err)
		}
	}
}

// flush diffs every dirty section against its snapshot and applies the
// result as one batch.
func (r *Reconciler) flush() error {
	dirty := r.dirty
	snapshots := r.snapshots
	r.dirty = nil
	r.snapshots = nil

	if len(dirty) == 0 || r.model == nil {
		return nil
	}

	var batch Batch
	for offset, s := range r.model.Sections() {
		if !dirty[s] {
			continue
		}
		res, err := diff.Diff(snapshots[s], s.Items(), r.diffOpts...)
		if err != nil {
			r.view.ReloadData()
			return fmt.Errorf("diffing section %d: %w", offset, err)
		}
		for _, c := range section.Changes(res) {
			batch.Changes = append(batch.Changes, c.InSection(offset))
		}
	}

	if batch.Empty() {
		r.logger.Debug("update cycle produced no changes", "dirty_sections", len(dirty))
		return nil
	}
	return r.apply(batch)
}

func (r *Reconciler) apply(batch Batch) error {
	if batch.Empty() {
		return nil
	}
	r.logger.Debug("applying batch", "changes", len(batch.Changes), "batch", batch.String())
	if err := r.view.ApplyBatch(batch); err != nil {
		r.view.ReloadData()
		return fmt.Errorf("applying batch: %w", err)
	}
	return nil
}
