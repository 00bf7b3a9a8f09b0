package tui

import (
	"github.com/leapstack-labs/difftable/internal/reconcile"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
)

// listView is the terminal list view. It keeps the displayed rows in a
// mirror so every batch is checked against the model, and remembers which
// rows the last batch touched.
type listView struct {
	model   func() section.Model
	mirror  *reconcile.Mirror
	changed map[string]diff.Kind
	reloads int
	batches int
	lastOps []reconcile.RowOp
}

func newListView() *listView {
	return &listView{
		mirror:  reconcile.NewMirror(),
		changed: make(map[string]diff.Kind),
	}
}

func (v *listView) ReloadData() {
	v.reloads++
	v.changed = make(map[string]diff.Kind)
	v.lastOps = nil
	var m section.Model
	if v.model != nil {
		m = v.model()
	}
	v.mirror.Reload(m)
}

func (v *listView) ApplyBatch(b reconcile.Batch) error {
	var m section.Model
	if v.model != nil {
		m = v.model()
	}
	ops, err := v.mirror.Apply(b, m)
	if err != nil {
		return err
	}

	v.batches++
	v.lastOps = ops
	v.changed = make(map[string]diff.Kind)
	for _, op := range ops {
		if op.Kind == diff.KindDelete {
			continue
		}
		v.changed[op.Key] = op.Kind
	}
	return nil
}

// rows returns the displayed index paths in order.
func (v *listView) rows() []section.IndexPath {
	var out []section.IndexPath
	for s := 0; s < v.mirror.NumberOfSections(); s++ {
		for r := 0; r < v.mirror.NumberOfRows(s); r++ {
			out = append(out, section.IndexPath{Section: s, Row: r})
		}
	}
	return out
}

// key returns the identity displayed at p, or "".
func (v *listView) key(p section.IndexPath) string {
	item, ok := v.mirror.Row(p)
	if !ok {
		return ""
	}
	return item.DiffIdentifier()
}
