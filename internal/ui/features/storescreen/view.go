package storescreen

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/difftable/internal/reconcile"
	"github.com/leapstack-labs/difftable/internal/table"
	"github.com/leapstack-labs/difftable/internal/ui/notifier"
	"github.com/leapstack-labs/difftable/pkg/configurator"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
)

// PatchOp is the kind of DOM patch.
type PatchOp uint8

const (
	PatchRemove  PatchOp = 0x01 // Remove the element with Target id
	PatchReplace PatchOp = 0x02 // Replace the element with Target id
	PatchAfter   PatchOp = 0x03 // Insert HTML after the element with Target id
	PatchPrepend PatchOp = 0x04 // Insert HTML as first child of Target
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchRemove:
		return "remove"
	case PatchReplace:
		return "replace"
	case PatchAfter:
		return "after"
	case PatchPrepend:
		return "prepend"
	default:
		return "unknown"
	}
}

// Patch is one DOM operation addressed by element id.
type Patch struct {
	Op     PatchOp
	Target string
	HTML   string
}

func (p Patch) String() string {
	return fmt.Sprintf("%s(#%s)", p.Op, p.Target)
}

// Event is broadcast to every SSE listener after the list changed.
// Seq increases by one per event; Reload asks listeners to re-render the
// whole list.
type Event struct {
	Seq     uint64
	Reload  bool
	Patches []Patch
}

// webView is the ListView of the browser list. It mirrors the displayed
// rows and turns every batch into keyed DOM patches, rendered while the
// model is still owned by the screen loop.
type webView struct {
	table    *table.Table
	mirror   *reconcile.Mirror
	notifier *notifier.Notifier[Event]
	seq      uint64
}

func newWebView(n *notifier.Notifier[Event]) *webView {
	return &webView{
		mirror:   reconcile.NewMirror(),
		notifier: n,
	}
}

func (v *webView) ReloadData() {
	v.mirror.Reload(v.table.Model())
	v.publish(Event{Reload: true})
}

func (v *webView) ApplyBatch(b reconcile.Batch) error {
	ops, err := v.mirror.Apply(b, v.table.Model())
	if err != nil {
		return err
	}

	patches := make([]Patch, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case diff.KindDelete:
			patches = append(patches, Patch{Op: PatchRemove, Target: RowID(op.Key)})
		case diff.KindUpdate:
			html, err := v.renderKey(op.Key)
			if err != nil {
				return err
			}
			patches = append(patches, Patch{Op: PatchReplace, Target: RowID(op.Key), HTML: html})
		case diff.KindInsert:
			html, err := v.renderKey(op.Key)
			if err != nil {
				return err
			}
			if op.After == "" {
				patches = append(patches, Patch{Op: PatchPrepend, Target: SectionID(op.Section), HTML: html})
			} else {
				patches = append(patches, Patch{Op: PatchAfter, Target: RowID(op.After), HTML: html})
			}
		}
	}

	v.publish(Event{Patches: patches})
	return nil
}

func (v *webView) publish(ev Event) {
	v.seq++
	ev.Seq = v.seq
	if v.notifier != nil {
		v.notifier.Broadcast(ev)
	}
}

func (v *webView) renderKey(key string) (string, error) {
	p, ok := v.mirror.Find(key)
	if !ok {
		return "", fmt.Errorf("%w: row %q is not displayed", diff.ErrInconsistentBatch, key)
	}
	return v.renderRow(p, "")
}

// renderRow renders the row at p, highlighted when its key is selected.
func (v *webView) renderRow(p section.IndexPath, selected string) (string, error) {
	item, ok := v.mirror.Row(p)
	if !ok {
		return "", fmt.Errorf("%w: row %s", section.ErrIndexOutOfRange, p)
	}

	c, err := v.table.CellForRow(p)
	if err != nil {
		return "", err
	}
	if k, ok := item.(configurator.Keyed); ok {
		defer v.table.EnqueueReusableCell(k.ConfiguratorKey(), c)
	}

	rc, ok := c.(*rowCell)
	if !ok {
		return "", fmt.Errorf("%w: row %s has cell %T", configurator.ErrTypeMismatch, p, c)
	}
	key := item.DiffIdentifier()
	var b strings.Builder
	if err := rc.Component(key, key == selected).Render(context.Background(), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderList renders every section of the displayed list.
func (v *webView) renderList(selected string) (string, error) {
	sections := make([][]string, v.mirror.NumberOfSections())
	for s := range sections {
		rows := make([]string, v.mirror.NumberOfRows(s))
		for r := range rows {
			html, err := v.renderRow(section.IndexPath{Section: s, Row: r}, selected)
			if err != nil {
				return "", err
			}
			rows[r] = html
		}
		sections[s] = rows
	}

	var b strings.Builder
	if err := sectionList(sections).Render(context.Background(), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
