package table

import (
	"testing"

	"github.com/leapstack-labs/difftable/internal/reconcile"
	"github.com/leapstack-labs/difftable/internal/testutil"
	"github.com/leapstack-labs/difftable/pkg/configurator"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type heading struct{ id, text string }

func (h heading) DiffIdentifier() string  { return "heading:" + h.id }
func (h heading) ConfiguratorKey() string { return "heading" }
func (h heading) DiffEqual(other diff.Item) bool {
	o, ok := other.(heading)
	return ok && o == h
}

type note struct{ id, body string }

func (n note) DiffIdentifier() string  { return "note:" + n.id }
func (n note) ConfiguratorKey() string { return "note" }
func (n note) DiffEqual(other diff.Item) bool {
	o, ok := other.(note)
	return ok && o == n
}

// stray has a key nobody registered.
type stray struct{}

func (stray) DiffIdentifier() string   { return "stray" }
func (stray) ConfiguratorKey() string  { return "stray" }
func (stray) DiffEqual(diff.Item) bool { return true }

// unkeyed has no configurator key.
type unkeyed struct{}

func (unkeyed) DiffIdentifier() string   { return "unkeyed" }
func (unkeyed) DiffEqual(diff.Item) bool { return true }

type textCell struct {
	text  string
	binds int
}

func newRegistry(t *testing.T) *configurator.Registry {
	t.Helper()
	reg := configurator.NewRegistry(testutil.NewTestLogger(t))
	require.NoError(t, reg.RegisterAll(
		configurator.New("heading",
			func() *textCell { return &textCell{} },
			func(heading) int { return 1 },
			func(c *textCell, h heading, _ section.IndexPath) {
				c.text = h.text
				c.binds++
			},
		),
		configurator.New("note",
			func() *textCell { return &textCell{} },
			nil,
			func(c *textCell, n note, _ section.IndexPath) {
				c.text = n.body
				c.binds++
			},
		),
	))
	return reg
}

type mirrorView struct {
	table   *Table
	mirror  *reconcile.Mirror
	reloads int
	batches int
}

func (v *mirrorView) ReloadData() {
	v.reloads++
	v.mirror.Reload(v.table.Model())
}

func (v *mirrorView) ApplyBatch(b reconcile.Batch) error {
	if _, err := v.mirror.Apply(b, v.table.Model()); err != nil {
		return err
	}
	v.batches++
	return nil
}

type recordingOwner struct {
	selected  []section.IndexPath
	displayed []string
}

func (o *recordingOwner) DidSelectRow(_ diff.Item, at section.IndexPath) {
	o.selected = append(o.selected, at)
}

func (o *recordingOwner) WillDisplayCell(cell configurator.Cell, _ diff.Item, _ section.IndexPath) {
	o.displayed = append(o.displayed, cell.(*textCell).text)
}

// lineMeasurer counts one line per started width of text.
type lineMeasurer struct{ calls int }

func (m *lineMeasurer) Measure(cell configurator.Cell, width int) int {
	m.calls++
	n := len(cell.(*textCell).text)
	if n == 0 {
		return 1
	}
	return (n + width - 1) / width
}

type fixture struct {
	table    *Table
	view     *mirrorView
	owner    *recordingOwner
	measurer *lineMeasurer
	notes    *section.Section
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		view:     &mirrorView{mirror: reconcile.NewMirror()},
		owner:    &recordingOwner{},
		measurer: &lineMeasurer{},
	}
	f.table = New(newRegistry(t), f.view,
		WithOwner(f.owner),
		WithMeasurer(f.measurer),
		WithLogger(testutil.NewTestLogger(t)),
	)
	f.view.table = f.table

	headings, err := section.New([]diff.Item{heading{id: "top", text: "Notes"}})
	require.NoError(t, err)
	f.notes, err = section.New([]diff.Item{
		note{id: "1", body: "short"},
		note{id: "2", body: "a somewhat longer body"},
	})
	require.NoError(t, err)

	require.NoError(t, f.table.SetModel(section.NewModel(headings, f.notes)))
	return f
}

func TestTable_Counts(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, 2, f.table.NumberOfSections())
	assert.Equal(t, 1, f.table.NumberOfRows(0))
	assert.Equal(t, 2, f.table.NumberOfRows(1))
	assert.Equal(t, 0, f.table.NumberOfRows(5))
	assert.Equal(t, 1, f.view.reloads)

	item, ok := f.table.Item(section.IndexPath{Section: 1, Row: 1})
	require.True(t, ok)
	assert.Equal(t, "note:2", item.DiffIdentifier())
}

func TestTable_SetModelRejectsUnregisteredItems(t *testing.T) {
	f := newFixture(t)
	current := f.table.Model()

	tests := []struct {
		name  string
		items []diff.Item
	}{
		{name: "item without configurator key", items: []diff.Item{unkeyed{}}},
		{name: "key without configurator", items: []diff.Item{stray{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := section.New(tt.items)
			require.NoError(t, err)

			err = f.table.SetModel(section.NewModel(s))
			require.Error(t, err)
			assert.ErrorIs(t, err, configurator.ErrNotRegistered)
			assert.Same(t, current, f.table.Model())
		})
	}
}

func TestTable_CellForRowReusesCells(t *testing.T) {
	f := newFixture(t)
	at := section.IndexPath{Section: 1, Row: 0}

	cell, err := f.table.CellForRow(at)
	require.NoError(t, err)
	first := cell.(*textCell)
	assert.Equal(t, "short", first.text)
	assert.Equal(t, []string{"short"}, f.owner.displayed)

	f.table.EnqueueReusableCell("note", cell)

	cell, err = f.table.CellForRow(section.IndexPath{Section: 1, Row: 1})
	require.NoError(t, err)
	assert.Same(t, first, cell.(*textCell), "queued cell must be reused")
	assert.Equal(t, "a somewhat longer body", first.text)
	assert.Equal(t, 2, first.binds)

	_, err = f.table.CellForRow(section.IndexPath{Section: 1, Row: 9})
	assert.ErrorIs(t, err, section.ErrIndexOutOfRange)
}

func TestTable_HeightForRow(t *testing.T) {
	f := newFixture(t)

	h, err := f.table.HeightForRow(section.IndexPath{Section: 0, Row: 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, h, "fixed height")
	assert.Equal(t, 0, f.measurer.calls)

	long := section.IndexPath{Section: 1, Row: 1}
	h, err = f.table.HeightForRow(long, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, h)
	assert.Equal(t, 1, f.measurer.calls)

	// Cached per index path and width.
	_, err = f.table.HeightForRow(long, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, f.measurer.calls)

	h, err = f.table.HeightForRow(long, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, h)
	assert.Equal(t, 2, f.measurer.calls)
}

func TestTable_HeightCacheClearedByBatch(t *testing.T) {
	f := newFixture(t)
	at := section.IndexPath{Section: 1, Row: 0}

	h, err := f.table.HeightForRow(at, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, h)

	require.NoError(t, f.notes.InsertAt(0, note{id: "0", body: "twenty characters!!!"}))
	assert.Equal(t, 1, f.view.batches)

	h, err = f.table.HeightForRow(at, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, h, "row 1.0 now holds the inserted note")
}

func TestTable_HeightWithoutMeasurer(t *testing.T) {
	view := &mirrorView{mirror: reconcile.NewMirror()}
	tbl := New(newRegistry(t), view)
	view.table = tbl

	s, err := section.New([]diff.Item{note{id: "1", body: "x"}})
	require.NoError(t, err)
	require.NoError(t, tbl.SetModel(section.NewModel(s)))

	_, err = tbl.HeightForRow(section.IndexPath{}, 10)
	assert.ErrorIs(t, err, ErrNoMeasurer)
}

func TestTable_SelectRow(t *testing.T) {
	f := newFixture(t)

	at := section.IndexPath{Section: 1, Row: 1}
	require.NoError(t, f.table.SelectRow(at))
	assert.Equal(t, []section.IndexPath{at}, f.owner.selected)

	err := f.table.SelectRow(section.IndexPath{Section: 3})
	assert.ErrorIs(t, err, section.ErrIndexOutOfRange)
	assert.Len(t, f.owner.selected, 1)
}

func TestTable_PerformUpdates(t *testing.T) {
	f := newFixture(t)

	err := f.table.PerformUpdates(func() error {
		if err := f.notes.Append(note{id: "3", body: "c"}); err != nil {
			return err
		}
		_, err := f.notes.RemoveAt(0)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.view.batches)
	assert.Equal(t, 2, f.view.mirror.NumberOfRows(1))
	row, ok := f.view.mirror.Row(section.IndexPath{Section: 1, Row: 1})
	require.True(t, ok)
	assert.Equal(t, "note:3", row.DiffIdentifier())
}
