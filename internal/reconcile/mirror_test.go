package reconcile

import (
	"testing"

	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mirrorAfter builds a one-section model, mirrors it, replaces its items
// with next and returns the row ops produced by the resulting batch.
func mirrorAfter(t *testing.T, prev, next []diff.Item) ([]RowOp, *Mirror) {
	t.Helper()

	s, err := section.New(prev)
	require.NoError(t, err)
	model := section.NewModel(s)

	m := NewMirror()
	m.Reload(model)

	var batch Batch
	s.Subscribe(func(changes []section.Change) {
		batch.Changes = append(batch.Changes, changes...)
	})
	require.NoError(t, s.ReplaceAll(next))

	ops, err := m.Apply(batch, model)
	require.NoError(t, err)
	return ops, m
}

func TestMirror_RowOps(t *testing.T) {
	tests := []struct {
		name string
		prev []string
		next []string
		want []string
	}{
		{
			name: "insert in the middle",
			prev: []string{"header", "spacer", "card"},
			next: []string{"header", "new", "spacer", "card"},
			want: []string{`insert(0:new after "header")`},
		},
		{
			name: "insert at the top",
			prev: []string{"a"},
			next: []string{"b", "a"},
			want: []string{`insert(0:b after "")`},
		},
		{
			name: "delete",
			prev: []string{"a", "b", "c"},
			next: []string{"a", "c"},
			want: []string{"delete(0:b)"},
		},
		{
			name: "move becomes delete and insert",
			prev: []string{"a", "b", "c"},
			next: []string{"b", "a", "c"},
			want: []string{"delete(0:b)", `insert(0:b after "")`},
		},
		{
			name: "inserts chain on earlier inserts",
			prev: []string{"a"},
			next: []string{"a", "b", "c"},
			want: []string{`insert(0:b after "a")`, `insert(0:c after "b")`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, m := mirrorAfter(t, items(tt.prev...), items(tt.next...))

			got := make([]string, len(ops))
			for i, op := range ops {
				got[i] = op.String()
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.next), m.NumberOfRows(0))
		})
	}
}

func TestMirror_UpdateCarriesNewContent(t *testing.T) {
	ops, m := mirrorAfter(t,
		[]diff.Item{item{id: "a", val: "1"}, item{id: "b", val: "1"}},
		[]diff.Item{item{id: "a", val: "1"}, item{id: "b", val: "2"}},
	)

	require.Len(t, ops, 1)
	assert.Equal(t, diff.KindUpdate, ops[0].Kind)
	assert.Equal(t, "b", ops[0].Key)
	assert.Equal(t, item{id: "b", val: "2"}, ops[0].Item)

	p, ok := m.Find("b")
	require.True(t, ok)
	assert.Equal(t, section.IndexPath{Section: 0, Row: 1}, p)
}

func TestMirror_RejectsInconsistentBatch(t *testing.T) {
	s, err := section.New(items("a", "b"))
	require.NoError(t, err)
	model := section.NewModel(s)

	m := NewMirror()
	m.Reload(model)

	tests := []struct {
		name    string
		batch   Batch
		wantErr error
	}{
		{
			name: "row count does not add up",
			batch: Batch{Changes: []section.Change{
				{Kind: diff.KindInsert, From: section.IndexPath{Row: -1}, To: section.IndexPath{Row: 0}},
			}},
			wantErr: diff.ErrInconsistentBatch,
		},
		{
			name: "rows end up in the wrong order",
			batch: Batch{Changes: []section.Change{
				{Kind: diff.KindMove, From: section.IndexPath{Row: 0}, To: section.IndexPath{Row: 1}},
			}},
			wantErr: diff.ErrInconsistentBatch,
		},
		{
			name: "unknown section",
			batch: Batch{Changes: []section.Change{
				{Kind: diff.KindDelete, From: section.IndexPath{Section: 4, Row: 0}, To: section.IndexPath{Row: -1}},
			}},
			wantErr: diff.ErrIndexOutOfRange,
		},
		{
			name: "row out of range",
			batch: Batch{Changes: []section.Change{
				{Kind: diff.KindUpdate, From: section.IndexPath{Row: 7}, To: section.IndexPath{Row: -1}},
			}},
			wantErr: diff.ErrIndexOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Apply(tt.batch, model)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []diff.Item{item{id: "a"}, item{id: "b"}}, m.Rows(0), "mirror must be unchanged")
		})
	}
}

func TestMirror_DetectsUnreportedChanges(t *testing.T) {
	s, err := section.New(items("a"))
	require.NoError(t, err)
	model := section.NewModel(s)

	m := NewMirror()
	m.Reload(model)

	// No subscriber: the change never reaches the mirror.
	require.NoError(t, s.Append(item{id: "b"}))

	_, err = m.Apply(Batch{}, model)
	assert.ErrorIs(t, err, diff.ErrInconsistentBatch)
}

func TestMirror_SectionCountMismatch(t *testing.T) {
	a, err := section.New(items("a"))
	require.NoError(t, err)
	b, err := section.New(items("b"))
	require.NoError(t, err)

	m := NewMirror()
	m.Reload(section.NewModel(a))

	_, err = m.Apply(Batch{}, section.NewModel(a, b))
	assert.ErrorIs(t, err, diff.ErrInconsistentBatch)
}
