package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/testutil"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, items []diff.Item) Model {
	t.Helper()

	n := 0
	s, err := store.New(items,
		store.WithSeed(1),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		}),
	)
	require.NoError(t, err)

	m, err := New(Config{Title: "Test", Store: s, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return m
}

func defaultItems(t *testing.T) []diff.Item {
	t.Helper()
	f, err := store.DefaultFixture()
	require.NoError(t, err)
	return f.Items
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestModel_InitialView(t *testing.T) {
	m := newTestModel(t, defaultItems(t))

	assert.Nil(t, m.Init())
	assert.Equal(t, "header:hello", m.cursor)
	assert.Equal(t, 1, m.view.reloads)
	assert.Len(t, m.view.rows(), 13)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 80})
	out := m.View()
	for _, want := range []string{"Test", "Hello", "Bank of America", "period: 3 years", "price: 10 dollars", "The End"} {
		assert.Contains(t, out, want)
	}
}

func TestModel_AddAndRemove(t *testing.T) {
	m := newTestModel(t, defaultItems(t))

	m, _ = update(t, m, runes("+"))
	require.NoError(t, m.err)
	assert.Len(t, m.store.Items(), 14)
	assert.Equal(t, 1, m.view.batches)
	assert.Equal(t, "credit_card:gen-1", m.cursor, "cursor follows the new card")
	assert.Contains(t, m.status, "added")
	assert.Equal(t, diff.KindInsert, m.view.changed["credit_card:gen-1"])

	m, _ = update(t, m, runes("-"))
	require.NoError(t, m.err)
	assert.Len(t, m.store.Items(), 13)
	assert.Equal(t, 2, m.view.batches)
	assert.Contains(t, m.status, "removed")
	_, ok := m.view.mirror.Find(m.cursor)
	assert.True(t, ok, "cursor stays on a displayed row")
}

func TestModel_RemoveFromEmptyStore(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = update(t, m, runes("-"))
	require.NoError(t, m.err)
	assert.Equal(t, "nothing to remove", m.status)
	assert.Equal(t, 0, m.view.batches)
	assert.Contains(t, m.View(), "no rows")
}

func TestModel_BatchUpdateIsOneBatch(t *testing.T) {
	m := newTestModel(t, defaultItems(t))

	m, _ = update(t, m, runes("b"))
	require.NoError(t, m.err)
	assert.Len(t, m.store.Items(), 14)
	assert.Equal(t, 1, m.view.batches)
	assert.Contains(t, m.status, "batch applied")
}

func TestModel_CursorAndSelect(t *testing.T) {
	m := newTestModel(t, defaultItems(t))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "header:hello", m.cursor, "cursor is clamped at the top")

	for i := 0; i < 4; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, "credit_card:boa", m.cursor)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "selected Bank of America, period: 3 years at 0.4", m.status)
}

func TestModel_FixtureReload(t *testing.T) {
	m := newTestModel(t, defaultItems(t))

	items := []diff.Item{
		store.Header{ID: "hello", Title: "Hi"},
		store.CreditCard{ID: "boa", Bank: "Bank of America", Period: "3 years"},
	}
	m, _ = update(t, m, FixtureMsg{Items: items})
	require.NoError(t, m.err)
	assert.Equal(t, "fixture reloaded, 2 items", m.status)
	assert.Equal(t, items, m.store.Items())
	assert.Equal(t, 2, m.view.mirror.NumberOfRows(0))

	m, _ = update(t, m, FixtureMsg{Err: store.ErrInvalidFixture})
	assert.ErrorIs(t, m.err, store.ErrInvalidFixture)
}

func TestModel_ReloadAndHelp(t *testing.T) {
	m := newTestModel(t, defaultItems(t))

	m, _ = update(t, m, runes("r"))
	assert.Equal(t, 2, m.view.reloads)
	assert.Equal(t, "reloaded", m.status)

	m, _ = update(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, defaultItems(t))

	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestVisibleOffset(t *testing.T) {
	heights := []int{1, 2, 2, 1, 3}

	tests := []struct {
		name   string
		cur    int
		budget int
		want   int
	}{
		{name: "fits from the top", cur: 2, budget: 5, want: 0},
		{name: "scrolls to keep cursor visible", cur: 4, budget: 5, want: 3},
		{name: "cursor taller than budget", cur: 4, budget: 2, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, visibleOffset(heights, tt.cur, tt.budget))
		})
	}
}

func TestMeasurer(t *testing.T) {
	assert.Equal(t, 2, measurer{}.Measure(&mainCell{main: "CitiBank", small: "period: 1 year"}, 40))
	assert.Equal(t, 4, measurer{}.Measure(&spacerCell{lines: spacerLines(16)}, 40))
	assert.Equal(t, 1, measurer{}.Measure("not a cell", 40))
}
