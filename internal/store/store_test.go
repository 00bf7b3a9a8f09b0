package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/difftable/internal/testutil"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixture(t *testing.T) {
	f, err := DefaultFixture()
	require.NoError(t, err)

	assert.Equal(t, "Store", f.Title)
	require.Len(t, f.Items, 13)
	assert.Equal(t, Header{ID: "hello", Title: "Hello"}, f.Items[0])
	assert.Equal(t, Spacer{ID: "after-hello", Space: 8}, f.Items[1])
	assert.Equal(t, CreditCard{ID: "boa", Bank: "Bank of America", Period: "3 years"}, f.Items[4])
	assert.Equal(t, Insurance{ID: "bad", Company: "BadInsurance", Price: "10 dollars"}, f.Items[10])
	assert.Equal(t, Header{ID: "the-end", Title: "The End"}, f.Items[12])
}

func TestParseFixture(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []diff.Item
		wantErr error
	}{
		{
			name: "generated ids count per kind",
			data: `
items:
  - kind: spacer
    space: 4
  - kind: header
    title: A
  - kind: spacer
    space: "8"
`,
			want: []diff.Item{
				Spacer{ID: "spacer-1", Space: 4},
				Header{ID: "header-1", Title: "A"},
				Spacer{ID: "spacer-2", Space: 8},
			},
		},
		{
			name: "unknown kind",
			data: `
items:
  - kind: banner
`,
			wantErr: ErrUnknownKind,
		},
		{
			name: "missing kind",
			data: `
items:
  - id: x
`,
			wantErr: ErrUnknownKind,
		},
		{
			name: "field of another kind",
			data: `
items:
  - kind: header
    bank: CitiBank
`,
			wantErr: ErrInvalidFixture,
		},
		{
			name:    "not yaml",
			data:    "items: [",
			wantErr: ErrInvalidFixture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFixture([]byte(tt.data))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Items)
		})
	}
}

func TestLoadFixture(t *testing.T) {
	path := testutil.WriteFile(t, "store.yaml", "title: Mine\nitems:\n  - kind: header\n    id: h\n    title: Mine\n")

	f, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Equal(t, "Mine", f.Title)
	assert.Equal(t, []diff.Item{Header{ID: "h", Title: "Mine"}}, f.Items)

	def, err := LoadFixture("")
	require.NoError(t, err)
	assert.Len(t, def.Items, 13)

	_, err = LoadFixture(filepath.Join(filepath.Dir(path), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func newTestStore(t *testing.T, items []diff.Item) *Store {
	t.Helper()
	n := 0
	s, err := New(items,
		WithSeed(42),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		}),
		WithLogger(testutil.NewTestLogger(t)),
	)
	require.NoError(t, err)
	return s
}

func TestStore_AddCreditCardAtRandom(t *testing.T) {
	f, err := DefaultFixture()
	require.NoError(t, err)
	s := newTestStore(t, f.Items)

	var got []section.Change
	s.Section().Subscribe(func(changes []section.Change) {
		got = append(got, changes...)
	})

	card, at, err := s.AddCreditCardAtRandom()
	require.NoError(t, err)

	assert.Equal(t, "gen-1", card.ID)
	assert.Regexp(t, `^[a-zA-Z0-9]{5} Bank$`, card.Bank)
	assert.Regexp(t, `^\d+ years$`, card.Period)
	assert.GreaterOrEqual(t, at, 0)
	assert.LessOrEqual(t, at, 13)

	require.Len(t, got, 1)
	assert.Equal(t, diff.KindInsert, got[0].Kind)
	assert.Equal(t, at, got[0].To.Row)

	items := s.Items()
	require.Len(t, items, 14)
	assert.Equal(t, card, items[at])
}

func TestStore_DeleteRandom(t *testing.T) {
	s := newTestStore(t, []diff.Item{
		Header{ID: "a", Title: "A"},
		Header{ID: "b", Title: "B"},
	})

	removed, at, err := s.DeleteRandom()
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Len(t, s.Items(), 1)
	assert.NotContains(t, s.Items(), removed)
	assert.Contains(t, []int{0, 1}, at)

	_, _, err = s.DeleteRandom()
	require.NoError(t, err)

	removed, at, err = s.DeleteRandom()
	require.NoError(t, err)
	assert.Nil(t, removed)
	assert.Equal(t, -1, at)
}

func TestStore_SeedIsDeterministic(t *testing.T) {
	a := newTestStore(t, nil)
	b := newTestStore(t, nil)

	for i := 0; i < 5; i++ {
		ca, ia, err := a.AddCreditCardAtRandom()
		require.NoError(t, err)
		cb, ib, err := b.AddCreditCardAtRandom()
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
		assert.Equal(t, ia, ib)
	}
}

func TestStore_Replace(t *testing.T) {
	s := newTestStore(t, []diff.Item{
		Header{ID: "a", Title: "A"},
		Spacer{ID: "s", Space: 4},
	})

	var got []string
	s.Section().Subscribe(func(changes []section.Change) {
		for _, c := range changes {
			got = append(got, c.String())
		}
	})

	require.NoError(t, s.Replace([]diff.Item{
		Spacer{ID: "s", Space: 8},
		Header{ID: "a", Title: "A"},
	}))
	assert.Equal(t, []string{"update(0.1)", "move(0.0->0.1)"}, got)

	err := s.Replace([]diff.Item{Header{ID: "x"}, Header{ID: "x"}})
	assert.ErrorIs(t, err, diff.ErrDuplicateIdentity)
	assert.Len(t, s.Items(), 2)
}

func TestNew_DuplicateIdentity(t *testing.T) {
	_, err := New([]diff.Item{CreditCard{ID: "1"}, CreditCard{ID: "1"}})
	assert.ErrorIs(t, err, diff.ErrDuplicateIdentity)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Cards", Describe(Header{Title: "Cards"}))
	assert.Equal(t, "space 4", Describe(Spacer{Space: 4}))
	assert.Equal(t, "CitiBank, period: 1 year", Describe(CreditCard{Bank: "CitiBank", Period: "1 year"}))
	assert.Equal(t, "BestInsurance, price: 100 dollars", Describe(Insurance{Company: "BestInsurance", Price: "100 dollars"}))
}

func TestNewItem(t *testing.T) {
	s := newTestStore(t, nil)

	tests := []struct {
		kind    string
		text    string
		want    diff.Item
		wantErr error
	}{
		{kind: KeyHeader, text: "Loans", want: Header{ID: "gen-1", Title: "Loans"}},
		{kind: KeySpacer, text: "12", want: Spacer{ID: "gen-2", Space: 12}},
		{kind: KeyCreditCard, text: "Chase", want: CreditCard{ID: "gen-3", Bank: "Chase", Period: "1 year"}},
		{kind: KeyInsurance, text: "Acme", want: Insurance{ID: "gen-4", Company: "Acme", Price: "0 dollars"}},
		{kind: "rocket", text: "x", wantErr: ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := s.NewItem(tt.kind, tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithText(t *testing.T) {
	card := CreditCard{ID: "boa", Bank: "Bank of America", Period: "3 years"}

	got, err := WithText(card, "BoA")
	require.NoError(t, err)
	assert.Equal(t, CreditCard{ID: "boa", Bank: "BoA", Period: "3 years"}, got)
	assert.Equal(t, card.DiffIdentifier(), got.DiffIdentifier())
	assert.False(t, card.DiffEqual(got))

	_, err = WithText(Spacer{ID: "s"}, "wide")
	assert.Error(t, err)
}
