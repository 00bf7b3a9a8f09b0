package commands

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/testutil"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replFixture struct {
	sess   *replSession
	store  *store.Store
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestREPL(t *testing.T, opts ...diff.Option) *replFixture {
	t.Helper()

	n := 0
	s, err := store.New([]diff.Item{
		store.Header{ID: "hello", Title: "Hello"},
		store.CreditCard{ID: "boa", Bank: "Bank of America", Period: "3 years"},
		store.CreditCard{ID: "citi", Bank: "CitiBank", Period: "1 year"},
	}, store.WithSeed(5), store.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}))
	require.NoError(t, err)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	sess, err := newREPLSession(s, out, errOut, testutil.NewTestLogger(t), opts)
	require.NoError(t, err)
	assert.Equal(t, "reload: 3 rows\n", out.String())
	out.Reset()

	return &replFixture{sess: sess, store: s, out: out, errOut: errOut}
}

func (f *replFixture) run(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		assert.False(t, f.sess.exec(line), "line %q should not end the session", line)
	}
}

func (f *replFixture) ids() []string {
	var ids []string
	for _, item := range f.store.Items() {
		ids = append(ids, item.DiffIdentifier())
	}
	return ids
}

func TestREPL_List(t *testing.T) {
	f := newTestREPL(t)

	f.run(t, "list")

	assert.Contains(t, f.out.String(), "  0  header       Hello\n")
	assert.Contains(t, f.out.String(), "  1  credit_card  Bank of America, period: 3 years\n")
	assert.Contains(t, f.out.String(), "  2  credit_card  CitiBank, period: 1 year\n")
	assert.Empty(t, f.errOut.String())
}

func TestREPL_CommandsApplyOneBatchEach(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantOut  []string
		wantIDs  []string
		wantRows int
	}{
		{
			name:    "delete",
			line:    "delete 1",
			wantOut: []string{"batch [delete(0.1)]\n", "  delete(0:credit_card:boa)\n"},
			wantIDs: []string{"header:hello", "credit_card:citi"},
		},
		{
			name: "move",
			line: "move 2 0",
			wantOut: []string{
				"batch [move(0.2->0.0)]\n",
				"  delete(0:credit_card:citi)\n",
				`  insert(0:credit_card:citi after "")` + "\n",
			},
			wantIDs: []string{"credit_card:citi", "header:hello", "credit_card:boa"},
		},
		{
			name:    "update",
			line:    "update 1 BoA",
			wantOut: []string{"batch [update(0.1)]\n", "  update(0:credit_card:boa)\n"},
			wantIDs: []string{"header:hello", "credit_card:boa", "credit_card:citi"},
		},
		{
			name:    "insert",
			line:    "insert 1 spacer 8",
			wantOut: []string{"batch [insert(0.1)]\n", `  insert(0:spacer:gen-1 after "header:hello")` + "\n"},
			wantIDs: []string{"header:hello", "spacer:gen-1", "credit_card:boa", "credit_card:citi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestREPL(t)

			f.run(t, tt.line)

			assert.Empty(t, f.errOut.String())
			assert.Equal(t, 1, strings.Count(f.out.String(), "batch ["))
			for _, want := range tt.wantOut {
				assert.Contains(t, f.out.String(), want)
			}
			assert.Equal(t, tt.wantIDs, f.ids())
		})
	}
}

func TestREPL_BeginCommit(t *testing.T) {
	f := newTestREPL(t)

	f.run(t, "begin", "insert 0 header Top", "delete 2")
	assert.Empty(t, f.out.String(), "queued commands wait for commit")
	assert.Len(t, f.store.Items(), 3)

	f.run(t, "commit")

	assert.Empty(t, f.errOut.String())
	assert.Equal(t, 1, strings.Count(f.out.String(), "batch ["))
	assert.Contains(t, f.out.String(), "batch [delete(0.1) insert(0.0)]\n")
	assert.Equal(t, []string{"header:gen-1", "header:hello", "credit_card:citi"}, f.ids())
}

func TestREPL_CommitReportsFailedCommands(t *testing.T) {
	f := newTestREPL(t)

	f.run(t, "begin", "delete 0", "delete 7", "commit")

	assert.Contains(t, f.errOut.String(), "delete 7")
	assert.Contains(t, f.out.String(), "batch [delete(0.0)]\n", "commands that succeeded are still applied")
	assert.Len(t, f.store.Items(), 2)
}

func TestREPL_Abort(t *testing.T) {
	f := newTestREPL(t)

	f.run(t, "begin", "add", "abort")

	assert.Contains(t, f.out.String(), "batch dropped (1 commands)")
	assert.NotContains(t, f.out.String(), "batch [")
	assert.Len(t, f.store.Items(), 3)
}

func TestREPL_Select(t *testing.T) {
	f := newTestREPL(t)

	f.run(t, "select 1")

	assert.Contains(t, f.out.String(), "selected Bank of America, period: 3 years at 0.1")
}

func TestREPL_Load(t *testing.T) {
	f := newTestREPL(t)

	f.run(t, "load -")

	assert.Empty(t, f.errOut.String())
	assert.Equal(t, 1, strings.Count(f.out.String(), "batch ["))
	assert.Equal(t, 13, f.sess.table.NumberOfRows(0))
}

func TestREPL_Errors(t *testing.T) {
	tests := []struct {
		line    string
		wantErr string
	}{
		{line: "delete 9", wantErr: "index out of range"},
		{line: "move 0 9", wantErr: "index out of range"},
		{line: "update x y", wantErr: `invalid row "x"`},
		{line: "update 0", wantErr: "usage: update"},
		{line: "insert 0 rocket boom", wantErr: "unknown item kind"},
		{line: "update 1 3 years", wantErr: ""},
		{line: "frobnicate", wantErr: "unknown command: frobnicate"},
		{line: "commit", wantErr: "no open batch"},
		{line: "select 5", wantErr: "index out of range"},
		{line: "load missing.yaml", wantErr: "missing.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			f := newTestREPL(t)

			f.run(t, tt.line)

			if tt.wantErr == "" {
				assert.Empty(t, f.errOut.String())
				return
			}
			assert.Contains(t, f.errOut.String(), "Error: ")
			assert.Contains(t, f.errOut.String(), tt.wantErr)
			assert.Len(t, f.store.Items(), 3, "failed commands leave the list unchanged")
			assert.NotContains(t, f.out.String(), "batch [")
		})
	}
}

func TestREPL_Quit(t *testing.T) {
	f := newTestREPL(t)

	assert.False(t, f.sess.exec(""))
	assert.False(t, f.sess.exec(".help"))
	assert.Contains(t, f.out.String(), "Commands:")
	assert.True(t, f.sess.exec(".quit"))
	assert.True(t, f.sess.exec("exit"))
}
