package output

import (
	"bytes"
	"testing"

	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"text", ModeText},
		{" Markdown ", ModeMarkdown},
		{"JSON", ModeJSON},
		{"html", ModeAuto},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Mode(tt.in), tt.in)
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeMarkdown, true, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
	}
	for _, tt := range tests {
		r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
		assert.Equal(t, tt.want, r.EffectiveMode(), "%s tty=%v", tt.mode, tt.isTTY)
	}
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, _ := newTestRenderer(ModeAuto, false)

	r.Header(1, "Diff")
	r.Header(2, "Edits")
	r.StatusLine("Rows", "3 -> 4")

	assert.Equal(t, "# Diff\n## Edits\n- **Rows:** 3 -> 4\n", out.String())
}

func TestRenderer_TextWithoutTTYHasNoANSI(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false)

	r.Header(1, "Diff")
	r.StatusLine("Rows", "3")
	r.Success("applies cleanly")
	r.Warning("moved rows changed")
	r.Error("rejected")
	r.Println(r.EditKind(diff.KindMove), r.Muted("quiet"))

	assert.NotContains(t, out.String()+errOut.String(), "\x1b[")
	assert.Contains(t, out.String(), "Diff\nRows: 3\n✓ applies cleanly\nMove quiet\n")
	assert.Equal(t, "! moved rows changed\n✗ rejected\n", errOut.String())
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON, false)

	require.NoError(t, r.JSON(DiffSummary{Deletes: 1}))
	assert.Contains(t, out.String(), `"deletes": 1`)
	assert.NotContains(t, out.String(), "applies")
}

func TestEditLabel(t *testing.T) {
	assert.Equal(t, "Delete", EditLabel(diff.KindDelete))
	assert.Equal(t, "Insert", EditLabel(diff.KindInsert))
	assert.Equal(t, "Update", EditLabel(diff.KindUpdate))
	assert.Equal(t, "Move", EditLabel(diff.KindMove))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "### Moves", FormatHeader(3, "Moves"))
	assert.Equal(t, "# Top", FormatHeader(0, "Top"))
	assert.Equal(t, "- **Old:** a.yaml", FormatKeyValue("Old", "a.yaml"))
	assert.Equal(t, "```yaml\nitems: []\n```", FormatCodeBlock("yaml", "items: []\n"))
}
