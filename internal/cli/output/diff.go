package output

import (
	"github.com/leapstack-labs/difftable/pkg/diff"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.English)

// EditLabel returns the display label of an edit kind, e.g. "Delete".
func EditLabel(k diff.Kind) string {
	return titleCase.String(k.String())
}

// EditKind returns the styled label of an edit kind.
func (r *Renderer) EditKind(k diff.Kind) string {
	label := EditLabel(k)
	switch k {
	case diff.KindDelete:
		return r.styles.Delete.Render(label)
	case diff.KindInsert:
		return r.styles.Insert.Render(label)
	case diff.KindUpdate:
		return r.styles.Update.Render(label)
	case diff.KindMove:
		return r.styles.Move.Render(label)
	default:
		return label
	}
}

// DiffOutput is the JSON output of the diff command.
type DiffOutput struct {
	Old     string      `json:"old"`
	New     string      `json:"new"`
	Edits   []EditInfo  `json:"edits"`
	Summary DiffSummary `json:"summary"`
}

// EditInfo is one edit of a DiffOutput. From and To are omitted when the
// edit kind does not use them.
type EditInfo struct {
	Kind string `json:"kind"`
	From *int   `json:"from,omitempty"`
	To   *int   `json:"to,omitempty"`
	ID   string `json:"id"`
	Item string `json:"item"`
}

// DiffSummary counts edits by kind.
type DiffSummary struct {
	OldRows int    `json:"old_rows"`
	NewRows int    `json:"new_rows"`
	Deletes int    `json:"deletes"`
	Inserts int    `json:"inserts"`
	Updates int    `json:"updates"`
	Moves   int    `json:"moves"`
	Applies *bool  `json:"applies,omitempty"`
	Error   string `json:"error,omitempty"`
}
