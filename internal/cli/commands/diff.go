package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/difftable/internal/cli/output"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/spf13/cobra"
)

// ErrEditsMismatch is returned by diff --check when applying the edits does
// not reproduce the new list.
var ErrEditsMismatch = errors.New("edits do not reproduce the new list")

// DiffOptions holds options for the diff command.
type DiffOptions struct {
	Check bool
}

// NewDiffCommand creates the diff command.
func NewDiffCommand() *cobra.Command {
	opts := &DiffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <old.yaml> <new.yaml>",
		Short: "Show the edits between two fixtures",
		Long: `Compute the delete, insert, update and move edits that turn the items
of one fixture into the items of another.

Edits are listed in the order a list view applies them. Use "-" for the
built-in store fixture.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Compare the built-in store with an edited copy
  difftable diff - store.yaml

  # Report changed rows that also moved as delete plus insert
  difftable diff old.yaml new.yaml --split-moved-updates

  # Fail unless replaying the edits reproduces new.yaml
  difftable diff old.yaml new.yaml --check --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "Replay the edits and fail if they do not reproduce the new list")

	return cmd
}

// editRow is an edit with the item it addresses.
type editRow struct {
	Edit diff.Edit
	ID   string
	Item string
}

// diffReport is the rendered result of the diff command.
type diffReport struct {
	OldName, NewName string
	OldRows, NewRows int
	Result           diff.Result
	Rows             []editRow
	Checked          bool
	CheckErr         error
}

func runDiff(cmd *cobra.Command, oldPath, newPath string, opts *DiffOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	prev, err := loadFixtureArg(oldPath)
	if err != nil {
		return err
	}
	next, err := loadFixtureArg(newPath)
	if err != nil {
		return err
	}

	res, err := diff.Diff(prev.Items, next.Items, cmdCtx.DiffOptions()...)
	if err != nil {
		return fmt.Errorf("diffing fixtures: %w", err)
	}
	cmdCtx.Logger.Debug("fixtures diffed", "old", oldPath, "new", newPath, "edits", res.Len())

	report := diffReport{
		OldName: fixtureArgName(oldPath),
		NewName: fixtureArgName(newPath),
		OldRows: len(prev.Items),
		NewRows: len(next.Items),
		Result:  res,
		Rows:    editRows(prev.Items, next.Items, res),
		Checked: opts.Check,
	}
	if opts.Check {
		report.CheckErr = checkEdits(prev.Items, next.Items, res)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		err = diffJSON(r, report)
	case output.ModeMarkdown:
		diffMarkdown(r, report)
	default:
		diffText(r, report)
	}
	if err != nil {
		return err
	}
	return report.CheckErr
}

func loadFixtureArg(arg string) (store.Fixture, error) {
	if arg == "-" {
		return store.DefaultFixture()
	}
	return store.LoadFixture(arg)
}

func fixtureArgName(arg string) string {
	if arg == "-" {
		return "built-in"
	}
	return arg
}

// editRows pairs each edit with the item it addresses: the new item for
// inserts and updates, the old item otherwise.
func editRows(prev, next []diff.Item, res diff.Result) []editRow {
	nextIndex := make(map[string]int, len(next))
	for j, item := range next {
		nextIndex[item.DiffIdentifier()] = j
	}

	edits := res.Edits()
	rows := make([]editRow, 0, len(edits))
	for _, e := range edits {
		var item diff.Item
		switch e.Kind {
		case diff.KindInsert:
			item = next[e.To]
		case diff.KindUpdate:
			item = next[nextIndex[prev[e.From].DiffIdentifier()]]
		default:
			item = prev[e.From]
		}
		rows = append(rows, editRow{Edit: e, ID: item.DiffIdentifier(), Item: store.Describe(item)})
	}
	return rows
}

// checkEdits replays res against prev and compares the outcome with next.
func checkEdits(prev, next []diff.Item, res diff.Result) error {
	got, err := diff.Apply(prev, next, res)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEditsMismatch, err)
	}
	for i := range next {
		if got[i].DiffIdentifier() != next[i].DiffIdentifier() || !got[i].DiffEqual(next[i]) {
			return fmt.Errorf("%w: row %d is %q, want %q (try --split-moved-updates)",
				ErrEditsMismatch, i, got[i].DiffIdentifier(), next[i].DiffIdentifier())
		}
	}
	return nil
}

func indexCell(i int) string {
	if i < 0 {
		return "-"
	}
	return strconv.Itoa(i)
}

func summaryLine(res diff.Result) string {
	return fmt.Sprintf("%d edits: %d deletes, %d inserts, %d updates, %d moves",
		res.Len(), len(res.Deletes), len(res.Inserts), len(res.Updates), len(res.Moves))
}

func newEditTable(r *output.Renderer, rows []editRow, styled bool) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Edit", "From", "To", "ID", "Item"})
	for i, row := range rows {
		kind := output.EditLabel(row.Edit.Kind)
		if styled {
			kind = r.EditKind(row.Edit.Kind)
		}
		t.AppendRow(table.Row{i + 1, kind, indexCell(row.Edit.From), indexCell(row.Edit.To), row.ID, row.Item})
	}
	return t
}

// diffText outputs the edits as a styled table.
func diffText(r *output.Renderer, rep diffReport) {
	r.Header(1, fmt.Sprintf("Diff %s → %s", rep.OldName, rep.NewName))
	r.StatusLine("Rows", fmt.Sprintf("%d → %d", rep.OldRows, rep.NewRows))

	if !rep.Result.HasChanges() {
		r.Success("No changes")
	} else {
		newEditTable(r, rep.Rows, r.IsTTY()).Render()
		r.Println(r.Muted(summaryLine(rep.Result)))
	}

	if rep.Checked {
		if rep.CheckErr != nil {
			r.Error(rep.CheckErr.Error())
		} else {
			r.Success("Edits reproduce the new list")
		}
	}
}

// diffMarkdown outputs the edits as a markdown table.
func diffMarkdown(r *output.Renderer, rep diffReport) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Diff %s → %s", rep.OldName, rep.NewName)))
	r.Println("")
	r.Println(output.FormatKeyValue("Rows", fmt.Sprintf("%d → %d", rep.OldRows, rep.NewRows)))
	r.Println(output.FormatKeyValue("Edits", summaryLine(rep.Result)))
	if rep.Checked {
		status := "ok"
		if rep.CheckErr != nil {
			status = rep.CheckErr.Error()
		}
		r.Println(output.FormatKeyValue("Check", status))
	}

	if rep.Result.HasChanges() {
		r.Println("")
		newEditTable(r, rep.Rows, false).RenderMarkdown()
	}
}

// diffJSON outputs the edits in JSON format.
func diffJSON(r *output.Renderer, rep diffReport) error {
	out := output.DiffOutput{
		Old:   rep.OldName,
		New:   rep.NewName,
		Edits: make([]output.EditInfo, 0, len(rep.Rows)),
		Summary: output.DiffSummary{
			OldRows: rep.OldRows,
			NewRows: rep.NewRows,
			Deletes: len(rep.Result.Deletes),
			Inserts: len(rep.Result.Inserts),
			Updates: len(rep.Result.Updates),
			Moves:   len(rep.Result.Moves),
		},
	}
	for _, row := range rep.Rows {
		info := output.EditInfo{
			Kind: row.Edit.Kind.String(),
			ID:   row.ID,
			Item: row.Item,
		}
		if row.Edit.From >= 0 {
			from := row.Edit.From
			info.From = &from
		}
		if row.Edit.To >= 0 {
			to := row.Edit.To
			info.To = &to
		}
		out.Edits = append(out.Edits, info)
	}
	if rep.Checked {
		ok := rep.CheckErr == nil
		out.Summary.Applies = &ok
		if !ok {
			out.Summary.Error = rep.CheckErr.Error()
		}
	}
	return r.JSON(out)
}
