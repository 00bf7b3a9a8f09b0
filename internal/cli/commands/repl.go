package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/difftable/internal/reconcile"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/table"
	"github.com/leapstack-labs/difftable/pkg/configurator"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
	"github.com/spf13/cobra"
)

const replPrompt = "difftable> "

// REPLOptions holds options for the repl command.
type REPLOptions struct {
	HistoryFile string
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &REPLOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Edit the store list interactively",
		Long: `Edit the store list line by line and watch the batches a list view
receives. Every command is applied as one batch; commands between begin
and commit are applied together as a single batch.

Type .help in the REPL for the list of commands.`,
		Example: `  # Edit the built-in store
  difftable repl

  # Keep command history between sessions
  difftable repl --history ~/.difftable_history`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.HistoryFile, "history", "", "File to keep command history in")

	return cmd
}

func runREPL(cmd *cobra.Command, opts *REPLOptions) error {
	cmdCtx := NewCommandContext(cmd)

	fixture, s, err := cmdCtx.LoadStore()
	if err != nil {
		return err
	}
	sess, err := newREPLSession(s, cmd.OutOrStdout(), cmd.ErrOrStderr(), cmdCtx.Logger, cmdCtx.DiffOptions())
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     opts.HistoryFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "difftable REPL (%s, %d rows)\n", fixture.Title, s.Section().Len())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sess.abort()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if sess.exec(line) {
			break
		}
		if sess.batching {
			rl.SetPrompt("   batch> ")
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
	return nil
}

// replSession applies REPL commands to a store shown by a table.
type replSession struct {
	store  *store.Store
	table  *table.Table
	out    io.Writer
	errOut io.Writer

	batching bool
	pending  [][]string
}

func newREPLSession(s *store.Store, out, errOut io.Writer, logger *slog.Logger, diffOpts []diff.Option) (*replSession, error) {
	registry := configurator.NewRegistry(logger)
	if err := registry.RegisterAll(lineConfigurators()...); err != nil {
		return nil, err
	}

	sess := &replSession{store: s, out: out, errOut: errOut}
	view := &replView{mirror: reconcile.NewMirror(), out: out}
	sess.table = table.New(registry, view,
		table.WithOwner(sess),
		table.WithLogger(logger),
		table.WithDiffOptions(diffOpts...),
		table.WithErrorHandler(func(err error) {
			_, _ = fmt.Fprintf(errOut, "view reloaded: %v\n", err)
		}),
	)
	view.model = sess.table.Model
	if err := sess.table.SetModel(s.Model()); err != nil {
		return nil, err
	}
	return sess, nil
}

// exec runs one input line and reports whether the session should end.
func (s *replSession) exec(line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}

	switch strings.ToLower(args[0]) {
	case ".quit", ".exit", "quit", "exit":
		return true
	case ".help", "help":
		printREPLHelp(s.out)
	case "list", "ls":
		s.list()
	case "select":
		s.report(s.selectRow(args[1:]))
	case "begin":
		if s.batching {
			s.report(errors.New("batch already open"))
			return false
		}
		s.batching = true
	case "commit":
		s.report(s.commit())
	case "abort":
		s.abort()
	default:
		if s.batching {
			if _, ok := mutations[strings.ToLower(args[0])]; !ok {
				s.report(fmt.Errorf("unknown command: %s (type .help for commands)", args[0]))
				return false
			}
			s.pending = append(s.pending, args)
			return false
		}
		s.report(s.table.PerformUpdates(func() error {
			return s.mutate(args)
		}))
	}
	return false
}

func (s *replSession) report(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
}

// commit applies the queued commands as one batch.
func (s *replSession) commit() error {
	if !s.batching {
		return errors.New("no open batch")
	}
	pending := s.pending
	s.batching, s.pending = false, nil

	return s.table.PerformUpdates(func() error {
		var errs []error
		for _, args := range pending {
			if err := s.mutate(args); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", strings.Join(args, " "), err))
			}
		}
		return errors.Join(errs...)
	})
}

func (s *replSession) abort() {
	if s.batching {
		_, _ = fmt.Fprintf(s.out, "batch dropped (%d commands)\n", len(s.pending))
	}
	s.batching, s.pending = false, nil
}

// mutations are the commands that change the list.
var mutations = map[string]func(s *replSession, args []string) error{
	"add":    (*replSession).add,
	"insert": (*replSession).insert,
	"delete": (*replSession).remove,
	"rm":     (*replSession).remove,
	"update": (*replSession).update,
	"move":   (*replSession).move,
	"load":   (*replSession).load,
}

func (s *replSession) mutate(args []string) error {
	fn, ok := mutations[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown command: %s (type .help for commands)", args[0])
	}
	return fn(s, args[1:])
}

func (s *replSession) add(args []string) error {
	if len(args) > 0 {
		return errors.New("usage: add")
	}
	_, _, err := s.store.AddCreditCardAtRandom()
	return err
}

func (s *replSession) insert(args []string) error {
	if len(args) < 3 {
		return errors.New("usage: insert <row> <header|spacer|credit_card|insurance> <text>")
	}
	at, err := rowArg(args[0])
	if err != nil {
		return err
	}
	item, err := s.store.NewItem(args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	return s.store.Section().InsertAt(at, item)
}

func (s *replSession) remove(args []string) error {
	if len(args) == 0 {
		_, _, err := s.store.DeleteRandom()
		return err
	}
	at, err := rowArg(args[0])
	if err != nil {
		return err
	}
	_, err = s.store.Section().RemoveAt(at)
	return err
}

func (s *replSession) update(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: update <row> <text>")
	}
	at, err := rowArg(args[0])
	if err != nil {
		return err
	}
	item, ok := s.store.Section().Item(at)
	if !ok {
		return fmt.Errorf("%w: row %d", section.ErrIndexOutOfRange, at)
	}
	changed, err := store.WithText(item, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return s.store.Section().ReplaceAt(at, changed)
}

func (s *replSession) move(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: move <from> <to>")
	}
	from, err := rowArg(args[0])
	if err != nil {
		return err
	}
	to, err := rowArg(args[1])
	if err != nil {
		return err
	}
	if n := s.store.Section().Len(); to < 0 || to >= n {
		return fmt.Errorf("%w: move to %d (len %d)", section.ErrIndexOutOfRange, to, n)
	}
	item, err := s.store.Section().RemoveAt(from)
	if err != nil {
		return err
	}
	return s.store.Section().InsertAt(to, item)
}

func (s *replSession) load(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: load <fixture.yaml|->")
	}
	f, err := loadFixtureArg(args[0])
	if err != nil {
		return err
	}
	return s.store.Replace(f.Items)
}

func (s *replSession) selectRow(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: select <row>")
	}
	at, err := rowArg(args[0])
	if err != nil {
		return err
	}
	return s.table.SelectRow(section.IndexPath{Row: at})
}

// list prints every row through its cell.
func (s *replSession) list() {
	for row := 0; row < s.table.NumberOfRows(0); row++ {
		at := section.IndexPath{Row: row}
		c, err := s.table.CellForRow(at)
		if err != nil {
			s.report(err)
			continue
		}
		lc, ok := c.(*lineCell)
		if !ok {
			s.report(fmt.Errorf("%w: row %d has cell %T", configurator.ErrTypeMismatch, row, c))
			continue
		}
		_, _ = fmt.Fprintf(s.out, "%3d  %s\n", row, lc)
		s.table.EnqueueReusableCell(lc.kind, lc)
	}
}

// DidSelectRow implements table.Owner.
func (s *replSession) DidSelectRow(item diff.Item, at section.IndexPath) {
	_, _ = fmt.Fprintf(s.out, "selected %s at %s\n", store.Describe(item), at)
}

// WillDisplayCell implements table.Owner.
func (s *replSession) WillDisplayCell(configurator.Cell, diff.Item, section.IndexPath) {}

func rowArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid row %q", s)
	}
	return n, nil
}

// replView is the list view of the REPL. It prints every batch with the
// row operations a keyed view would perform.
type replView struct {
	mirror *reconcile.Mirror
	model  func() section.Model
	out    io.Writer
}

func (v *replView) ReloadData() {
	v.mirror.Reload(v.model())
	rows := 0
	for s := 0; s < v.mirror.NumberOfSections(); s++ {
		rows += v.mirror.NumberOfRows(s)
	}
	_, _ = fmt.Fprintf(v.out, "reload: %d rows\n", rows)
}

func (v *replView) ApplyBatch(b reconcile.Batch) error {
	ops, err := v.mirror.Apply(b, v.model())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(v.out, "batch %s\n", b)
	for _, op := range ops {
		_, _ = fmt.Fprintf(v.out, "  %s\n", op)
	}
	return nil
}

// lineCell is a one-line row of the REPL listing.
type lineCell struct {
	kind string
	text string
}

func (c *lineCell) String() string {
	return fmt.Sprintf("%-11s  %s", c.kind, c.text)
}

func lineConfigurator[T interface {
	configurator.Keyed
	diff.Item
}](key string) configurator.Configurator {
	return configurator.New(key,
		func() *lineCell { return &lineCell{kind: key} },
		nil,
		func(c *lineCell, item T, _ section.IndexPath) {
			c.text = store.Describe(item)
		},
	)
}

func lineConfigurators() []configurator.Configurator {
	return []configurator.Configurator{
		lineConfigurator[store.Header](store.KeyHeader),
		lineConfigurator[store.Spacer](store.KeySpacer),
		lineConfigurator[store.CreditCard](store.KeyCreditCard),
		lineConfigurator[store.Insurance](store.KeyInsurance),
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  list                         Show the rows
  add                          Add a credit card at a random row
  insert <row> <kind> <text>   Insert a header, spacer, credit_card or insurance
  delete [row]                 Delete a row (a random one without row)
  update <row> <text>          Change the title, bank, company or spacer size
  move <from> <to>             Move a row
  load <fixture.yaml|->        Replace every row with a fixture
  select <row>                 Select a row
  begin / commit / abort       Group commands into a single batch
  .help                        Show this help message
  .quit / .exit                Exit the REPL

Tips:
  - Every command is diffed and applied as one batch
  - Use arrow keys to navigate history
  - Tab completion works for commands
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter creates a readline completer for command names.
func newREPLCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("list"),
		readline.PcItem("add"),
		readline.PcItem("insert"),
		readline.PcItem("delete"),
		readline.PcItem("update"),
		readline.PcItem("move"),
		readline.PcItem("load"),
		readline.PcItem("select"),
		readline.PcItem("begin"),
		readline.PcItem("commit"),
		readline.PcItem("abort"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
