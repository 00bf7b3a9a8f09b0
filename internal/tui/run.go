package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/watch"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/muesli/termenv"
)

// Options configures Run.
type Options struct {
	Title       string
	Store       *store.Store
	FixturePath string
	Watch       bool
	AltScreen   bool
	NoColor     bool
	DiffOpts    []diff.Option
	Logger      *slog.Logger

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
}

// Run shows the store screen until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	m, err := New(Config{
		Title:    opts.Title,
		Store:    opts.Store,
		Logger:   logger,
		DiffOpts: opts.DiffOpts,
	})
	if err != nil {
		return err
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	p := tea.NewProgram(m, programOpts...)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if opts.Watch && opts.FixturePath != "" {
		go func() {
			err := watch.File(watchCtx, opts.FixturePath, watch.DefaultDebounce, logger, func() {
				f, err := store.LoadFixture(opts.FixturePath)
				p.Send(FixtureMsg{Items: f.Items, Err: err})
			})
			if err != nil {
				logger.Error("fixture watch stopped", "error", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
