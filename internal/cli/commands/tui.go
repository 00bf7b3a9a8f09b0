package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/difftable/internal/cli/config"
	"github.com/leapstack-labs/difftable/internal/tui"
	"github.com/spf13/cobra"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Show the store list in the terminal",
		Long: `Show the store list in an interactive terminal view.

Every change to the list is diffed and applied as one batch; rows that
changed in the last batch are highlighted.

Keys:
  + / a   add a credit card at a random position
  - / d   remove a random row
  b       add two cards and remove one in a single batch
  r       reload the whole list
  ↑ / ↓   move the cursor, enter selects
  q       quit`,
		Example: `  # Show the built-in store
  difftable tui

  # Show a fixture and follow edits to it
  difftable tui --fixture store.yaml --watch

  # Log to a file while the terminal is in use
  difftable tui --log-file difftable.log --log-level debug`,
		RunE: runTUI,
	}

	cmd.Flags().Bool("alt-screen", false, "Use the alternate screen buffer")
	cmd.Flags().Bool("no-color", false, "Disable colors")
	cmd.Flags().String("log-file", "", "Write logs to this file")
	cmd.Flags().Uint64("seed", 0, "Seed for random rows (0 picks one)")
	cmd.Flags().Bool("watch", true, "Reload the list when the fixture changes")

	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	// The terminal is busy, so logs go to a file or nowhere.
	logger := slog.New(slog.DiscardHandler)
	if cfg.TUI.LogFile != "" {
		f, err := os.OpenFile(cfg.TUI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if logger, err = config.NewLogger(f, cfg.LogLevel); err != nil {
			return err
		}
	}
	cmdCtx.Logger = logger

	fixture, s, err := cmdCtx.LoadStore()
	if err != nil {
		return err
	}

	return tui.Run(cmd.Context(), tui.Options{
		Title:       fixture.Title,
		Store:       s,
		FixturePath: cfg.Fixture,
		Watch:       cfg.Watch,
		AltScreen:   cfg.TUI.AltScreen,
		NoColor:     cfg.TUI.NoColor,
		DiffOpts:    cmdCtx.DiffOptions(),
		Logger:      logger,
		Input:       cmd.InOrStdin(),
		Output:      cmd.OutOrStdout(),
	})
}
