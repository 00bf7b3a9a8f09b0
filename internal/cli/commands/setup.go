package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/difftable/internal/cli/config"
	"github.com/leapstack-labs/difftable/internal/cli/output"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// DiffOptions returns the diff options selected by the configuration.
func (c *CommandContext) DiffOptions() []diff.Option {
	return []diff.Option{diff.SplitMovedUpdates(c.Cfg.Diff.SplitMovedUpdates)}
}

// LoadStore loads the configured fixture into a new store.
func (c *CommandContext) LoadStore(opts ...store.Option) (store.Fixture, *store.Store, error) {
	f, err := store.LoadFixture(c.Cfg.Fixture)
	if err != nil {
		return store.Fixture{}, nil, err
	}

	opts = append([]store.Option{store.WithLogger(c.Logger)}, opts...)
	if c.Cfg.TUI.Seed != 0 {
		opts = append(opts, store.WithSeed(c.Cfg.TUI.Seed))
	}
	opts = append(opts, store.WithSectionOptions(section.WithDiffOptions(c.DiffOptions()...)))

	s, err := store.New(f.Items, opts...)
	if err != nil {
		return store.Fixture{}, nil, fmt.Errorf("loading %s: %w", fixtureName(c.Cfg.Fixture), err)
	}
	return f, s, nil
}

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func fixtureName(path string) string {
	if path == "" {
		return "built-in fixture"
	}
	return path
}
