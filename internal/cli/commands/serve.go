package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/difftable/internal/cli/config"
	"github.com/leapstack-labs/difftable/internal/ui"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Open bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store list in the browser",
		Long: `Start a local web server showing the store list.

Every change is diffed and streamed to connected pages as keyed row
patches over server-sent events. The selected row is kept per browser.`,
		Example: `  # Serve on the default port
  difftable serve

  # Serve a fixture on a custom port and follow edits to it
  difftable serve --fixture store.yaml --port 3000

  # Reload connected pages whenever the list is reloaded
  difftable serve --dev`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultPort))
	cmd.Flags().Bool("watch", true, "Reload the list when the fixture changes")
	cmd.Flags().Bool("dev", false, "Enable the dev reload endpoint")
	cmd.Flags().String("session-secret", "", "Secret for session cookies")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the page in a browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	fixture, s, err := cmdCtx.LoadStore()
	if err != nil {
		return err
	}

	server, err := ui.NewServer(ui.Config{
		Title:         fixture.Title,
		Store:         s,
		Port:          cfg.UI.Port,
		Watch:         cfg.Watch,
		Dev:           cfg.UI.Dev,
		SessionSecret: cfg.UI.SessionSecret,
		Logger:        cmdCtx.Logger,
		FixturePath:   cfg.Fixture,
		DiffOpts:      cmdCtx.DiffOptions(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.UI.Port)
	if opts.Open {
		go openBrowser(url)
	}

	r.Printf("Serving %s on %s\n", fixture.Title, url)
	r.Println(r.Muted("Press Ctrl+C to stop"))

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
