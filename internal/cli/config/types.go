// Package config provides configuration management for the difftable CLI.
package config

// DiffConfig holds diff engine options.
type DiffConfig struct {
	// SplitMovedUpdates reports changed items that fell out of order as
	// delete plus insert instead of an in-place update.
	SplitMovedUpdates bool `koanf:"split_moved_updates"`
}

// TUIConfig holds configuration for the terminal list.
type TUIConfig struct {
	AltScreen bool   `koanf:"alt_screen"`
	NoColor   bool   `koanf:"no_color"`
	LogFile   string `koanf:"log_file"`
	Seed      uint64 `koanf:"seed"`
}

// UIConfig holds configuration for the web list server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	Dev           bool   `koanf:"dev"`
	SessionSecret string `koanf:"session_secret"`
}

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool       `koanf:"verbose"`
	LogLevel     string     `koanf:"log_level"`
	OutputFormat string     `koanf:"output"`
	Fixture      string     `koanf:"fixture"`
	Watch        bool       `koanf:"watch"`
	Diff         DiffConfig `koanf:"diff"`
	TUI          TUIConfig  `koanf:"tui"`
	UI           UIConfig   `koanf:"ui"`

	// ConfigDir is the directory of the config file used, if any.
	ConfigDir string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPort          = 8766
	DefaultSessionSecret = "difftable-dev-secret-change-in-production" //nolint:gosec
	EnvPrefix            = "DIFFTABLE_"
)

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
		Watch:        true,
		UI: UIConfig{
			Port:          DefaultPort,
			SessionSecret: DefaultSessionSecret,
		},
	}
}
