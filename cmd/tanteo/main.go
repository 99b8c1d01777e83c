// Package main provides the CLI entrypoint for tanteo.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tanteo/internal/config"
	"github.com/verte-zerg/tanteo/internal/history"
	"github.com/verte-zerg/tanteo/internal/model"
	"github.com/verte-zerg/tanteo/internal/tui"
)

const defaultLogLevel = "info"

var (
	configPath  string
	backendName string
	dbPath      string
	redisURL    string
	logLevel    string
	logFile     string

	historyWindow   time.Duration
	historyDetailed bool

	statsLast  int
	clearStats bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tanteo",
		Short:         "Truco scorekeeper for two teams",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runBoardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.StringVar(&backendName, "backend", config.BackendSQLite, "storage backend (sqlite or redis)")
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	flags.StringVar(&redisURL, "redis-url", "", "Redis URL for the redis backend")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error, off)")
	flags.StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path")
	rootCmd.Flags().DurationVar(&historyWindow, "window", history.DefaultWindow, "history grouping window")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newRematchCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newTargetCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runBoardCmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the board needs a terminal; use the subcommands instead (tanteo --help)")
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	board := tui.NewModel(cmd.Context(), a.engine, a.recorder, a.window, a.log)
	program := tea.NewProgram(board, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applySecondsConfig(cmd *cobra.Command, name string, target *time.Duration, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = time.Duration(*value) * time.Second
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tanteo configuration
# Uncomment a value to enable it. CLI flags override config values.

[match]
# target = %d             # Points needed to win
# team-a = %q       # Default name of the first team
# team-b = %q          # Default name of the second team

[history]
# window = %d             # Seconds between plays grouped together

[storage]
# backend = %q       # "sqlite" or "redis"
# path = %q
# redis-url = "redis://localhost:6379/0"

[log]
# level = %q          # debug, info, warn, error or off
# file = %q
`,
		model.DefaultTarget,
		model.DefaultTeamNames[0],
		model.DefaultTeamNames[1],
		int(history.DefaultWindow/time.Second),
		config.BackendSQLite,
		config.DefaultDBPath(),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
