package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sidekick/internal/assistant"
	"sidekick/internal/config"
	"sidekick/internal/engine"
	"sidekick/internal/logging"
	"sidekick/internal/store"
	"sidekick/internal/suggest"
	"sidekick/internal/tui"
)

const version = "0.1.0"

var (
	flagConfig   string
	flagStore    string
	flagLogLevel string
)

func main() {
	root := &cobra.Command{
		Use:     "sidekick",
		Short:   "Sidekick - a conversational coding assistant for your terminal",
		Long:    "Sidekick is a chat TUI for working on a codebase.\n\nType @ to mention files, / to pick a command. Sessions persist across runs;\nuse Ctrl+O inside the TUI or the 'sessions' subcommand to manage them.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	root.Flags().StringVar(&flagStore, "store", "", "session store backend: sqlite|file")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored sessions",
	}
	sessionsCmd.PersistentFlags().StringVar(&flagStore, "store", "", "session store backend: sqlite|file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, closer, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			sessions, err := st.List()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("no sessions")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%s  %-48s  %s\n", s.ID, engine.DisplayTitle(s), s.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, closer, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()
			if err := st.ClearAll(); err != nil {
				return err
			}
			fmt.Println("all sessions deleted")
			return nil
		},
	}

	sessionsCmd.AddCommand(listCmd, clearCmd)
	root.AddCommand(sessionsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	applyOverrides(&cfg)
	return cfg, nil
}

// applyOverrides layers flags and environment on top of the config file.
// Flags win over environment, environment over file.
func applyOverrides(cfg *config.Config) {
	if env := os.Getenv("SIDEKICK_STORE"); env != "" {
		cfg.Store = env
	}
	if env := os.Getenv("SIDEKICK_LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}
	if flagStore != "" {
		cfg.Store = flagStore
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
}

func openStore(cfg config.Config) (engine.SessionStore, io.Closer, error) {
	root := cfg.StorageRoot
	if root == "" {
		root = store.DefaultRoot()
	}
	switch cfg.Store {
	case "file":
		return store.NewFileStore(root), nopCloser{}, nil
	case "sqlite", "":
		s, err := store.NewSQLiteStore(root)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, logClose, err := logging.Open(cfg.LogPath, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer logClose.Close()

	st, stClose, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer stClose.Close()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	files := suggest.New(wd)
	channel := assistant.NewScripted()

	ctrl := engine.New(st, files, tui.EditorOpener{Log: logger}, logger)
	ctrl.SetDebounce(time.Duration(cfg.DebounceMS) * time.Millisecond)
	ctrl.SetSettings(cfg.Settings)
	if err := ctrl.Bootstrap(); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	logger.Info("starting", "version", version, "store", cfg.Store, "workspace", wd)

	root := cfg.StorageRoot
	if root == "" {
		root = store.DefaultRoot()
	}
	historyPath := filepath.Join(root, "prompt_history.json")

	p := tea.NewProgram(tui.NewMainModel(ctrl, channel, files, historyPath, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	ctrl.Persist()
	return nil
}
