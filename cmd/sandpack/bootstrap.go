package main

import (
	"fmt"
	"os"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/config"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/history"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logger = logging.Get("cli")

// initializeLogging loads the configuration and sets up logging for every
// command. It is the root PersistentPreRunE hook.
func initializeLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	return logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel(cfg.Logging.Level),
		Console:      os.Stderr,
	})
}

// consoleLevel picks the console level from the verbosity flags.
func consoleLevel(configured string) string {
	switch {
	case getVerbose():
		return "debug"
	case getQuiet():
		return "error"
	case configured == "":
		return config.DefaultLogLevel
	default:
		return configured
	}
}

// openHistory opens the run history unless it is disabled. A history that
// cannot be opened, for example because another process holds it, is
// logged and skipped.
func openHistory(cfg *config.Config) *history.Store {
	if !cfg.History.Enabled || viper.GetBool("no_history") {
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history unavailable", "path", cfg.History.Path, "error", err)
		return nil
	}
	return store
}

// requireHistory opens the run history for the history commands.
func requireHistory(cfg *config.Config) (*history.Store, error) {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}
