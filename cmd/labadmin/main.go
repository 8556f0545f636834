package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labadmin/internal/config"
	"labadmin/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	backendURL string
	verbose    bool
	assumeYes  bool
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// reportedError marks a failure the user has already been shown as a notice.
// main exits non-zero without printing it again.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// newRootCmd builds the command tree. Flags are rebound on every call.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "labadmin",
		Short: "labadmin - admin console for the lab website",
		Long: `labadmin manages the content of the lab website through its REST API.

It edits achievements, contacts, research verticals and the people of each
vertical. Every create, update and delete is written to a local journal.

Run without arguments to start the interactive console.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Sync()
		},
		RunE: runInteractive,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.labadmin/config.yaml)")
	root.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before deleting")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Backend request timeout (overrides config)")

	root.AddCommand(newAchievementsCmd())
	root.AddCommand(newContactsCmd())
	root.AddCommand(newResearchCmd())
	root.AddCommand(newBootstrapCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// setup loads configuration and logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if backendURL != "" {
		c.Backend.BaseURL = backendURL
	}
	if timeout > 0 {
		c.Backend.Timeout = timeout.String()
	}
	// config init must work even when the current file is broken
	if !isConfigCmd(cmd) {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	cfg = c

	switch {
	case verbose && cmd.Root() == cmd:
		// the interactive console owns the terminal, log to the configured file
		lc := c.Logging
		lc.DebugMode = true
		lc.Level = "debug"
		if err := logging.Initialize(lc); err != nil {
			return err
		}
	case verbose:
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		l, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.SetBase(l)
	default:
		if err := logging.Initialize(c.Logging); err != nil {
			return err
		}
	}
	logger = logging.Get(logging.CategoryBoot)
	logger.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("backend", c.Backend.BaseURL),
		zap.Bool("journal", c.Journal.Enabled))
	return nil
}

func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" && c.Parent() != nil && c.Parent().Parent() == nil {
			return true
		}
	}
	return false
}

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var re reportedError
		if !errors.As(err, &re) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
