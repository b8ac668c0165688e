package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/isdmx/labhub/config"
	"github.com/isdmx/labhub/hub"
	"github.com/isdmx/labhub/logger"
	"github.com/isdmx/labhub/sandbox"
	"github.com/isdmx/labhub/usercopy"
)

// globalFlags override the loaded configuration.
type globalFlags struct {
	catalog    string
	store      string
	sqlitePath string
	redisURL   string
	logLevel   string
}

// app holds what every command needs. It is built before a command runs
// and torn down after.
type app struct {
	flags globalFlags
	cfg   *config.Config
	log   *zap.Logger
	store usercopy.Store
	hub   *hub.Service
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	a.applyFlags(cfg)

	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return err
	}

	store, err := usercopy.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	frames := sandbox.NewFrameStoreFromConfig(cfg)
	executor := sandbox.NewExecutorFromConfig(log, frames)

	a.cfg = cfg
	a.log = log
	a.store = store
	a.hub = hub.NewFromConfig(cfg, log, store, executor, frames)

	if notice := a.hub.Notice(); notice != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "⚠️ "+notice)
	}
	return nil
}

func (a *app) applyFlags(cfg *config.Config) {
	if a.flags.catalog != "" {
		cfg.Catalog.Source = a.flags.catalog
	}
	if a.flags.store != "" {
		cfg.Store.Backend = a.flags.store
	}
	if a.flags.sqlitePath != "" {
		cfg.Store.SQLitePath = a.flags.sqlitePath
	}
	if a.flags.redisURL != "" {
		cfg.Store.RedisURL = a.flags.redisURL
	}
	if a.flags.logLevel != "" {
		cfg.Logging.Level = a.flags.logLevel
	}
	// Human output goes to stdout; keep logs terse on stderr.
	cfg.Logging.Mode = "development"
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "labctl",
		Short: "Browse, edit and run lab programs",
		Long: `labctl is a terminal client for the lab program hub.
It lists subjects and programs, shows and saves your copy of a program,
and runs JavaScript and HTML/CSS/JS snippets.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.flags.catalog, "catalog", "c", "", "Catalog file or URL (JSON or YAML)")
	flags.StringVar(&a.flags.store, "store", "", "User copy store: memory, redis or sqlite")
	flags.StringVar(&a.flags.sqlitePath, "sqlite-path", "", "Database file for the sqlite store")
	flags.StringVar(&a.flags.redisURL, "redis-url", "", "Connection URL for the redis store")
	flags.StringVar(&a.flags.logLevel, "log-level", "warn", "Log level")

	rootCmd.AddCommand(
		newSubjectsCmd(a),
		newProgramsCmd(a),
		newShowCmd(a),
		newRunCmd(a),
		newSaveCmd(a),
		newSearchCmd(a),
		newNotesCmd(a),
	)
	return rootCmd
}

// Execute runs labctl with the process arguments.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
