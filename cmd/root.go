package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/easypractice/internal/config"
	"github.com/abhisek/easypractice/internal/logger"
	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/store"
)

var (
	v   = config.New()
	cfg *config.Config
	log = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "easypractice",
	Short: "Adaptive practice drills in the terminal",
	Long: `easypractice drills prompt/answer item sets and keeps per-item statistics,
so the items you miss most come back first.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { log.Sync() },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/easypractice/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides EASYPRACTICE_DB env var)")
	pf.String("lang", "", "Display language for set names (en, zh)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Write logs to this file instead of stderr")
	pf.String("log-mode", "", "Log encoding: development or production")

	rootCmd.AddCommand(
		importCmd,
		syncCmd,
		setsCmd,
		statsCmd,
		historyCmd,
		resetCmd,
		exportCmd,
		restoreCmd,
		generateCmd,
		drillCmd,
		versionCmd,
	)
}

// setup loads configuration and the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	file, _ := cmd.Flags().GetString("config")
	c, err := config.Load(v, file)
	if err != nil {
		return err
	}
	cfg = c

	l, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = l
	log.Debug("config loaded", "file", cfg.File, "db", cfg.DB)
	return nil
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	st, err := store.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "path", cfg.DB)
	return st, nil
}

// newSelector builds a selector honouring the configured pool size.
func newSelector(st *store.Store) *queue.Selector {
	sel := queue.NewSelector(st.Catalog(), st.Stats(), nil)
	sel.PoolSize = cfg.PoolSize
	return sel
}
