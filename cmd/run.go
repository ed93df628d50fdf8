package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/easypractice/internal/app"
	"github.com/abhisek/easypractice/internal/logger"
	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/screen"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	// Logging to stderr would draw over the alt screen.
	tuiLog := log
	if cfg.Log.File == "" {
		opts := cfg.Log
		opts.File = filepath.Join(filepath.Dir(cfg.DB), "easypractice.log")
		l, err := logger.New(opts)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer l.Sync()
		tuiLog = l
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	env := screen.Env{
		Catalog:      st.Catalog(),
		Stats:        st.Stats(),
		Sessions:     st.Sessions(),
		Builder:      queue.NewBuilder(st.Catalog(), st.Stats(), nil),
		Selector:     newSelector(st),
		Language:     cfg.Language,
		Coverage:     cfg.Coverage,
		HistoryLimit: cfg.HistoryLimit,
		RecentLimit:  cfg.RecentLimit,
	}
	return app.Run(app.Options{Env: env, Logger: tuiLog})
}
