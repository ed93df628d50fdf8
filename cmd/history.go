package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/easypractice/internal/config"
	"github.com/abhisek/easypractice/internal/screens/summary"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent practice sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		limit := cfg.HistoryLimit
		if cmd.Flags().Changed("limit") {
			limit, _ = cmd.Flags().GetInt("limit")
		}
		if !slices.Contains(config.HistoryLimits, limit) {
			return fmt.Errorf("--limit must be one of %v, got %d", config.HistoryLimits, limit)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.Sessions().History(cmd.Context(), key, limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tSET\tITEMS\tPASSED\tFAILED\tACCURACY\tDURATION")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d%%\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04"), r.ItemSetKey,
				r.TotalItems, r.PassCount, r.FailCount, r.Accuracy,
				summary.FormatDuration(int(r.Duration.Seconds())))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().String("key", "", "Only show sessions of this set key")
	historyCmd.Flags().Int("limit", 10, "Number of sessions: 10, 20, 30, 40 or 50")
}
