package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the items you struggle with most",
	Long: `List items with at least one failure, highest priority first. Priority
grows with the failure rate and with how often an item has been attempted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		key, _ := cmd.Flags().GetString("key")
		if limit <= 0 {
			return fmt.Errorf("--limit must be positive, got %d", limit)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		items, err := st.Stats().Struggled(cmd.Context(), limit, key)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No struggled items. Keep practicing!")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SET\tPROMPT\tANSWER\tATTEMPTS\tFAILED\tPRIORITY")
		for _, s := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f%%\t%.0f\n",
				s.ItemSetKey, truncate(s.Item.Prompt, 32), truncate(s.Item.Answer, 24),
				s.Stats.TotalAttempts, s.Stats.FailureRate*100, s.Stats.Priority)
		}
		return w.Flush()
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	statsCmd.Flags().Int("limit", 20, "Maximum number of items to list")
	statsCmd.Flags().String("key", "", "Only list items of this set key")
}
