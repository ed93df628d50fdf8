package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete practice statistics",
	Long: `Delete attempts and statistics. With --key only the items of that set are
reset; otherwise every statistic and session record is removed. Item sets
themselves are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		yes, _ := cmd.Flags().GetBool("yes")

		what := "ALL statistics and session history"
		if key != "" {
			what = fmt.Sprintf("statistics for %q", key)
		}
		if !yes && !confirm(cmd, fmt.Sprintf("Delete %s? [y/N] ", what)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if key != "" {
			if _, err := setsForKey(ctx, st.Catalog(), key); err != nil {
				return err
			}
			if err := st.Stats().ResetForKey(ctx, key); err != nil {
				return err
			}
		} else {
			if err := st.Stats().ResetAll(ctx); err != nil {
				return err
			}
			if err := st.Sessions().Clear(ctx); err != nil {
				return err
			}
		}
		log.Info("statistics reset", "key", key)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", what)
		return nil
	},
}

// confirm reads a y/yes answer from the command's input.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	resetCmd.Flags().String("key", "", "Only reset items of this set key")
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
