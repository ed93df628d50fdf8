package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/easypractice/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write every set, attempt, statistic and session to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		b, err := st.Export(cmd.Context())
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return fmt.Errorf("encode backup: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		log.Info("backup exported", "file", args[0], "sets", len(b.ItemSets), "attempts", len(b.Attempts))
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sets, %d items, %d attempts, %d sessions to %s\n",
			len(b.ItemSets), len(b.Items), len(b.Attempts), len(b.Sessions), args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Replace the database contents with a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		var b store.Backup
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}

		if !yes && !confirm(cmd, "Restoring replaces all current data. Continue? [y/N] ") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Restore(cmd.Context(), &b); err != nil {
			return err
		}
		log.Info("backup restored", "file", args[0], "version", b.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d sets and %d attempts from %s\n",
			len(b.ItemSets), len(b.Attempts), args[0])
		return nil
	},
}

func init() {
	restoreCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
