package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/easypractice/internal/catalog"
	"github.com/abhisek/easypractice/internal/store"
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List and manage item sets",
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every item set, enabled or not",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		sets, err := st.Catalog().ItemSets(ctx)
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No item sets. Run `easypractice sync` to install the defaults.")
			return nil
		}
		catalog.SortByName(sets, cfg.Language)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tVERSION\tITEMS\tSOURCE\tENABLED")
		for _, s := range sets {
			items, err := st.Catalog().ItemsForSet(ctx, s.ID)
			if err != nil {
				return err
			}
			enabled := "yes"
			if !s.Enabled {
				enabled = "no"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				s.Key, s.Name.Resolve(cfg.Language), s.Version, len(items), s.Source, enabled)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d sets\n", len(sets))
		return nil
	},
}

var setsEnableCmd = &cobra.Command{
	Use:   "enable KEY...",
	Short: "Enable sets so their items are practiced",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleSets(cmd, args, true)
	},
}

var setsDisableCmd = &cobra.Command{
	Use:   "disable KEY...",
	Short: "Disable sets without deleting their statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleSets(cmd, args, false)
	},
}

var setsDeleteCmd = &cobra.Command{
	Use:   "delete KEY...",
	Short: "Delete sets with their items, attempts and statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		for _, key := range args {
			matched, err := setsForKey(cmd.Context(), st.Catalog(), key)
			if err != nil {
				return err
			}
			for _, s := range matched {
				if err := st.Catalog().DeleteSet(cmd.Context(), s.ID); err != nil {
					return fmt.Errorf("delete %s: %w", key, err)
				}
			}
			log.Info("item set deleted", "key", key)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
		}
		return nil
	},
}

func toggleSets(cmd *cobra.Command, keys []string, enabled bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	verb := "disabled"
	if enabled {
		verb = "enabled"
	}
	for _, key := range keys {
		matched, err := setsForKey(cmd.Context(), st.Catalog(), key)
		if err != nil {
			return err
		}
		for _, s := range matched {
			if err := st.Catalog().SetEnabled(cmd.Context(), s.ID, enabled); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, key)
	}
	return nil
}

// setsForKey returns the sets stored under key, or a NotFoundError.
func setsForKey(ctx context.Context, repo store.CatalogRepo, key string) ([]store.ItemSet, error) {
	all, err := repo.ItemSets(ctx)
	if err != nil {
		return nil, err
	}
	var out []store.ItemSet
	for _, s := range all {
		if strings.EqualFold(s.Key, key) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, &store.NotFoundError{Kind: "item set", ID: key}
	}
	return out, nil
}

func init() {
	setsCmd.AddCommand(setsListCmd, setsEnableCmd, setsDisableCmd, setsDeleteCmd)
}
