package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/easypractice/internal/catalog"
	"github.com/abhisek/easypractice/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import item sets from JSON or YAML files",
	Long: `Import one or more catalog files. A set whose key already exists is only
replaced when the file carries a newer version, unless --force is given.
Statistics of unchanged items survive a replacement.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		im := catalog.NewImporter(st.Catalog(), log)
		opts := catalog.ImportOptions{Source: store.SourceUser, Force: force}

		var failed []error
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				failed = append(failed, fmt.Errorf("read %s: %w", path, err))
				continue
			}
			res, err := im.ImportBytes(cmd.Context(), data, filepath.Base(path), opts)
			if err != nil {
				failed = append(failed, err)
				continue
			}
			printImport(cmd, path, res)
			for key, err := range res.Failed {
				failed = append(failed, fmt.Errorf("%s: set %s: %w", path, key, err))
			}
		}
		return errors.Join(failed...)
	},
}

func printImport(cmd *cobra.Command, path string, res *catalog.ImportResult) {
	out := cmd.OutOrStdout()
	for _, key := range res.Imported {
		fmt.Fprintf(out, "%s: imported %s\n", path, key)
	}
	for _, key := range res.Skipped {
		fmt.Fprintf(out, "%s: skipped %s (stored version is the same or newer)\n", path, key)
	}
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Install or update the default item sets",
	Long: `Compare the default catalog manifest with the stored sets, import what is
new or newer, and remove default sets the manifest no longer lists. The
manifest is read from catalog.manifest_url when set, otherwise from the
catalogs built into the binary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fetch := catalog.Defaults()
		if cfg.ManifestURL != "" {
			fetch = catalog.HTTPFetcher{BaseURL: cfg.ManifestURL}
		}

		manifest, err := catalog.LoadManifest(cmd.Context(), fetch)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := catalog.NewSyncer(st.Catalog(), fetch, log).Sync(cmd.Context(), manifest)
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "imported: %s\n", listOrNone(res.Imported))
		fmt.Fprintf(out, "up to date: %s\n", listOrNone(res.UpToDate))
		fmt.Fprintf(out, "removed: %s\n", listOrNone(res.Pruned))
		if len(res.UserOwned) > 0 {
			fmt.Fprintf(out, "kept user sets: %s\n", listOrNone(res.UserOwned))
		}
		if len(res.Failed) > 0 {
			for key, err := range res.Failed {
				fmt.Fprintf(out, "failed: %s: %v\n", key, err)
			}
			return fmt.Errorf("%d set(s) failed to sync", len(res.Failed))
		}
		return nil
	},
}

func listOrNone(keys []string) string {
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ", ")
}

func init() {
	importCmd.Flags().Bool("force", false, "Replace sets even when the stored version is the same or newer")
}
