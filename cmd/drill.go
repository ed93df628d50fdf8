package cmd

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/easypractice/internal/answer"
	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/screens/summary"
	"github.com/abhisek/easypractice/internal/session"
	"github.com/abhisek/easypractice/internal/store"
)

var drillCmd = &cobra.Command{
	Use:   "drill KEY",
	Short: "Run a practice session in plain text, without the TUI",
	Long: `Run one queue-driven session for a set key on the console. Type the answer
and press Enter. An empty line asks again, and :q ends the session early.

Useful over ssh, in scripts, or for checking a freshly imported set.`,
	Args: cobra.ExactArgs(1),
	RunE: runDrill,
}

func init() {
	drillCmd.Flags().Int("coverage", 0, "Percent of the set to practice: 30, 50, 80 or 100 (default from config)")
}

func runDrill(cmd *cobra.Command, args []string) error {
	key := args[0]
	coverage := cfg.Coverage
	if cmd.Flags().Changed("coverage") {
		coverage, _ = cmd.Flags().GetInt("coverage")
	}
	if !slices.Contains(queue.CoverageOptions, coverage) {
		return fmt.Errorf("--coverage must be one of %v, got %d", queue.CoverageOptions, coverage)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	builder := queue.NewBuilder(st.Catalog(), st.Stats(), nil)
	ctrl := session.NewController(builder, st.Catalog(), st.Stats(), st.Sessions())

	ok, err := ctrl.Start(ctx, key, coverage)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "No items to practice for %q. Is the set enabled?\n", key)
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprintf(out, "Set: %s (%d%% coverage, %d items)\n\n", key, coverage, ctrl.Progress().Total)

	for ctrl.Phase() == session.PhaseActive {
		item := ctrl.Current()
		p := ctrl.Progress()

		fmt.Fprintf(out, "── Item %d/%d ──\n", p.Position+1, p.Total)
		fmt.Fprintln(out, item.Prompt)
		fmt.Fprint(out, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		given := strings.TrimSpace(scanner.Text())
		if given == "" {
			fmt.Fprintln(out, "(no answer)")
			fmt.Fprintln(out)
			continue
		}
		if given == ":q" {
			break
		}

		result := store.ResultFail
		if answer.Check(item.Answer, given) {
			result = store.ResultPass
			fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(out, "\033[31m✗ Wrong.\033[0m Answer: %s\n", item.Answer)
		}
		if err := ctrl.Submit(ctx, result); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	sum := ctrl.Summary()
	if ctrl.Phase() == session.PhaseActive {
		if sum, err = ctrl.EndEarly(ctx); err != nil {
			return err
		}
	}
	if sum == nil {
		fmt.Fprintln(out, "Session ended before any answer. Nothing saved.")
		return nil
	}

	fmt.Fprintf(out, "── Summary: %d/%d passed, %d%% accuracy, %s ──\n",
		sum.Pass, sum.Completed, sum.Accuracy, summary.FormatDuration(int(sum.Duration.Seconds())))
	return nil
}
