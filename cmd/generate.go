package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/easypractice/internal/authoring"
	"github.com/abhisek/easypractice/internal/catalog"
	"github.com/abhisek/easypractice/internal/llm"
	"github.com/abhisek/easypractice/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft a new item set with an LLM",
	Long: `Ask the configured LLM provider for an item set on a topic. The draft is
validated like an imported file and written as JSON to --out (or stdout),
or imported straight away with --import.

The provider is taken from llm.provider in the config file, or from the
first of ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY and
OPENROUTER_API_KEY that is set.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("topic", "", "What the items should drill (required)")
	f.String("key", "", "Set key (derived from the topic when empty)")
	f.Int("count", authoring.DefaultCount, "Number of items to request")
	f.String("difficulty", "", "easy, medium or hard")
	f.String("out", "", "Write the draft to this file instead of stdout")
	f.Bool("import", false, "Import the draft into the database")
	_ = generateCmd.MarkFlagRequired("topic")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	key, _ := cmd.Flags().GetString("key")
	count, _ := cmd.Flags().GetInt("count")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	out, _ := cmd.Flags().GetString("out")
	doImport, _ := cmd.Flags().GetBool("import")

	llmCfg, ok := cfg.LLMProvider()
	if !ok {
		return errors.New("no LLM provider configured: set llm.provider or an API key variable")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout())
	defer cancel()

	provider, err := llm.NewProvider(ctx, llmCfg, log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Generating %d items on %q with %s...\n", count, topic, provider.ModelID())
	payload, err := authoring.New(provider, log).Generate(ctx, authoring.Request{
		Topic:      topic,
		Key:        key,
		Count:      count,
		Language:   cfg.Language,
		Difficulty: difficulty,
	})
	if err != nil {
		return err
	}

	if doImport {
		return importGenerated(cmd, payload)
	}

	data, err := payload.Marshal()
	if err != nil {
		return err
	}
	if out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d items to %s\n", len(payload.Sets[0].Items), out)
	return nil
}

func importGenerated(cmd *cobra.Command, p *catalog.Payload) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := catalog.NewImporter(st.Catalog(), log).Import(cmd.Context(), p,
		catalog.ImportOptions{Source: store.SourceUser, Force: true})
	if err != nil {
		return err
	}
	printImport(cmd, "generated", res)
	var failed []error
	for key, err := range res.Failed {
		failed = append(failed, fmt.Errorf("set %s: %w", key, err))
	}
	return errors.Join(failed...)
}
