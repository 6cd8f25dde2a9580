package cmd

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kb-assist/internal/config"
	"github.com/ziadkadry99/kb-assist/internal/llm"
	"github.com/ziadkadry99/kb-assist/internal/rag"
)

var costCmd = &cobra.Command{
	Use:   "cost [document-or-glob]",
	Short: "Estimate API costs for indexing and answering",
	Long: `Performs a dry run that splits the SOP documents, estimates tokens and
calculates the expected API cost of indexing them and of answering a
single question, without making any API calls.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCost,
}

func init() {
	rootCmd.AddCommand(costCmd)
}

// embeddingPricePer1K is the ada-002 price per 1K input tokens.
const embeddingPricePer1K = 0.0001

func runCost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pattern := cfg.DocumentPath
	if len(args) == 1 {
		pattern = args[0]
	}

	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("expanding %q: %w", pattern, err)
	}
	if len(files) == 0 {
		fmt.Println("No documents found to index.")
		return nil
	}

	var chunks, tokens, longest int
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
		for _, c := range rag.SplitDocument(string(data), cfg.ChunkSize, cfg.ChunkOverlap) {
			n := llm.EstimateTokens(c)
			chunks++
			tokens += n
			longest = max(longest, n)
		}
	}

	embedProvider := cfg.EmbeddingProvider
	if embedProvider == "" {
		embedProvider = cfg.Provider
	}
	embedCost := 0.0
	if embedProvider == config.ProviderOpenAI {
		embedCost = float64(tokens) / 1000 * embeddingPricePer1K
	}

	// A question carries top_k chunks of context plus the prompt scaffolding.
	promptTokens := llm.EstimateTokens(rag.BuildPrompt("", nil)) + cfg.TopK*longest
	questionCost := llm.EstimateCost(cfg.Model, promptTokens, cfg.MaxTokens)

	fmt.Println("Cost Estimate")
	fmt.Println("=============")
	fmt.Printf("  Documents:           %d\n", len(files))
	fmt.Printf("  Chunks:              %d\n", chunks)
	fmt.Printf("  Estimated tokens:    %d\n", tokens)
	fmt.Println()
	fmt.Println("  Cost Breakdown:")
	fmt.Printf("    %-20s $%.4f\n", "indexing", embedCost)
	fmt.Printf("    %-20s $%.4f  (up to %d input, %d output tokens)\n", "per question", questionCost, promptTokens, cfg.MaxTokens)
	fmt.Println()
	fmt.Printf("  Provider: %s\n", cfg.Provider)
	fmt.Printf("  Model:    %s\n", cfg.Model)

	return nil
}
