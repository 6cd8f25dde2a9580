package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kb-assist/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Show the SOP chunks closest to a query",
	Long:  `Searches the vector store without calling the LLM and prints the chunks that would be used as context for an answer.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 3, "maximum number of results")
	searchCmd.Flags().String("source", "", "only search chunks of this document")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	limit, _ := cmd.Flags().GetInt("limit")
	source, _ := cmd.Flags().GetString("source")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ix, err := newIndexer(cfg)
	if err != nil {
		return err
	}
	if err := ix.Load(ctx); err != nil {
		return fmt.Errorf("%w\nRun `kbassist index` first to build the index", err)
	}
	if ix.Store.Count() == 0 {
		fmt.Println("Vector store is empty. Run `kbassist index` first.")
		return nil
	}

	var filter *vectordb.SearchFilter
	if source != "" {
		filter = &vectordb.SearchFilter{Source: &source}
	}

	results, err := ix.Store.Search(ctx, args[0], limit, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return printSearchResultsJSON(results)
	}
	fmt.Print(vectordb.FormatResults(results))
	return nil
}

type searchResultJSON struct {
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	Source     string  `json:"source"`
	Chunk      int     `json:"chunk"`
	Content    string  `json:"content"`
}

func printSearchResultsJSON(results []vectordb.SearchResult) error {
	out := make([]searchResultJSON, 0, len(results))
	for i, r := range results {
		out = append(out, searchResultJSON{
			Rank:       i + 1,
			Similarity: float64(r.Similarity),
			Source:     r.Document.Metadata.Source,
			Chunk:      r.Document.Metadata.ChunkIndex,
			Content:    r.Document.Content,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
