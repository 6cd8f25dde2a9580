package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [document-or-glob]",
	Short: "Build the vector store from the SOP document",
	Long: `Splits the SOP document into overlapping chunks, embeds them and
persists the vector store under the data directory. Defaults to the
configured document_path; a doublestar glob indexes several documents.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pattern := cfg.DocumentPath
		if len(args) == 1 {
			pattern = args[0]
		}

		ix, err := newIndexer(cfg)
		if err != nil {
			return err
		}
		// Keep chunks of documents not matched by this run.
		_ = ix.Load(cmd.Context())

		stats, err := ix.Build(cmd.Context(), pattern)
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d document(s) into %d chunks\n", stats.Files, stats.Chunks)
		fmt.Printf("Vector store saved to %s\n", ix.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
