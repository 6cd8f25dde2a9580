package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kb-assist/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kbassist",
	Short: "Bilingual knowledge base assistant for company SOPs",
	Long: `kbassist answers employee questions about standard operating procedures.
It indexes the SOP document into a vector store, serves a question-answering
API with a browser chat widget, and renders answers in English and
Bahasa Indonesia.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
