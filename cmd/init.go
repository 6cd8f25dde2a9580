package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kb-assist/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kbassist configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the LLM provider, SOP document and service address, and writes a .kbassist.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
