package cmd

import (
	"encoding/json"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kb-assist/internal/askclient"
	"github.com/ziadkadry99/kb-assist/internal/bilingual"
	"github.com/ziadkadry99/kb-assist/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the question-answering service a single question",
	Long:  `Posts the question to the service's /ask endpoint and prints the answer, split into its English and Indonesian parts.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the segmented answer as JSON")
	askCmd.Flags().String("url", "", "service URL (overrides service_url)")
	rootCmd.AddCommand(askCmd)
}

type askResultJSON struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	English    string  `json:"english"`
	Indonesian *string `json:"indonesian,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	url, _ := cmd.Flags().GetString("url")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if url == "" {
		url = cfg.ServiceURL
	}

	client := askclient.NewClient(url, askclient.WithTimeout(cfg.RequestTimeout))
	defer client.Close()

	answer, err := client.Ask(cmd.Context(), args[0])
	if err != nil {
		fallback := chat.NetworkErrorText
		if askclient.IsServiceError(err) {
			fallback = chat.ServiceErrorText
		}
		color.New(color.FgRed).Fprintln(os.Stderr, fallback)
		return err
	}

	if jsonOutput {
		seg := bilingual.Segment(answer)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(askResultJSON{
			Question:   args[0],
			Answer:     answer,
			English:    seg.Primary,
			Indonesian: seg.Secondary,
		})
	}

	chat.NewTerminalRenderer(os.Stdout).Observe(chat.Event{
		Kind:    chat.EventAdded,
		Message: chat.BotAnswer(answer),
	})
	return nil
}
