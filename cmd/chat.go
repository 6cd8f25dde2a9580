package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kb-assist/internal/askclient"
	"github.com/ziadkadry99/kb-assist/internal/chat"
	"github.com/ziadkadry99/kb-assist/internal/rag"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal chat with the knowledge base",
	Long: `Opens an interactive chat. Questions go to the question-answering
service, or with --local straight to the vector store and LLM. Type
'quit' or 'exit' to leave; ':lang en' or ':lang id' switches the
language selector.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("url", "", "service URL (overrides service_url)")
	chatCmd.Flags().Bool("local", false, "answer in-process instead of calling the service")
	rootCmd.AddCommand(chatCmd)
}

// localAsker answers in-process and reports failures the way the service
// would.
type localAsker struct {
	answerer *rag.Answerer
}

func (l localAsker) Ask(ctx context.Context, question string) (string, error) {
	ans, err := l.answerer.Ask(ctx, question)
	if err != nil {
		return "", &askclient.ServiceError{
			StatusCode: http.StatusInternalServerError,
			Body:       "Error processing question: " + err.Error(),
		}
	}
	return ans.Text, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	url, _ := cmd.Flags().GetString("url")
	local, _ := cmd.Flags().GetBool("local")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var asker chat.Asker
	if local {
		ix, err := loadOrBuildIndex(ctx, cfg)
		if err != nil {
			return err
		}
		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}
		asker = localAsker{answerer: &rag.Answerer{
			Store:       ix.Store,
			Provider:    provider,
			Model:       cfg.Model,
			TopK:        cfg.TopK,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}}
	} else {
		if url == "" {
			url = cfg.ServiceURL
		}
		client := askclient.NewClient(url, askclient.WithTimeout(cfg.RequestTimeout))
		defer client.Close()
		asker = client
	}

	session := chat.NewSession(asker, slog.Default())
	session.Transcript().Subscribe(chat.NewTerminalRenderer(os.Stdout).Observe)

	fmt.Println("Company Knowledge Base Assistant")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Println("Type 'quit' or 'exit' to stop the program")
	fmt.Println()

	prompt := promptui.Prompt{Label: "Question (English/Indonesian)"}
	for {
		input, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			fmt.Println("\nGoodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}

		line := strings.TrimSpace(input)
		switch {
		case isQuit(line):
			fmt.Println("Goodbye!")
			return nil
		case strings.HasPrefix(line, ":lang "):
			lang := chat.Language(strings.TrimSpace(strings.TrimPrefix(line, ":lang ")))
			if !lang.Valid() {
				fmt.Println("Languages: en, id")
				continue
			}
			session.SetLanguage(lang)
			continue
		}

		session.Submit(ctx, line)
	}
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "quit", "exit", "quit()", "exit()":
		return true
	}
	return false
}
