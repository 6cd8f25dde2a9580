package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kb-assist/internal/db"
	"github.com/ziadkadry99/kb-assist/internal/qalog"
	"github.com/ziadkadry99/kb-assist/internal/rag"
	"github.com/ziadkadry99/kb-assist/internal/server"
	"github.com/ziadkadry99/kb-assist/internal/widget"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the question-answering service and chat widget",
	Long: `Starts the HTTP service exposing POST /ask, the Q/A log API and the
browser chat widget at /ui. The vector store is loaded from the data
directory, or built from document_path on first start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ix, err := loadOrBuildIndex(ctx, cfg)
		if err != nil {
			return err
		}

		llmProvider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		answerer := &rag.Answerer{
			Store:       ix.Store,
			Provider:    llmProvider,
			Model:       cfg.Model,
			TopK:        cfg.TopK,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, answerer, qalog.NewStore(database, slog.Default()), slog.Default())

		widget.ForService(cfg.ServiceURL, cfg.RequestTimeout, slog.Default()).RegisterRoutes(srv.Router())

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "kbassist %s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DatabasePath())
		fmt.Fprintf(os.Stderr, "  Chunks indexed: %d\n", ix.Store.Count())
		fmt.Fprintf(os.Stderr, "  Chat widget: http://localhost:%d/ui\n", cfg.Port)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
