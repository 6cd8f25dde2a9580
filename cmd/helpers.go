package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ziadkadry99/kb-assist/internal/config"
	"github.com/ziadkadry99/kb-assist/internal/embeddings"
	"github.com/ziadkadry99/kb-assist/internal/llm"
	"github.com/ziadkadry99/kb-assist/internal/logging"
	"github.com/ziadkadry99/kb-assist/internal/progress"
	"github.com/ziadkadry99/kb-assist/internal/rag"
	"github.com/ziadkadry99/kb-assist/internal/vectordb"
)

// ollamaEmbeddingDims matches nomic-embed-text.
const ollamaEmbeddingDims = 768

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider).EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model), os.Getenv("OPENAI_BASE_URL")), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, ollamaEmbeddingDims, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.RateLimitRPM)
}

// loadConfig loads and validates the config, then installs the logger it
// describes. Logs go to stderr so command output stays clean.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `kbassist init` to create a config file", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	if _, err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newIndexer creates the vector store and an indexer around it.
func newIndexer(cfg *config.Config) (*rag.Indexer, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	return &rag.Indexer{
		Store:        store,
		Dir:          cfg.VectorDBDir(),
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Reporter:     progress.NewReporter(),
		Logger:       slog.Default(),
	}, nil
}

// loadOrBuildIndex loads the persisted store, building it from the
// configured documents when none exists yet.
func loadOrBuildIndex(ctx context.Context, cfg *config.Config) (*rag.Indexer, error) {
	ix, err := newIndexer(cfg)
	if err != nil {
		return nil, err
	}
	err = ix.Load(ctx)
	if err == nil {
		return ix, nil
	}
	slog.Warn("no usable vector store, building from documents", "error", err, "documents", cfg.DocumentPath)
	if _, err := ix.Build(ctx, cfg.DocumentPath); err != nil {
		return nil, fmt.Errorf("building vector store: %w", err)
	}
	return ix, nil
}
