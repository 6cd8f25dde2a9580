package config

import "path/filepath"

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".kbassist.yml"

// ModelPreset describes the models to use for a provider.
type ModelPreset struct {
	Model          string
	EmbeddingModel string
}

var modelPresets = map[ProviderType]ModelPreset{
	ProviderOpenAI: {Model: "gpt-3.5-turbo", EmbeddingModel: "text-embedding-ada-002"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-3.5-turbo",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-ada-002",
		DataDir:           "data",
		DocumentPath:      "pertamina_sop.txt",
		ServiceURL:        "http://localhost:8000",
		Port:              8000,
		TopK:              3,
		ChunkSize:         500,
		ChunkOverlap:      100,
		MaxTokens:         500,
		Temperature:       0.3,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// GetPreset returns the model preset for the given provider.
// Returns the OpenAI preset if the provider is not known.
func GetPreset(provider ProviderType) ModelPreset {
	if preset, ok := modelPresets[provider]; ok {
		return preset
	}
	return modelPresets[ProviderOpenAI]
}

// VectorDBDir is the directory the vector store is persisted to.
func (c *Config) VectorDBDir() string {
	return filepath.Join(c.DataDir, "vectordb")
}

// DatabasePath is the SQLite file holding the Q/A log.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "kbassist.db")
}
