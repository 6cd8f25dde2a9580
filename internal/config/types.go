package config

import "time"

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level kbassist configuration, corresponding to .kbassist.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	// DataDir holds the persisted vector store and the Q/A log database.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
	// DocumentPath is the SOP document, or a doublestar glob of documents.
	DocumentPath string `yaml:"document_path" koanf:"document_path"`

	// ServiceURL is where the widget and the CLI send questions.
	ServiceURL      string `yaml:"service_url" koanf:"service_url"`
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`

	TopK         int     `yaml:"top_k" koanf:"top_k"`
	ChunkSize    int     `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	MaxTokens    int     `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature  float64 `yaml:"temperature" koanf:"temperature"`
	RateLimitRPM int     `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`

	// RequestTimeout bounds each call to the service. Zero means no limit.
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`

	LogLevel  string `yaml:"log_level" koanf:"log_level"`
	LogFormat string `yaml:"log_format" koanf:"log_format"`
}
