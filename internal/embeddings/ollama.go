package embeddings

import (
	"context"
	"fmt"
	"strings"

	"resty.dev/v3"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaEmbedder generates embeddings using a local Ollama instance.
type OllamaEmbedder struct {
	http       *resty.Client
	model      string
	dimensions int
}

// NewOllamaEmbedder creates a new Ollama embedder.
// model is the Ollama model name (e.g. "nomic-embed-text").
// baseURL defaults to http://localhost:11434 if empty.
func NewOllamaEmbedder(model string, dimensions int, baseURL string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetHeader("Content-Type", "application/json")
	return &OllamaEmbedder{http: client, model: model, dimensions: dimensions}
}

func (e *OllamaEmbedder) Name() string {
	return "ollama/" + e.model
}

func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed sends all texts in one /api/embed call.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.http.R().
		SetContext(ctx).
		SetBody(ollamaEmbedRequest{Model: e.model, Input: texts}).
		SetResult(&ollamaEmbedResponse{}).
		Post("/api/embed")
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), resp.String())
	}

	out, ok := resp.Result().(*ollamaEmbedResponse)
	if !ok || out == nil {
		return nil, fmt.Errorf("ollama returned an unreadable response: %s", resp.String())
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings, expected %d", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}
