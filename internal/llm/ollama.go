package llm

import (
	"context"
	"fmt"
	"strings"

	"resty.dev/v3"
)

// DefaultOllamaHost is used when OLLAMA_HOST is not set.
const DefaultOllamaHost = "http://localhost:11434"

// OllamaProvider implements Provider against a local Ollama server.
type OllamaProvider struct {
	http  *resty.Client
	model string
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultOllamaHost
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetHeader("Content-Type", "application/json")
	return &OllamaProvider{http: client, model: model}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message         ollamaMessage `json:"message"`
	Model           string        `json:"model"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage{Role: string(msg.Role), Content: msg.Content})
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(ollamaChatRequest{
			Model:    model,
			Messages: messages,
			Options: ollamaOptions{
				Temperature: req.Temperature,
				NumPredict:  req.MaxTokens,
			},
		}).
		SetResult(&ollamaChatResponse{}).
		Post("/api/chat")
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), resp.String())
	}

	out, ok := resp.Result().(*ollamaChatResponse)
	if !ok || out == nil {
		return nil, fmt.Errorf("ollama returned an unreadable response: %s", resp.String())
	}

	return &CompletionResponse{
		Content:      out.Message.Content,
		InputTokens:  out.PromptEvalCount,
		OutputTokens: out.EvalCount,
		Model:        out.Model,
		FinishReason: out.DoneReason,
	}, nil
}
