package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/kb-assist/internal/llm"
	"github.com/ziadkadry99/kb-assist/internal/vectordb"
)

const (
	DefaultTopK        = 3
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.3
)

const systemPrompt = "You are a helpful assistant that answers questions based on provided context."

const promptTemplate = `You are a helpful assistant for company employees. Answer the question based ONLY on the provided context.
If the information is not in the context, say that you don't have enough information.
Provide your answer in both English and Indonesian.

Context:
%s

Question: %s

Answer:`

// Answer is the result of one question.
type Answer struct {
	Text       string
	Sources    []string
	Completion *llm.CompletionResponse
}

// Answerer retrieves context for a question and asks the LLM for a
// bilingual answer.
type Answerer struct {
	Store       vectordb.VectorStore
	Provider    llm.Provider
	Model       string
	TopK        int
	MaxTokens   int
	Temperature float64
}

// Ask answers question from the top-k chunks of the store.
func (a *Answerer) Ask(ctx context.Context, question string) (*Answer, error) {
	if a.Store.Count() == 0 {
		return nil, ErrEmptyIndex
	}

	topK := a.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	results, err := a.Store.Search(ctx, question, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	resp, err := a.Provider.Complete(ctx, llm.CompletionRequest{
		Model: a.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: BuildPrompt(question, vectordb.Contents(results))},
		},
		MaxTokens:   maxTokens,
		Temperature: a.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	sources := make([]string, len(results))
	for i, r := range results {
		sources[i] = r.Document.ID
	}
	return &Answer{
		Text:       strings.TrimSpace(resp.Content),
		Sources:    sources,
		Completion: resp,
	}, nil
}

// BuildPrompt numbers the context chunks and wraps them with the question.
func BuildPrompt(question string, chunks []string) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Context %d]: %s", i+1, c)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(parts, "\n\n"), question)
}
