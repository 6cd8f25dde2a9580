// Package qalog records every answered question for operators.
package qalog

import "time"

// Entry is a single answered question.
type Entry struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListFilter controls which entries List returns.
type ListFilter struct {
	Since  *time.Time
	Limit  int
	Offset int
}
