// Package askclient calls the question-answering service's /ask endpoint.
package askclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"resty.dev/v3"
)

// AskPath is the endpoint the question is posted to.
const AskPath = "/ask"

// DefaultBaseURL is the service address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// Request is the JSON body sent to the service.
type Request struct {
	Question string `json:"question"`
}

// Response is the JSON body returned on success. Only Answer is required;
// the service also echoes the question and a timestamp.
type Response struct {
	Question  string `json:"question,omitempty"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Client posts questions to a question-answering service. There is no
// retry and, unless a timeout is configured, no deadline besides ctx.
type Client struct {
	httpClient *resty.Client
	baseURL    string
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.SetTimeout(d)
		}
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetHeader("Content-Type", "application/json")
	httpClient.SetHeader("Accept", "application/json")

	c := &Client{httpClient: httpClient, baseURL: baseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

// errNoAnswer is wrapped when a successful response carries no answer.
var errNoAnswer = errors.New(`response has no "answer" field`)

// answerBody distinguishes a missing answer from an empty one.
type answerBody struct {
	Answer *string `json:"answer"`
}

// Ask sends question and returns the service's answer. Non-2xx responses
// yield a *ServiceError. Transport failures, and 2xx responses whose body
// is not JSON with an "answer" string, yield a *NetworkError.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	url := c.baseURL + AskPath
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(Request{Question: question}).
		Post(AskPath)
	if err != nil {
		slog.Default().Debug("ask request failed", "url", url, "error", err)
		return "", &NetworkError{URL: url, Err: err}
	}
	if resp.IsError() {
		return "", &ServiceError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var body answerBody
	if err := json.Unmarshal([]byte(resp.String()), &body); err != nil {
		slog.Default().Debug("ask response not JSON", "url", url, "error", err)
		return "", &NetworkError{URL: url, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if body.Answer == nil {
		return "", &NetworkError{URL: url, Err: errNoAnswer}
	}
	return *body.Answer, nil
}

// String describes the client for log lines.
func (c *Client) String() string {
	return fmt.Sprintf("askclient(%s)", c.baseURL)
}
