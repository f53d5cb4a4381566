// Package openai implements the translation client for the OpenAI
// responses API. Each call translates one string; transport failures and
// non-success statuses are retried with exponential backoff.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/potools/potranslator/logger"
)

const (
	// DefaultBaseURL is the OpenAI API root. Overridable for tests and
	// compatible endpoints.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the model used for all translation requests.
	DefaultModel = "gpt-4o-mini"

	// EnvAPIKey is the environment variable consulted when no key is
	// passed explicitly.
	EnvAPIKey = "OPENAI_API_KEY"

	// maxRetries is the retry budget: after the initial attempt, up to
	// maxRetries further attempts are made. The failure after the last
	// one is fatal.
	maxRetries = 5

	// baseBackoff is the first retry delay; it doubles per attempt.
	baseBackoff = 100 * time.Millisecond

	defaultTimeout = 60 * time.Second
)

// ErrMissingAPIKey is returned by New when no API key is available from
// the argument or the environment.
var ErrMissingAPIKey = errors.New("no API key: pass --api-key or set " + EnvAPIKey)

// Request is the JSON body sent to the responses endpoint.
type Request struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
	Input        string `json:"input"`
}

// response mirrors the nested shape of the responses API: the translated
// text lives at output[0].content[0].text.
type response struct {
	Output []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// StatusError is a non-success HTTP status from the service. It is
// retried like a transport failure; no status-code discrimination is done.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Code, truncate(e.Body, 200))
}

// RetryExhaustedError is returned once the retry budget is spent.
type RetryExhaustedError struct {
	Retries int
	Last    error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d retries: %v", e.Retries, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// Client talks to the responses endpoint with retry/backoff.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client

	// onRetry is called once per retry, before sleeping.
	onRetry func(attempt, max int, errText string)
	// sleep blocks for the backoff delay; injectable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (no trailing slash).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithModel overrides the model identifier.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client. An empty apiKey falls back to the OPENAI_API_KEY
// environment variable; if neither is set, ErrMissingAPIKey is returned
// so the run fails before any file is touched.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		onRetry:    logger.Retry,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send translates one input string and returns the response text with a
// single pair of surrounding quotes stripped. On transport failure or a
// non-success status it retries with exponential backoff (100ms, 200ms,
// 400ms, ...); the failure after the retry budget is spent yields a
// *RetryExhaustedError.
func (c *Client) Send(ctx context.Context, instructions, input string) (string, error) {
	body, err := json.Marshal(Request{
		Model:        c.model,
		Instructions: instructions,
		Input:        input,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		text, err := c.post(ctx, body)
		if err == nil {
			return text, nil
		}

		// Malformed success bodies and context cancellation are not
		// worth retrying against the same service.
		if !retryable(err) || ctx.Err() != nil {
			return "", err
		}

		if attempt >= maxRetries {
			return "", &RetryExhaustedError{Retries: maxRetries, Last: err}
		}

		c.onRetry(attempt, maxRetries, err.Error())
		if serr := c.sleep(ctx, baseBackoff<<attempt); serr != nil {
			return "", serr
		}
	}
}

// post performs one request/response cycle.
func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &transportError{err}
	}

	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	return extractText(respBody)
}

// transportError marks connection-level failures as retryable.
type transportError struct{ err error }

func (e *transportError) Error() string { return "request failed: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var te *transportError
	var se *StatusError
	return errors.As(err, &te) || errors.As(err, &se)
}

// extractText pulls the translated text out of the nested response
// structure and strips one pair of surrounding quotes, which the model
// sometimes adds despite instructions.
func extractText(body []byte) (string, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(r.Output) == 0 || len(r.Output[0].Content) == 0 {
		return "", fmt.Errorf("unexpected response shape: %s", truncate(string(body), 200))
	}
	return stripQuotes(r.Output[0].Content[0].Text), nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// sleepContext blocks for d or until the context is canceled. The retry
// backoff must genuinely wait before the next attempt.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
