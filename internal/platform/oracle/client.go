// Package oracle wraps the external text-generation API. The rest of the
// system treats it as an opaque function from (instructions, input) to text;
// prompt selection and output parsing live in the generation service.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
)

// Client is the seam handlers and services depend on; tests substitute stubs.
type Client interface {
	// Complete sends a system prompt and user input, returning the raw text
	// of the first completion choice.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
	// Configured reports whether an API key is present. When false the
	// generation endpoints run in test mode.
	Configured() bool
}

type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	// JSONObject forces the response_format to a JSON object (coaching).
	JSONObject bool
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type httpClient struct {
	cfg  cfgpkg.OracleConfig
	http *http.Client
	log  *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) Client {
	timeout := time.Duration(cfg.Oracle.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpClient{
		cfg:  cfg.Oracle,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

func (c *httpClient) Configured() bool {
	return c.cfg.APIKey != ""
}

func (c *httpClient) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("oracle API key is not configured")
	}

	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONObject {
		payload.ResponseFormat = map[string]any{"type": "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("oracle error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || len(parsed.Choices) == 0 {
		return "", fmt.Errorf("oracle returned status %d with no choices", resp.StatusCode)
	}

	return parsed.Choices[0].Message.Content, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
