// Package openai implements the OpenAI integration module (chat completions).
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
)

const (
	vendorSlug   = "openai"
	defaultModel = "gpt-4o-mini"
)

// apiURL is a var so tests can point the client at a stub server.
var apiURL = "https://api.openai.com/v1"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Client is the OpenAI integration module. API-key auth; no OAuth connection.
type Client struct {
	apiKey string
	http   *integration.HTTPClient
}

var _ integration.Connector = (*Client)(nil)

// New builds the OpenAI client.
func New(cfg config.IntegrationsConfig) *Client {
	return &Client{
		apiKey: cfg.OpenAIKey,
		http:   integration.NewHTTPClient(vendorSlug, cfg.RequestsPerSecond, cfg.MaxRetries),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Vendor implements integration.Connector.
func (c *Client) Vendor() string { return vendorSlug }

// Operations implements integration.Connector.
func (c *Client) Operations() []string { return []string{"chat_completion"} }

// Execute implements integration.Connector.
func (c *Client) Execute(ctx context.Context, _ string, op string, params map[string]any) (map[string]any, error) {
	if op != "chat_completion" {
		return nil, fmt.Errorf("%w: %s/%s", integration.ErrUnknownOperation, vendorSlug, op)
	}
	prompt, _ := params["prompt"].(string)
	if prompt == "" {
		return nil, integration.MissingParam("prompt")
	}
	model, _ := params["model"].(string)

	res, err := c.complete(ctx, model, prompt)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"model":             res.Model,
		"prompt_tokens":     res.Usage.PromptTokens,
		"completion_tokens": res.Usage.CompletionTokens,
	}
	if len(res.Choices) > 0 {
		out["content"] = res.Choices[0].Message.Content
		out["finish_reason"] = res.Choices[0].FinishReason
	}
	return out, nil
}

// Complete sends a single-turn prompt and returns the model's text reply.
// Used by the insights service.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := c.complete(ctx, "", prompt)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", &integration.VendorError{Vendor: vendorSlug, Operation: "chat_completion", Message: "empty choices"}
	}
	return res.Choices[0].Message.Content, nil
}

// Name identifies the model vendor in insight payloads.
func (c *Client) Name() string { return vendorSlug }

func (c *Client) complete(ctx context.Context, model, prompt string) (*chatResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: %s", integration.ErrNotConnected, vendorSlug)
	}
	if model == "" {
		model = defaultModel
	}

	body, err := c.http.DoJSON(ctx, "chat_completion", integration.Request{
		Method:  http.MethodPost,
		URL:     apiURL + "/chat/completions",
		Headers: map[string]string{"Authorization": "Bearer " + c.apiKey},
		Body: chatRequest{
			Model:       model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			MaxTokens:   1024,
			Temperature: 0.2,
		},
	})
	if err != nil {
		return nil, err
	}

	var res chatResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	return &res, nil
}
