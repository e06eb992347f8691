// Package anthropic implements the Anthropic Claude integration module
// (Messages API).
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
)

// apiURL is a var so tests can point the client at a stub server.
var apiURL = "https://api.anthropic.com/v1"

const (
	vendorSlug   = "anthropic"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-3-5-haiku-latest"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Client is the Anthropic integration module. API-key auth; no OAuth connection.
type Client struct {
	apiKey string
	http   *integration.HTTPClient
}

var _ integration.Connector = (*Client)(nil)

// New builds the Anthropic client.
func New(cfg config.IntegrationsConfig) *Client {
	return &Client{
		apiKey: cfg.AnthropicKey,
		http:   integration.NewHTTPClient(vendorSlug, cfg.RequestsPerSecond, cfg.MaxRetries),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Vendor implements integration.Connector.
func (c *Client) Vendor() string { return vendorSlug }

// Operations implements integration.Connector.
func (c *Client) Operations() []string { return []string{"messages"} }

// Execute implements integration.Connector.
func (c *Client) Execute(ctx context.Context, _ string, op string, params map[string]any) (map[string]any, error) {
	if op != "messages" {
		return nil, fmt.Errorf("%w: %s/%s", integration.ErrUnknownOperation, vendorSlug, op)
	}
	prompt, _ := params["prompt"].(string)
	if prompt == "" {
		return nil, integration.MissingParam("prompt")
	}
	system, _ := params["system"].(string)
	model, _ := params["model"].(string)

	res, err := c.send(ctx, model, system, prompt)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"model":         res.Model,
		"stop_reason":   res.StopReason,
		"input_tokens":  res.Usage.InputTokens,
		"output_tokens": res.Usage.OutputTokens,
	}
	if len(res.Content) > 0 {
		out["content"] = res.Content[0].Text
	}
	return out, nil
}

// Complete sends a single-turn prompt and returns the model's text reply.
// Used by the insights service.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := c.send(ctx, "", "", prompt)
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return "", &integration.VendorError{Vendor: vendorSlug, Operation: "messages", Message: "empty content"}
	}
	return res.Content[0].Text, nil
}

// Name identifies the model vendor in insight payloads.
func (c *Client) Name() string { return vendorSlug }

func (c *Client) send(ctx context.Context, model, system, prompt string) (*messagesResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: %s", integration.ErrNotConnected, vendorSlug)
	}
	if model == "" {
		model = defaultModel
	}

	body, err := c.http.DoJSON(ctx, "messages", integration.Request{
		Method: http.MethodPost,
		URL:    apiURL + "/messages",
		Headers: map[string]string{
			"x-api-key":         c.apiKey,
			"anthropic-version": apiVersion,
		},
		Body: messagesRequest{
			Model:     model,
			MaxTokens: 1024,
			System:    system,
			Messages:  []message{{Role: "user", Content: prompt}},
		},
	})
	if err != nil {
		return nil, err
	}

	var res messagesResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode messages response: %w", err)
	}
	return &res, nil
}
