package service

import (
	"context"
	"encoding/json"
	"fmt"
)

// ModelClient is a model vendor able to produce text completions. Implemented
// by the Anthropic and OpenAI integration clients.
type ModelClient interface {
	Name() string
	Configured() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// InsightService turns a vendor operation's business result into the
// `agent_analysis` field of the response envelope by asking a real model,
// replacing the hand-built analysis dictionaries of the legacy platform.
type InsightService interface {
	// Analyze returns the analysis payload, or nil when no model vendor is
	// configured. Analysis is best-effort: it is omitted on failure rather
	// than failing the operation.
	Analyze(ctx context.Context, vendor, operation string, businessResult map[string]any) map[string]any
}

type insightService struct {
	// Ordered by preference; the first configured client wins.
	clients []ModelClient
}

// NewInsightService constructs the insight service over the given model
// clients, tried in order.
func NewInsightService(clients ...ModelClient) InsightService {
	return &insightService{clients: clients}
}

const insightPrompt = `You are a marketing operations analyst. Given the JSON result of the %s operation %q, reply with 2-3 sentences: what the data shows and one concrete recommended action. Reply with plain text only.

%s`

func (s *insightService) Analyze(ctx context.Context, vendor, operation string, businessResult map[string]any) map[string]any {
	client := s.pick()
	if client == nil {
		return nil
	}

	encoded, err := json.Marshal(businessResult)
	if err != nil {
		return nil
	}
	// Keep prompts bounded; vendors bill by token.
	if len(encoded) > 8192 {
		encoded = encoded[:8192]
	}

	summary, err := client.Complete(ctx, fmt.Sprintf(insightPrompt, vendor, operation, encoded))
	if err != nil {
		return nil
	}

	return map[string]any{
		"summary":  summary,
		"analyst":  client.Name(),
		"analyzed": true,
	}
}

func (s *insightService) pick() ModelClient {
	for _, c := range s.clients {
		if c.Configured() {
			return c
		}
	}
	return nil
}
