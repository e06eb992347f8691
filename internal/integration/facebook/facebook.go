// Package facebook implements the Facebook Ads integration module over the
// Marketing API (Graph v19.0).
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

const vendorSlug = "facebook-ads"

// graphURL is a var so tests can point the connector at a stub server.
var graphURL = "https://graph.facebook.com/v19.0"

// campaignEdge mirrors the Graph API list envelope for campaigns.
type campaignEdge struct {
	Data []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Status    string `json:"status"`
		Objective string `json:"objective"`
	} `json:"data"`
}

// insightEdge mirrors the insights envelope. The Graph API returns counters
// as strings.
type insightEdge struct {
	Data []struct {
		CampaignID  string `json:"campaign_id"`
		Clicks      string `json:"clicks"`
		Impressions string `json:"impressions"`
		Reach       string `json:"reach"`
		Spend       string `json:"spend"`
		CPC         string `json:"cpc"`
	} `json:"data"`
}

// Connector is the Facebook Ads integration module.
type Connector struct {
	http   *integration.HTTPClient
	tokens integration.TokenProvider
}

var _ integration.Connector = (*Connector)(nil)

// New builds the Facebook Ads connector.
func New(cfg config.IntegrationsConfig, tokens integration.TokenProvider) *Connector {
	return &Connector{
		http:   integration.NewHTTPClient(vendorSlug, cfg.RequestsPerSecond, cfg.MaxRetries),
		tokens: tokens,
	}
}

// Vendor implements integration.Connector.
func (c *Connector) Vendor() string { return vendorSlug }

// Operations implements integration.Connector.
func (c *Connector) Operations() []string {
	return []string{"list_campaigns", "campaign_insights"}
}

// Execute implements integration.Connector.
func (c *Connector) Execute(ctx context.Context, tenantID, op string, params map[string]any) (map[string]any, error) {
	token, err := c.tokens.AccessToken(ctx, tenantID, vendorSlug)
	if err != nil {
		return nil, err
	}

	switch op {
	case "list_campaigns":
		return c.listCampaigns(ctx, token, params)
	case "campaign_insights":
		return c.campaignInsights(ctx, token, params)
	default:
		return nil, fmt.Errorf("%w: %s/%s", integration.ErrUnknownOperation, vendorSlug, op)
	}
}

func (c *Connector) listCampaigns(ctx context.Context, token string, params map[string]any) (map[string]any, error) {
	accountID, _ := params["account_id"].(string)
	if accountID == "" {
		return nil, integration.MissingParam("account_id")
	}

	body, err := c.http.DoJSON(ctx, "list_campaigns", integration.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/act_%s/campaigns", graphURL, accountID),
		Query: map[string]string{
			"fields":       "id,name,status,objective",
			"access_token": token,
		},
	})
	if err != nil {
		return nil, err
	}

	var edge campaignEdge
	if err := json.Unmarshal(body, &edge); err != nil {
		return nil, fmt.Errorf("decode campaigns: %w", err)
	}

	campaigns := make([]model.Campaign, 0, len(edge.Data))
	for _, d := range edge.Data {
		campaigns = append(campaigns, model.Campaign{
			ID:        d.ID,
			Name:      d.Name,
			Channel:   "facebook",
			Status:    d.Status,
			Objective: d.Objective,
		})
	}
	return map[string]any{"campaigns": campaigns, "count": len(campaigns)}, nil
}

func (c *Connector) campaignInsights(ctx context.Context, token string, params map[string]any) (map[string]any, error) {
	campaignID, _ := params["campaign_id"].(string)
	if campaignID == "" {
		return nil, integration.MissingParam("campaign_id")
	}
	datePreset, _ := params["date_preset"].(string)
	if datePreset == "" {
		datePreset = "last_30d"
	}

	body, err := c.http.DoJSON(ctx, "campaign_insights", integration.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/%s/insights", graphURL, campaignID),
		Query: map[string]string{
			"fields":       "campaign_id,clicks,impressions,reach,spend,cpc",
			"date_preset":  datePreset,
			"access_token": token,
		},
	})
	if err != nil {
		return nil, err
	}

	var edge insightEdge
	if err := json.Unmarshal(body, &edge); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}

	insights := make([]model.CampaignInsight, 0, len(edge.Data))
	for _, d := range edge.Data {
		insights = append(insights, model.CampaignInsight{
			CampaignID:  d.CampaignID,
			Clicks:      d.Clicks,
			Impressions: d.Impressions,
			Reach:       d.Reach,
			Spend:       parseFloat(d.Spend),
			CPC:         parseFloat(d.CPC),
		})
	}
	return map[string]any{"insights": insights, "date_preset": datePreset}, nil
}

func parseFloat(s string) float64 {
	var f float64
	_, _ = fmt.Sscanf(s, "%f", &f)
	return f
}
