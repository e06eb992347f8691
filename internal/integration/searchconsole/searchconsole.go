// Package searchconsole implements the Google Search Console integration
// module over the Webmasters v3 API.
package searchconsole

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
)

const vendorSlug = "google-search-console"

// apiURL is a var so tests can point the connector at a stub server.
var apiURL = "https://www.googleapis.com/webmasters/v3"

// queryRequest is the searchAnalytics/query request body.
type queryRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions,omitempty"`
	RowLimit   int      `json:"rowLimit,omitempty"`
}

// queryResponse is the searchAnalytics/query response body.
type queryResponse struct {
	Rows []struct {
		Keys        []string `json:"keys"`
		Clicks      float64  `json:"clicks"`
		Impressions float64  `json:"impressions"`
		CTR         float64  `json:"ctr"`
		Position    float64  `json:"position"`
	} `json:"rows"`
}

// siteList is the sites endpoint response body.
type siteList struct {
	SiteEntry []struct {
		SiteURL         string `json:"siteUrl"`
		PermissionLevel string `json:"permissionLevel"`
	} `json:"siteEntry"`
}

// Connector is the Google Search Console integration module.
type Connector struct {
	http   *integration.HTTPClient
	tokens integration.TokenProvider
}

var _ integration.Connector = (*Connector)(nil)

// New builds the Search Console connector.
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
	return []string{"list_sites", "search_analytics"}
}

// Execute implements integration.Connector.
func (c *Connector) Execute(ctx context.Context, tenantID, op string, params map[string]any) (map[string]any, error) {
	token, err := c.tokens.AccessToken(ctx, tenantID, vendorSlug)
	if err != nil {
		return nil, err
	}

	switch op {
	case "list_sites":
		return c.listSites(ctx, token)
	case "search_analytics":
		return c.searchAnalytics(ctx, token, params)
	default:
		return nil, fmt.Errorf("%w: %s/%s", integration.ErrUnknownOperation, vendorSlug, op)
	}
}

func (c *Connector) listSites(ctx context.Context, token string) (map[string]any, error) {
	body, err := c.http.DoJSON(ctx, "list_sites", integration.Request{
		Method:  http.MethodGet,
		URL:     apiURL + "/sites",
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		return nil, err
	}

	var sites siteList
	if err := json.Unmarshal(body, &sites); err != nil {
		return nil, fmt.Errorf("decode sites: %w", err)
	}

	items := make([]map[string]any, 0, len(sites.SiteEntry))
	for _, s := range sites.SiteEntry {
		items = append(items, map[string]any{
			"site_url":   s.SiteURL,
			"permission": s.PermissionLevel,
		})
	}
	return map[string]any{"sites": items, "count": len(items)}, nil
}

func (c *Connector) searchAnalytics(ctx context.Context, token string, params map[string]any) (map[string]any, error) {
	siteURL, _ := params["site_url"].(string)
	if siteURL == "" {
		return nil, integration.MissingParam("site_url")
	}
	startDate, _ := params["start_date"].(string)
	endDate, _ := params["end_date"].(string)
	if startDate == "" || endDate == "" {
		return nil, fmt.Errorf("%w: parameters %q and %q are required", integration.ErrInvalidParams, "start_date", "end_date")
	}

	reqBody := queryRequest{
		StartDate:  startDate,
		EndDate:    endDate,
		Dimensions: []string{"query"},
		RowLimit:   100,
	}
	if dims, ok := params["dimensions"].([]any); ok && len(dims) > 0 {
		reqBody.Dimensions = reqBody.Dimensions[:0]
		for _, d := range dims {
			if s, ok := d.(string); ok {
				reqBody.Dimensions = append(reqBody.Dimensions, s)
			}
		}
	}

	body, err := c.http.DoJSON(ctx, "search_analytics", integration.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/sites/%s/searchAnalytics/query", apiURL, url.PathEscape(siteURL)),
		Headers: map[string]string{"Authorization": "Bearer " + token},
		Body:    reqBody,
	})
	if err != nil {
		return nil, err
	}

	var res queryResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode analytics: %w", err)
	}

	rows := make([]map[string]any, 0, len(res.Rows))
	for _, r := range res.Rows {
		rows = append(rows, map[string]any{
			"keys":        r.Keys,
			"clicks":      r.Clicks,
			"impressions": r.Impressions,
			"ctr":         r.CTR,
			"position":    r.Position,
		})
	}
	return map[string]any{"rows": rows, "count": len(rows)}, nil
}
