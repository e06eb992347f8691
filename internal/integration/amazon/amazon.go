// Package amazon implements the Amazon-family integration modules. All six
// (Advertising, DSP, Fresh, Business, Logistics, Brand Registry) authenticate
// through the same Login-with-Amazon tokens, so they share one connector type
// parameterized by family.
package amazon

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
)

// Family selects which Amazon API surface a connector talks to.
type Family string

const (
	Ads           Family = "amazon-ads"
	DSP           Family = "amazon-dsp"
	Fresh         Family = "amazon-fresh"
	Business      Family = "amazon-business"
	Logistics     Family = "amazon-logistics"
	BrandRegistry Family = "amazon-brand-registry"
)

const (
	adsBaseURL = "https://advertising-api.amazon.com"
	spBaseURL  = "https://sellingpartnerapi-na.amazon.com"
)

// operation binds an op name to its request builder and response mapper.
type operation struct {
	method string
	path   func(params map[string]any) (string, error)
	query  func(params map[string]any) map[string]string
	result func(body []byte) map[string]any
}

// Connector is one Amazon-family integration module.
type Connector struct {
	family   Family
	clientID string
	http     *integration.HTTPClient
	tokens   integration.TokenProvider
	baseURL  string
	ads      bool
	ops      map[string]operation
}

var _ integration.Connector = (*Connector)(nil)

// New builds the connector for one Amazon family.
func New(family Family, cfg config.IntegrationsConfig, tokens integration.TokenProvider) *Connector {
	c := &Connector{
		family:   family,
		clientID: cfg.Amazon.ClientID,
		http:     integration.NewHTTPClient(string(family), cfg.RequestsPerSecond, cfg.MaxRetries),
		tokens:   tokens,
	}
	switch family {
	case Ads, DSP:
		c.baseURL = adsBaseURL
		c.ads = true
	default:
		c.baseURL = spBaseURL
	}
	c.ops = operationsFor(family)
	return c
}

// Vendor implements integration.Connector.
func (c *Connector) Vendor() string { return string(c.family) }

// Operations implements integration.Connector.
func (c *Connector) Operations() []string {
	out := make([]string, 0, len(c.ops))
	for op := range c.ops {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// Execute implements integration.Connector.
func (c *Connector) Execute(ctx context.Context, tenantID, op string, params map[string]any) (map[string]any, error) {
	def, ok := c.ops[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", integration.ErrUnknownOperation, c.family, op)
	}

	token, err := c.tokens.AccessToken(ctx, tenantID, string(c.family))
	if err != nil {
		return nil, err
	}

	path, err := def.path(params)
	if err != nil {
		return nil, err
	}

	req := integration.Request{
		Method: def.method,
		URL:    c.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
		},
	}
	if c.ads {
		req.Headers["Amazon-Advertising-API-ClientId"] = c.clientID
	} else {
		// Selling Partner API passes the LWA token in its own header.
		req.Headers["x-amz-access-token"] = token
	}
	if def.query != nil {
		req.Query = def.query(params)
	}

	body, err := c.http.DoJSON(ctx, op, req)
	if err != nil {
		return nil, err
	}
	return def.result(body), nil
}

func operationsFor(family Family) map[string]operation {
	switch family {
	case Ads:
		return map[string]operation{
			"list_campaigns": {
				method: http.MethodGet,
				path:   staticPath("/v2/sp/campaigns"),
				result: func(body []byte) map[string]any {
					items := []map[string]any{}
					gjson.ParseBytes(body).ForEach(func(_, v gjson.Result) bool {
						items = append(items, map[string]any{
							"id":     v.Get("campaignId").String(),
							"name":   v.Get("name").String(),
							"status": v.Get("state").String(),
							"budget": v.Get("dailyBudget").Float(),
						})
						return true
					})
					return map[string]any{"campaigns": items, "count": len(items)}
				},
			},
			"campaign_report": {
				method: http.MethodGet,
				path:   paramPath("campaign_id", "/v2/sp/campaigns/%s/extended"),
				result: func(body []byte) map[string]any {
					r := gjson.ParseBytes(body)
					return map[string]any{
						"campaign_id": r.Get("campaignId").String(),
						"state":       r.Get("state").String(),
						"serving":     r.Get("servingStatus").String(),
					}
				},
			},
		}
	case DSP:
		return map[string]operation{
			"list_orders": {
				method: http.MethodGet,
				path:   staticPath("/dsp/orders"),
				result: listResult("response", "orders", "orderId", "name", "state"),
			},
			"delivery_report": {
				method: http.MethodGet,
				path:   paramPath("order_id", "/dsp/orders/%s/delivery"),
				result: passthroughResult("delivery"),
			},
		}
	case Fresh:
		return map[string]operation{
			"list_orders": {
				method: http.MethodGet,
				path:   staticPath("/orders/v0/orders"),
				query:  marketplaceQuery,
				result: listResult("payload", "Orders", "AmazonOrderId", "OrderStatus", "FulfillmentChannel"),
			},
			"inventory_summary": {
				method: http.MethodGet,
				path:   staticPath("/fba/inventory/v1/summaries"),
				query:  marketplaceQuery,
				result: passthroughResult("inventory"),
			},
		}
	case Business:
		return map[string]operation{
			"list_orders": {
				method: http.MethodGet,
				path:   staticPath("/orders/v0/orders"),
				query:  marketplaceQuery,
				result: listResult("payload", "Orders", "AmazonOrderId", "OrderStatus", "OrderTotal.Amount"),
			},
			"spending_report": {
				method: http.MethodGet,
				path:   staticPath("/reports/2021-06-30/reports"),
				result: passthroughResult("reports"),
			},
		}
	case Logistics:
		return map[string]operation{
			"track_shipment": {
				method: http.MethodGet,
				path:   paramPath("tracking_id", "/shipping/v2/tracking/%s"),
				result: func(body []byte) map[string]any {
					r := gjson.ParseBytes(body).Get("payload")
					return map[string]any{
						"tracking_id":    r.Get("trackingId").String(),
						"summary_status": r.Get("summary.status").String(),
						"promised_date":  r.Get("promisedDeliveryDate").String(),
					}
				},
			},
		}
	case BrandRegistry:
		return map[string]operation{
			"list_brands": {
				method: http.MethodGet,
				path:   staticPath("/brands/v1/brands"),
				result: listResult("", "brands", "brandId", "brandName", "status"),
			},
			"violation_report": {
				method: http.MethodGet,
				path:   staticPath("/brands/v1/violations"),
				result: passthroughResult("violations"),
			},
		}
	}
	return nil
}

func staticPath(p string) func(map[string]any) (string, error) {
	return func(map[string]any) (string, error) { return p, nil }
}

// paramPath formats one required string parameter into the path template.
func paramPath(key, tmpl string) func(map[string]any) (string, error) {
	return func(params map[string]any) (string, error) {
		v, _ := params[key].(string)
		if v == "" {
			return "", integration.MissingParam(key)
		}
		return fmt.Sprintf(tmpl, v), nil
	}
}

func marketplaceQuery(params map[string]any) map[string]string {
	mp, _ := params["marketplace_id"].(string)
	if mp == "" {
		mp = "ATVPDKIKX0DER" // US marketplace
	}
	return map[string]string{"MarketplaceIds": mp}
}

// listResult extracts a generic id/name/status list from root.container.
func listResult(root, container, idField, nameField, statusField string) func([]byte) map[string]any {
	return func(body []byte) map[string]any {
		r := gjson.ParseBytes(body)
		if root != "" {
			r = r.Get(root)
		}
		items := []map[string]any{}
		r.Get(container).ForEach(func(_, v gjson.Result) bool {
			items = append(items, map[string]any{
				"id":     v.Get(idField).String(),
				"name":   v.Get(nameField).String(),
				"status": v.Get(statusField).String(),
			})
			return true
		})
		return map[string]any{"items": items, "count": len(items)}
	}
}

// passthroughResult wraps the decoded payload under a single key.
func passthroughResult(key string) func([]byte) map[string]any {
	return func(body []byte) map[string]any {
		return map[string]any{key: gjson.ParseBytes(body).Value()}
	}
}
