package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

type staticTokens struct {
	token string
	err   error
}

func (s *staticTokens) AccessToken(context.Context, string, string) (string, error) {
	return s.token, s.err
}

func testConfig() config.IntegrationsConfig {
	return config.IntegrationsConfig{RequestsPerSecond: 100}
}

func TestListCampaigns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/act_123/campaigns", r.URL.Path)
		assert.Equal(t, "at-1", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"data":[
			{"id":"c1","name":"Summer Sale","status":"ACTIVE","objective":"CONVERSIONS"},
			{"id":"c2","name":"Retargeting","status":"PAUSED","objective":"TRAFFIC"}
		]}`))
	}))
	defer srv.Close()

	old := graphURL
	graphURL = srv.URL
	defer func() { graphURL = old }()

	c := New(testConfig(), &staticTokens{token: "at-1"})
	out, err := c.Execute(context.Background(), "tnt-01", "list_campaigns", map[string]any{"account_id": "123"})
	require.NoError(t, err)
	assert.Equal(t, 2, out["count"])

	campaigns := out["campaigns"].([]model.Campaign)
	assert.Equal(t, "c1", campaigns[0].ID)
	assert.Equal(t, "facebook", campaigns[0].Channel)
	assert.Equal(t, "CONVERSIONS", campaigns[0].Objective)
}

func TestCampaignInsights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/c1/insights", r.URL.Path)
		assert.Equal(t, "last_7d", r.URL.Query().Get("date_preset"))
		w.Write([]byte(`{"data":[
			{"campaign_id":"c1","clicks":"150","impressions":"10000","reach":"8000","spend":"42.50","cpc":"0.28"}
		]}`))
	}))
	defer srv.Close()

	old := graphURL
	graphURL = srv.URL
	defer func() { graphURL = old }()

	c := New(testConfig(), &staticTokens{token: "at-1"})
	out, err := c.Execute(context.Background(), "tnt-01", "campaign_insights", map[string]any{
		"campaign_id": "c1",
		"date_preset": "last_7d",
	})
	require.NoError(t, err)
	assert.Equal(t, "last_7d", out["date_preset"])

	insights := out["insights"].([]model.CampaignInsight)
	require.Len(t, insights, 1)
	assert.Equal(t, "c1", insights[0].CampaignID)
	assert.Equal(t, 42.5, insights[0].Spend)
	assert.Equal(t, 0.28, insights[0].CPC)
}

func TestExecuteValidation(t *testing.T) {
	c := New(testConfig(), &staticTokens{token: "at-1"})

	t.Run("missing account_id", func(t *testing.T) {
		_, err := c.Execute(context.Background(), "tnt-01", "list_campaigns", nil)
		assert.ErrorIs(t, err, integration.ErrInvalidParams)
		assert.Contains(t, err.Error(), "account_id")
	})

	t.Run("missing campaign_id", func(t *testing.T) {
		_, err := c.Execute(context.Background(), "tnt-01", "campaign_insights", nil)
		assert.ErrorIs(t, err, integration.ErrInvalidParams)
		assert.Contains(t, err.Error(), "campaign_id")
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := c.Execute(context.Background(), "tnt-01", "nope", nil)
		assert.ErrorIs(t, err, integration.ErrUnknownOperation)
	})

	t.Run("token failure", func(t *testing.T) {
		c := New(testConfig(), &staticTokens{err: integration.ErrNotConnected})
		_, err := c.Execute(context.Background(), "tnt-01", "list_campaigns", map[string]any{"account_id": "1"})
		assert.ErrorIs(t, err, integration.ErrNotConnected)
	})
}
