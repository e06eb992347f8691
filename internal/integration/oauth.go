package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

// TokenCache is the cache surface the OAuth manager needs. Implemented by
// cache.Redis; mocked in tests.
type TokenCache interface {
	AccessToken(ctx context.Context, tenantID, vendor string) (string, error)
	SetAccessToken(ctx context.Context, tenantID, vendor, token string, ttl time.Duration) error
	InvalidateToken(ctx context.Context, tenantID, vendor string) error
}

// Provider describes one vendor's OAuth2 authorization-code endpoints.
type Provider struct {
	AuthURL  string
	TokenURL string
	Scopes   []string
	Creds    config.VendorCredentials
}

// Default OAuth endpoints. The six Amazon modules share Login-with-Amazon.
var (
	amazonProvider = Provider{
		AuthURL:  "https://www.amazon.com/ap/oa",
		TokenURL: "https://api.amazon.com/auth/o2/token",
		Scopes:   []string{"advertising::campaign_management"},
	}
	facebookProvider = Provider{
		AuthURL:  "https://www.facebook.com/v19.0/dialog/oauth",
		TokenURL: "https://graph.facebook.com/v19.0/oauth/access_token",
		Scopes:   []string{"ads_read", "ads_management"},
	}
	googleProvider = Provider{
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
		Scopes:   []string{"https://www.googleapis.com/auth/webmasters.readonly"},
	}
)

// amazonVendors maps each Amazon-family slug onto the shared LWA provider.
var amazonVendors = []string{
	"amazon-ads", "amazon-dsp", "amazon-fresh",
	"amazon-business", "amazon-logistics", "amazon-brand-registry",
}

// OAuthManager runs the authorization-code flow for OAuth vendors and hands
// out current access tokens, refreshing and caching as needed.
type OAuthManager struct {
	providers map[string]Provider
	conns     repository.ConnectionRepository
	cache     TokenCache
	http      *HTTPClient
	now       func() time.Time
}

// NewOAuthManager wires the per-vendor providers from configuration.
func NewOAuthManager(cfg config.IntegrationsConfig, conns repository.ConnectionRepository, tc TokenCache) *OAuthManager {
	providers := make(map[string]Provider)

	lwa := amazonProvider
	lwa.Creds = cfg.Amazon
	for _, v := range amazonVendors {
		providers[v] = lwa
	}

	fb := facebookProvider
	fb.Creds = cfg.Facebook
	providers["facebook-ads"] = fb

	g := googleProvider
	g.Creds = cfg.Google
	providers["google-search-console"] = g

	return &OAuthManager{
		providers: providers,
		conns:     conns,
		cache:     tc,
		http:      NewHTTPClient("oauth", cfg.RequestsPerSecond, cfg.MaxRetries),
		now:       time.Now,
	}
}

// AuthorizeURL builds the vendor consent URL for the authorization-code flow.
// state should carry the tenant binding and an anti-forgery nonce.
func (m *OAuthManager) AuthorizeURL(vendor, state string) (string, error) {
	p, ok := m.providers[vendor]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownVendor, vendor)
	}
	q := url.Values{}
	q.Set("client_id", p.Creds.ClientID)
	q.Set("redirect_uri", p.Creds.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(p.Scopes, " "))
	q.Set("state", state)
	return p.AuthURL + "?" + q.Encode(), nil
}

// Exchange trades an authorization code for tokens and persists the connection.
func (m *OAuthManager) Exchange(ctx context.Context, tenantID, vendor, code string) (*model.IntegrationConnection, error) {
	p, ok := m.providers[vendor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVendor, vendor)
	}

	body, err := m.http.DoJSON(ctx, "oauth_exchange", Request{
		Method: http.MethodPost,
		URL:    p.TokenURL,
		Form: map[string]string{
			"grant_type":    "authorization_code",
			"code":          code,
			"client_id":     p.Creds.ClientID,
			"client_secret": p.Creds.ClientSecret,
			"redirect_uri":  p.Creds.RedirectURI,
		},
	})
	if err != nil {
		return nil, err
	}

	access := gjson.GetBytes(body, "access_token").String()
	if access == "" {
		return nil, &VendorError{Vendor: vendor, Operation: "oauth_exchange", Message: "token response missing access_token"}
	}
	refresh := gjson.GetBytes(body, "refresh_token").String()
	expiresIn := gjson.GetBytes(body, "expires_in").Int()
	now := m.now()

	conn, err := m.conns.Upsert(ctx, &model.IntegrationConnection{
		TenantID:     tenantID,
		Vendor:       vendor,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(time.Duration(expiresIn) * time.Second),
		Scope:        gjson.GetBytes(body, "scope").String(),
		Status:       model.ConnectionActive,
	})
	if err != nil {
		return nil, fmt.Errorf("persist connection: %w", err)
	}

	_ = m.cache.SetAccessToken(ctx, tenantID, vendor, access, time.Duration(expiresIn)*time.Second)
	return conn, nil
}

// AccessToken implements TokenProvider: cache → stored connection → refresh.
func (m *OAuthManager) AccessToken(ctx context.Context, tenantID, vendor string) (string, error) {
	if tok, err := m.cache.AccessToken(ctx, tenantID, vendor); err == nil && tok != "" {
		return tok, nil
	}

	conn, err := m.conns.FindByTenantVendor(ctx, tenantID, vendor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrNotConnected, vendor)
		}
		return "", err
	}
	if conn.Status == model.ConnectionRevoked {
		return "", fmt.Errorf("%w: %s", ErrNotConnected, vendor)
	}

	now := m.now()
	if !conn.Expired(now) {
		_ = m.cache.SetAccessToken(ctx, tenantID, vendor, conn.AccessToken, conn.ExpiresAt.Sub(now))
		return conn.AccessToken, nil
	}

	return m.refresh(ctx, conn)
}

// Status summarizes a tenant's connection for the status endpoint.
func (m *OAuthManager) Status(ctx context.Context, tenantID, vendor string) (*model.IntegrationConnection, error) {
	conn, err := m.conns.FindByTenantVendor(ctx, tenantID, vendor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotConnected, vendor)
		}
		return nil, err
	}
	if conn.Expired(m.now()) && conn.Status == model.ConnectionActive {
		conn.Status = model.ConnectionExpired
	}
	return conn, nil
}

func (m *OAuthManager) refresh(ctx context.Context, conn *model.IntegrationConnection) (string, error) {
	if conn.RefreshToken == "" {
		return "", fmt.Errorf("%w: %s token expired and no refresh token", ErrNotConnected, conn.Vendor)
	}
	p := m.providers[conn.Vendor]

	body, err := m.http.DoJSON(ctx, "oauth_refresh", Request{
		Method: http.MethodPost,
		URL:    p.TokenURL,
		Form: map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": conn.RefreshToken,
			"client_id":     p.Creds.ClientID,
			"client_secret": p.Creds.ClientSecret,
		},
	})
	if err != nil {
		return "", err
	}

	access := gjson.GetBytes(body, "access_token").String()
	if access == "" {
		return "", &VendorError{Vendor: conn.Vendor, Operation: "oauth_refresh", Message: "refresh response missing access_token"}
	}
	refresh := gjson.GetBytes(body, "refresh_token").String()
	if refresh == "" {
		refresh = conn.RefreshToken // vendors may omit it on refresh
	}
	expiresIn := gjson.GetBytes(body, "expires_in").Int()
	expiresAt := m.now().Add(time.Duration(expiresIn) * time.Second)

	if err := m.conns.UpdateTokens(ctx, conn.ID, access, refresh, expiresAt); err != nil {
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}
	_ = m.cache.SetAccessToken(ctx, conn.TenantID, conn.Vendor, access, time.Duration(expiresIn)*time.Second)
	return access, nil
}
