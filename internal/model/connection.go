package model

import "time"

// ConnectionStatus reports whether a vendor connection currently holds usable
// credentials.
type ConnectionStatus string

const (
	ConnectionPending      ConnectionStatus = "pending"
	ConnectionActive       ConnectionStatus = "active"
	ConnectionExpired      ConnectionStatus = "expired"
	ConnectionRevoked      ConnectionStatus = "revoked"
	ConnectionDisconnected ConnectionStatus = "disconnected"
)

// IntegrationConnection binds a tenant to one external vendor with its OAuth
// tokens. API-key vendors (OpenAI, Anthropic) have no row here; their keys
// come from configuration.
type IntegrationConnection struct {
	ID           string           `json:"id"`
	TenantID     string           `json:"tenant_id"`
	Vendor       string           `json:"vendor"`
	AccessToken  string           `json:"-"`
	RefreshToken string           `json:"-"`
	ExpiresAt    time.Time        `json:"expires_at"`
	Scope        string           `json:"scope,omitempty"`
	Status       ConnectionStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Expired reports whether the access token is past its expiry.
func (c *IntegrationConnection) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
