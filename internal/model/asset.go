package model

import "time"

// ContentAsset represents a creative file attached to an approval request,
// stored in object storage.
// This is a pure domain model with no database-specific dependencies or tags.
type ContentAsset struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
