package repository

import (
	"context"
	"time"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// No business logic here, strictly persistence operations.

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// ConnectionRepository persists per-tenant vendor OAuth connections.
type ConnectionRepository interface {
	// Upsert inserts or replaces the connection for (tenant, vendor).
	Upsert(ctx context.Context, conn *model.IntegrationConnection) (*model.IntegrationConnection, error)

	// FindByTenantVendor returns the connection for a tenant/vendor pair.
	FindByTenantVendor(ctx context.Context, tenantID, vendor string) (*model.IntegrationConnection, error)

	// UpdateTokens replaces the token fields after a refresh.
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error
}

// ApprovalRepository persists HITL approval requests and their audit events.
type ApprovalRepository interface {
	Create(ctx context.Context, req *model.ApprovalRequest) (*model.ApprovalRequest, error)
	FindByID(ctx context.Context, id string) (*model.ApprovalRequest, error)
	List(ctx context.Context, tenantID string, state model.ApprovalState, pq PageQuery) (*PageResult[model.ApprovalRequest], error)

	// UpdateState transitions a request, guarded by the expected current state.
	// Returns sql.ErrNoRows when the request is missing or not in fromState.
	UpdateState(ctx context.Context, id string, fromStates []model.ApprovalState, to model.ApprovalState) error

	// ListPendingBefore returns pending requests created before the cutoff,
	// used by the expiry sweep.
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.ApprovalRequest, error)

	AppendEvent(ctx context.Context, ev *model.ApprovalEvent) error
	Events(ctx context.Context, requestID string) ([]model.ApprovalEvent, error)
}

// ShipmentRepository persists fulfillment shipments.
type ShipmentRepository interface {
	Create(ctx context.Context, s *model.Shipment) (*model.Shipment, error)
	FindByID(ctx context.Context, id string) (*model.Shipment, error)
	List(ctx context.Context, tenantID string, pq PageQuery) (*PageResult[model.Shipment], error)

	// ListActive returns shipments not yet delivered, for the status poller.
	ListActive(ctx context.Context, limit int) ([]model.Shipment, error)

	UpdateStatus(ctx context.Context, id string, status model.ShipmentStatus) error
}

// AssetRepository persists content-asset metadata; the bytes live in object storage.
type AssetRepository interface {
	Create(ctx context.Context, a *model.ContentAsset) (*model.ContentAsset, error)
	FindByID(ctx context.Context, id string) (*model.ContentAsset, error)
	Delete(ctx context.Context, id string) error
}
