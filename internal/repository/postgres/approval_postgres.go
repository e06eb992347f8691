package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

// ApprovalPostgres is a PostgreSQL implementation of repository.ApprovalRepository.
// Reviewer roles are stored comma-joined in a TEXT column.
type ApprovalPostgres struct {
	db *sql.DB
}

// NewApprovalPostgres creates a new ApprovalPostgres repository.
func NewApprovalPostgres(db *sql.DB) *ApprovalPostgres {
	return &ApprovalPostgres{db: db}
}

var _ repository.ApprovalRepository = (*ApprovalPostgres)(nil)

const approvalColumns = `id, tenant_id, kind, title, body, risk_score, risk_level, state, reviewer_roles, asset_id, created_at, updated_at`

// Create inserts a new approval request row and returns the stored record.
func (r *ApprovalPostgres) Create(ctx context.Context, req *model.ApprovalRequest) (*model.ApprovalRequest, error) {
	const q = `
		INSERT INTO approval_requests (tenant_id, kind, title, body, risk_score, risk_level, state, reviewer_roles, asset_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
		RETURNING ` + approvalColumns
	row := r.db.QueryRowContext(ctx, q,
		req.TenantID,
		req.Kind,
		req.Title,
		req.Body,
		req.RiskScore,
		req.RiskLevel,
		req.State,
		strings.Join(req.ReviewerRoles, ","),
		req.AssetID,
	)
	return scanApproval(row)
}

// FindByID fetches a single approval request by its ID.
func (r *ApprovalPostgres) FindByID(ctx context.Context, id string) (*model.ApprovalRequest, error) {
	const q = `
		SELECT ` + approvalColumns + `
		FROM approval_requests
		WHERE id = $1
	`
	return scanApproval(r.db.QueryRowContext(ctx, q, id))
}

// List returns approval requests for a tenant using LIMIT/OFFSET pagination
// and a total count. Passing an empty state matches all states.
func (r *ApprovalPostgres) List(ctx context.Context, tenantID string, state model.ApprovalState, pq repository.PageQuery) (*repository.PageResult[model.ApprovalRequest], error) {
	const qCount = `
		SELECT COUNT(*) FROM approval_requests
		WHERE tenant_id = $1 AND ($2 = '' OR state = $2)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tenantID, string(state)).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + approvalColumns + `
		FROM approval_requests
		WHERE tenant_id = $1 AND ($2 = '' OR state = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, tenantID, string(state), pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ApprovalRequest, 0)
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ApprovalRequest]{Items: items, Total: total}, nil
}

// UpdateState transitions a request guarded by its expected current state.
func (r *ApprovalPostgres) UpdateState(ctx context.Context, id string, fromStates []model.ApprovalState, to model.ApprovalState) error {
	from := make([]string, len(fromStates))
	for i, s := range fromStates {
		from[i] = string(s)
	}
	const q = `
		UPDATE approval_requests
		SET state = $2, updated_at = now()
		WHERE id = $1 AND state = ANY(string_to_array($3, ','))
	`
	res, err := r.db.ExecContext(ctx, q, id, to, strings.Join(from, ","))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListPendingBefore returns pending requests created before the cutoff.
func (r *ApprovalPostgres) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.ApprovalRequest, error) {
	const q = `
		SELECT ` + approvalColumns + `
		FROM approval_requests
		WHERE state IN ('pending', 'in_review') AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ApprovalRequest, 0)
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *req)
	}
	return items, rows.Err()
}

// AppendEvent inserts one audit event row.
func (r *ApprovalPostgres) AppendEvent(ctx context.Context, ev *model.ApprovalEvent) error {
	const q = `
		INSERT INTO approval_events (request_id, actor, action, note, from_state, to_state)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, q, ev.RequestID, ev.Actor, ev.Action, ev.Note, ev.FromState, ev.ToState)
	return err
}

// Events returns the audit trail for a request, oldest first.
func (r *ApprovalPostgres) Events(ctx context.Context, requestID string) ([]model.ApprovalEvent, error) {
	const q = `
		SELECT id, request_id, actor, action, note, from_state, to_state, created_at
		FROM approval_events
		WHERE request_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, q, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.ApprovalEvent, 0)
	for rows.Next() {
		var ev model.ApprovalEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.RequestID,
			&ev.Actor,
			&ev.Action,
			&ev.Note,
			&ev.FromState,
			&ev.ToState,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func scanApproval(row rowScanner) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	var roles string
	var assetID sql.NullString
	if err := row.Scan(
		&req.ID,
		&req.TenantID,
		&req.Kind,
		&req.Title,
		&req.Body,
		&req.RiskScore,
		&req.RiskLevel,
		&req.State,
		&roles,
		&assetID,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if roles != "" {
		req.ReviewerRoles = strings.Split(roles, ",")
	}
	req.AssetID = assetID.String
	return &req, nil
}
