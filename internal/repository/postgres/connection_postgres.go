package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

// ConnectionPostgres is a PostgreSQL implementation of repository.ConnectionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ConnectionPostgres struct {
	db *sql.DB
}

// NewConnectionPostgres creates a new ConnectionPostgres repository.
func NewConnectionPostgres(db *sql.DB) *ConnectionPostgres {
	return &ConnectionPostgres{db: db}
}

var _ repository.ConnectionRepository = (*ConnectionPostgres)(nil)

const connectionColumns = `id, tenant_id, vendor, access_token, refresh_token, expires_at, scope, status, created_at, updated_at`

// Upsert inserts or replaces the connection row for (tenant, vendor).
func (r *ConnectionPostgres) Upsert(ctx context.Context, conn *model.IntegrationConnection) (*model.IntegrationConnection, error) {
	const q = `
		INSERT INTO integration_connections (tenant_id, vendor, access_token, refresh_token, expires_at, scope, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, vendor) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at    = EXCLUDED.expires_at,
			scope         = EXCLUDED.scope,
			status        = EXCLUDED.status,
			updated_at    = now()
		RETURNING ` + connectionColumns
	row := r.db.QueryRowContext(ctx, q,
		conn.TenantID,
		conn.Vendor,
		conn.AccessToken,
		conn.RefreshToken,
		conn.ExpiresAt,
		conn.Scope,
		conn.Status,
	)
	return scanConnection(row)
}

// FindByTenantVendor fetches the connection for a tenant/vendor pair.
func (r *ConnectionPostgres) FindByTenantVendor(ctx context.Context, tenantID, vendor string) (*model.IntegrationConnection, error) {
	const q = `
		SELECT ` + connectionColumns + `
		FROM integration_connections
		WHERE tenant_id = $1 AND vendor = $2
	`
	return scanConnection(r.db.QueryRowContext(ctx, q, tenantID, vendor))
}

// UpdateTokens replaces the token fields after a refresh.
func (r *ConnectionPostgres) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	const q = `
		UPDATE integration_connections
		SET access_token = $2, refresh_token = $3, expires_at = $4, status = 'active', updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, accessToken, refreshToken, expiresAt)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*model.IntegrationConnection, error) {
	var c model.IntegrationConnection
	var expiresAt sql.NullTime
	if err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.Vendor,
		&c.AccessToken,
		&c.RefreshToken,
		&expiresAt,
		&c.Scope,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		c.ExpiresAt = expiresAt.Time
	}
	return &c, nil
}
