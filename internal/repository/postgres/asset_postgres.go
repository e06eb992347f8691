package postgres

import (
	"context"
	"database/sql"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

// AssetPostgres is a PostgreSQL implementation of repository.AssetRepository.
type AssetPostgres struct {
	db *sql.DB
}

// NewAssetPostgres creates a new AssetPostgres repository.
func NewAssetPostgres(db *sql.DB) *AssetPostgres {
	return &AssetPostgres{db: db}
}

var _ repository.AssetRepository = (*AssetPostgres)(nil)

// Create inserts a new content-asset row and returns the stored record.
func (r *AssetPostgres) Create(ctx context.Context, a *model.ContentAsset) (*model.ContentAsset, error) {
	const q = `
		INSERT INTO content_assets (tenant_id, filename, storage_path, size, content_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, tenant_id, filename, storage_path, size, content_type, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		a.TenantID,
		a.Filename,
		a.StoragePath,
		a.Size,
		a.ContentType,
	)
	var out model.ContentAsset
	if err := row.Scan(
		&out.ID,
		&out.TenantID,
		&out.Filename,
		&out.StoragePath,
		&out.Size,
		&out.ContentType,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single content asset by its ID.
func (r *AssetPostgres) FindByID(ctx context.Context, id string) (*model.ContentAsset, error) {
	const q = `
		SELECT id, tenant_id, filename, storage_path, size, content_type, created_at
		FROM content_assets
		WHERE id = $1
	`
	var a model.ContentAsset
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID,
		&a.TenantID,
		&a.Filename,
		&a.StoragePath,
		&a.Size,
		&a.ContentType,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes a content asset by ID. It returns nil if the row did not exist.
func (r *AssetPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM content_assets WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
