package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

func assetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "filename", "storage_path", "size", "content_type", "created_at",
	}).AddRow(
		"ast-1", "tnt-01", "banner.png", "assets/tnt-01/banner.png", int64(2048), "image/png", time.Now(),
	)
}

func TestAssetCreate(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAssetPostgres(db)

	dbMock.ExpectQuery(`INSERT INTO content_assets`).
		WithArgs("tnt-01", "banner.png", "assets/tnt-01/banner.png", int64(2048), "image/png").
		WillReturnRows(assetRows())

	out, err := repo.Create(context.Background(), &model.ContentAsset{
		TenantID:    "tnt-01",
		Filename:    "banner.png",
		StoragePath: "assets/tnt-01/banner.png",
		Size:        2048,
		ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "ast-1", out.ID)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAssetFindByID(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAssetPostgres(db)

	t.Run("found", func(t *testing.T) {
		dbMock.ExpectQuery(`SELECT .* FROM content_assets`).
			WithArgs("ast-1").
			WillReturnRows(assetRows())

		out, err := repo.FindByID(context.Background(), "ast-1")
		require.NoError(t, err)
		assert.Equal(t, "banner.png", out.Filename)
	})

	t.Run("not found", func(t *testing.T) {
		dbMock.ExpectQuery(`SELECT .* FROM content_assets`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestAssetDelete(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAssetPostgres(db)

	dbMock.ExpectExec(`DELETE FROM content_assets`).
		WithArgs("ast-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "ast-1"))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
