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

func connectionRows(expiresAt any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "vendor", "access_token", "refresh_token",
		"expires_at", "scope", "status", "created_at", "updated_at",
	}).AddRow(
		"conn-1", "tnt-01", "facebook-ads", "at-1", "rt-1",
		expiresAt, "ads_read", "active", now, now,
	)
}

func TestConnectionUpsert(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewConnectionPostgres(db)

	expires := time.Now().Add(time.Hour)
	dbMock.ExpectQuery(`INSERT INTO integration_connections`).
		WithArgs("tnt-01", "facebook-ads", "at-1", "rt-1", expires, "ads_read", "active").
		WillReturnRows(connectionRows(expires))

	out, err := repo.Upsert(context.Background(), &model.IntegrationConnection{
		TenantID:     "tnt-01",
		Vendor:       "facebook-ads",
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    expires,
		Scope:        "ads_read",
		Status:       model.ConnectionActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "conn-1", out.ID)
	assert.Equal(t, model.ConnectionActive, out.Status)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestConnectionFindByTenantVendor(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewConnectionPostgres(db)

	t.Run("found with null expiry", func(t *testing.T) {
		dbMock.ExpectQuery(`SELECT .* FROM integration_connections`).
			WithArgs("tnt-01", "facebook-ads").
			WillReturnRows(connectionRows(nil))

		out, err := repo.FindByTenantVendor(context.Background(), "tnt-01", "facebook-ads")
		require.NoError(t, err)
		assert.Equal(t, "at-1", out.AccessToken)
		assert.True(t, out.ExpiresAt.IsZero())
	})

	t.Run("not found", func(t *testing.T) {
		dbMock.ExpectQuery(`SELECT .* FROM integration_connections`).
			WithArgs("tnt-01", "openai").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByTenantVendor(context.Background(), "tnt-01", "openai")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestConnectionUpdateTokens(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewConnectionPostgres(db)

	expires := time.Now().Add(time.Hour)

	t.Run("updated", func(t *testing.T) {
		dbMock.ExpectExec(`UPDATE integration_connections`).
			WithArgs("conn-1", "at-new", "rt-new", expires).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateTokens(context.Background(), "conn-1", "at-new", "rt-new", expires)
		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		dbMock.ExpectExec(`UPDATE integration_connections`).
			WithArgs("missing", "at-new", "rt-new", expires).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateTokens(context.Background(), "missing", "at-new", "rt-new", expires)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
