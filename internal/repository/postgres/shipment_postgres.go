package postgres

import (
	"context"
	"database/sql"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

// ShipmentPostgres is a PostgreSQL implementation of repository.ShipmentRepository.
type ShipmentPostgres struct {
	db *sql.DB
}

// NewShipmentPostgres creates a new ShipmentPostgres repository.
func NewShipmentPostgres(db *sql.DB) *ShipmentPostgres {
	return &ShipmentPostgres{db: db}
}

var _ repository.ShipmentRepository = (*ShipmentPostgres)(nil)

const shipmentColumns = `id, tenant_id, order_ref, carrier, warehouse, method, weight_kg, distance_km, cost, status, transit_days, created_at, updated_at`

// Create inserts a new shipment row and returns the stored record.
func (r *ShipmentPostgres) Create(ctx context.Context, s *model.Shipment) (*model.Shipment, error) {
	const q = `
		INSERT INTO shipments (tenant_id, order_ref, carrier, warehouse, method, weight_kg, distance_km, cost, status, transit_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + shipmentColumns
	row := r.db.QueryRowContext(ctx, q,
		s.TenantID,
		s.OrderRef,
		s.Carrier,
		s.Warehouse,
		s.Method,
		s.WeightKg,
		s.DistanceKm,
		s.Cost,
		s.Status,
		s.TransitDays,
	)
	return scanShipment(row)
}

// FindByID fetches a single shipment by its ID.
func (r *ShipmentPostgres) FindByID(ctx context.Context, id string) (*model.Shipment, error) {
	const q = `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE id = $1
	`
	return scanShipment(r.db.QueryRowContext(ctx, q, id))
}

// List returns a tenant's shipments using LIMIT/OFFSET pagination and a total count.
func (r *ShipmentPostgres) List(ctx context.Context, tenantID string, pq repository.PageQuery) (*repository.PageResult[model.Shipment], error) {
	const qCount = `SELECT COUNT(*) FROM shipments WHERE tenant_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tenantID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, tenantID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Shipment, 0)
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Shipment]{Items: items, Total: total}, nil
}

// ListActive returns shipments not yet delivered, oldest first.
func (r *ShipmentPostgres) ListActive(ctx context.Context, limit int) ([]model.Shipment, error) {
	const q = `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE status <> 'delivered'
		ORDER BY updated_at ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Shipment, 0)
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

// UpdateStatus advances a shipment's delivery status.
func (r *ShipmentPostgres) UpdateStatus(ctx context.Context, id string, status model.ShipmentStatus) error {
	const q = `
		UPDATE shipments
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, status)
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

func scanShipment(row rowScanner) (*model.Shipment, error) {
	var s model.Shipment
	if err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.OrderRef,
		&s.Carrier,
		&s.Warehouse,
		&s.Method,
		&s.WeightKg,
		&s.DistanceKm,
		&s.Cost,
		&s.Status,
		&s.TransitDays,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
