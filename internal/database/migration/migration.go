package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_integration_connections",
		SQL: `CREATE TABLE IF NOT EXISTS integration_connections (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id     TEXT        NOT NULL,
  vendor        TEXT        NOT NULL,
  access_token  TEXT        NOT NULL,
  refresh_token TEXT        NOT NULL DEFAULT '',
  expires_at    TIMESTAMPTZ,
  scope         TEXT        NOT NULL DEFAULT '',
  status        TEXT        NOT NULL DEFAULT 'pending',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (tenant_id, vendor)
);`,
	},
	{
		Name: "create_table_approval_requests",
		SQL: `CREATE TABLE IF NOT EXISTS approval_requests (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id      TEXT        NOT NULL,
  kind           TEXT        NOT NULL,
  title          TEXT        NOT NULL,
  body           TEXT        NOT NULL,
  risk_score     INT         NOT NULL DEFAULT 0,
  risk_level     TEXT        NOT NULL,
  state          TEXT        NOT NULL,
  reviewer_roles TEXT        NOT NULL DEFAULT '',
  asset_id       UUID,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_approval_requests_tenant_state",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_approval_requests_tenant_state ON approval_requests (tenant_id, state);`,
	},
	{
		Name: "create_table_approval_events",
		SQL: `CREATE TABLE IF NOT EXISTS approval_events (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  request_id UUID        NOT NULL REFERENCES approval_requests(id) ON DELETE CASCADE,
  actor      TEXT        NOT NULL,
  action     TEXT        NOT NULL,
  note       TEXT        NOT NULL DEFAULT '',
  from_state TEXT        NOT NULL,
  to_state   TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_approval_events_request",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_approval_events_request ON approval_events (request_id, created_at);`,
	},
	{
		Name: "create_table_shipments",
		SQL: `CREATE TABLE IF NOT EXISTS shipments (
  id           UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id    TEXT             NOT NULL,
  order_ref    TEXT             NOT NULL,
  carrier      TEXT             NOT NULL,
  warehouse    TEXT             NOT NULL,
  method       TEXT             NOT NULL,
  weight_kg    DOUBLE PRECISION NOT NULL CHECK (weight_kg > 0),
  distance_km  DOUBLE PRECISION NOT NULL CHECK (distance_km >= 0),
  cost         DOUBLE PRECISION NOT NULL,
  status       TEXT             NOT NULL DEFAULT 'created',
  transit_days INT              NOT NULL DEFAULT 0,
  created_at   TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_shipments_tenant_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_shipments_tenant_status ON shipments (tenant_id, status);`,
	},
	{
		Name: "create_table_content_assets",
		SQL: `CREATE TABLE IF NOT EXISTS content_assets (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id    TEXT        NOT NULL,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated checks if the 'approval_requests' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.approval_requests') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
