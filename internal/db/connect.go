package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:social_energy.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/social_energy?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS user_profile (
  user_id TEXT PRIMARY KEY,
  trait_score INTEGER NOT NULL,
  label TEXT NOT NULL,
  raw_score INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS oauth_tokens (
  user_id TEXT PRIMARY KEY,
  access_token TEXT NOT NULL,
  refresh_token TEXT NOT NULL DEFAULT '',
  expiry TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
  id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  source TEXT NOT NULL,                -- 'google' or 'local'
  title TEXT NOT NULL,
  start TEXT NOT NULL,                 -- RFC3339, UTC
  "end" TEXT NOT NULL,                 -- RFC3339, UTC
  event_type TEXT NOT NULL,
  attendee_count INTEGER NOT NULL DEFAULT 0,
  has_video INTEGER NOT NULL DEFAULT 0,
  has_conference_link INTEGER NOT NULL DEFAULT 0,
  modifiers_json TEXT,
  updated_at TEXT NOT NULL,

  impact_score REAL,                   -- cached score, cleared on edit
  impact_label TEXT,
  reasons_json TEXT,
  scored_at TEXT,
  scoring_source TEXT,                 -- 'llm' or 'local'
  scoring_model TEXT,

  PRIMARY KEY (id, user_id)
);

CREATE TABLE IF NOT EXISTS google_overrides (
  user_id TEXT NOT NULL,
  event_id TEXT NOT NULL,
  event_type TEXT,
  attendee_count INTEGER,
  has_video INTEGER,
  has_conference_link INTEGER,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (user_id, event_id)
);

CREATE TABLE IF NOT EXISTS activity_log (
  "offset" INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  user_id TEXT NOT NULL,
  typ TEXT NOT NULL,                         -- e.g., CalendarSynced, EventScored
  key TEXT NOT NULL,                         -- natural key: event id or user id
  data TEXT NOT NULL,                        -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS user_profile (
  user_id TEXT PRIMARY KEY,
  trait_score INTEGER NOT NULL,
  label TEXT NOT NULL,
  raw_score INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS oauth_tokens (
  user_id TEXT PRIMARY KEY,
  access_token TEXT NOT NULL,
  refresh_token TEXT NOT NULL DEFAULT '',
  expiry TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
  id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  source TEXT NOT NULL,
  title TEXT NOT NULL,
  start TEXT NOT NULL,
  "end" TEXT NOT NULL,
  event_type TEXT NOT NULL,
  attendee_count INTEGER NOT NULL DEFAULT 0,
  has_video INTEGER NOT NULL DEFAULT 0,
  has_conference_link INTEGER NOT NULL DEFAULT 0,
  modifiers_json TEXT,
  updated_at TEXT NOT NULL,

  impact_score DOUBLE PRECISION,
  impact_label TEXT,
  reasons_json TEXT,
  scored_at TEXT,
  scoring_source TEXT,
  scoring_model TEXT,

  PRIMARY KEY (id, user_id)
);

CREATE TABLE IF NOT EXISTS google_overrides (
  user_id TEXT NOT NULL,
  event_id TEXT NOT NULL,
  event_type TEXT,
  attendee_count INTEGER,
  has_video INTEGER,
  has_conference_link INTEGER,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (user_id, event_id)
);

CREATE TABLE IF NOT EXISTS activity_log (
  "offset" BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
