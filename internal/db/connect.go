package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver maps common aliases to a Driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "pg", "pgsql", "pgx":
		return DriverPostgres, nil
	}
	return "", fmt.Errorf("unsupported driver: %s", s)
}

// Open opens a DB, tunes the pool and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:trainer.db?mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/trainer?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	tunePool(driver, db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if driver == DriverSQLite {
		if err := applySQLitePragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
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

// answers.question_id is a lookup, not ownership: no cascading delete.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  text TEXT NOT NULL,
  points INTEGER NOT NULL,
  type TEXT NOT NULL,
  last_asked_at INTEGER,
  incorrect_count INTEGER NOT NULL DEFAULT 0,
  last_incorrect_at INTEGER,
  created_at INTEGER NOT NULL,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  header1 TEXT NOT NULL DEFAULT '',
  header2 TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS answers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_id INTEGER NOT NULL,
  text TEXT NOT NULL,
  is_correct INTEGER NOT NULL,
  can_reorder INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS answers_question_id ON answers(question_id);

CREATE TABLE IF NOT EXISTS attempt_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  question_id INTEGER NOT NULL,
  correct INTEGER NOT NULL,
  points REAL NOT NULL,
  max_points REAL NOT NULL,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS questions (
  id BIGSERIAL PRIMARY KEY,
  text TEXT NOT NULL,
  points INTEGER NOT NULL,
  type TEXT NOT NULL,
  last_asked_at BIGINT,
  incorrect_count INTEGER NOT NULL DEFAULT 0,
  last_incorrect_at BIGINT,
  created_at BIGINT NOT NULL,
  is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
  header1 TEXT NOT NULL DEFAULT '',
  header2 TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS answers (
  id BIGSERIAL PRIMARY KEY,
  question_id BIGINT NOT NULL,
  text TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL,
  can_reorder BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS answers_question_id ON answers(question_id);

CREATE TABLE IF NOT EXISTS attempt_log (
  id BIGSERIAL PRIMARY KEY,
  session_id TEXT NOT NULL,
  question_id BIGINT NOT NULL,
  correct BOOLEAN NOT NULL,
  points DOUBLE PRECISION NOT NULL,
  max_points DOUBLE PRECISION NOT NULL,
  created_at BIGINT NOT NULL
);
`
