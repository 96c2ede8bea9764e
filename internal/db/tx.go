package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// WithTx runs fn in one transaction: committed when fn returns nil, rolled
// back on error or panic.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(*sql.Tx) error) error {
	if db == nil {
		return errors.New("db: nil handle")
	}
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("db: begin: %w", err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db: commit: %w", err)
	}
	return nil
}

type poolSettings struct {
	maxOpen, maxIdle   int
	connLife, idleLife time.Duration
}

// sqlite allows one writer and ":memory:" is private to its connection, so
// the pool holds exactly one long-lived connection.
var pools = map[Driver]poolSettings{
	DriverSQLite:   {maxOpen: 1, maxIdle: 1},
	DriverPostgres: {maxOpen: 20, maxIdle: 10, connLife: 45 * time.Minute, idleLife: 15 * time.Minute},
}

func tunePool(driver Driver, db *sql.DB) {
	p := pools[driver]
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.connLife)
	db.SetConnMaxIdleTime(p.idleLife)
}

var sqlitePragmas = []string{
	"journal_mode = WAL",
	"synchronous = NORMAL",
	"busy_timeout = 5000",
	"temp_store = MEMORY",
}

func applySQLitePragmas(ctx context.Context, db *sql.DB) error {
	for _, p := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, "PRAGMA "+p); err != nil {
			return fmt.Errorf("db: pragma %s: %w", p, err)
		}
	}
	return nil
}
