package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	dbh, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func countQuestions(t *testing.T, dbh *sql.DB) int {
	t.Helper()
	var n int
	if err := dbh.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

const insertQuestion = `INSERT INTO questions (text, points, type, created_at) VALUES ('q', 1, 'single_choice', 0)`

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	dbh := openMemory(t)

	err := WithTx(ctx, dbh, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insertQuestion)
		return err
	})
	if err != nil {
		t.Fatalf("commit path: %v", err)
	}
	if n := countQuestions(t, dbh); n != 1 {
		t.Fatalf("after commit: %d rows", n)
	}

	boom := errors.New("boom")
	err = WithTx(ctx, dbh, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertQuestion); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if n := countQuestions(t, dbh); n != 1 {
		t.Fatalf("after rollback: %d rows", n)
	}
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	dbh := openMemory(t)

	func() {
		defer func() { _ = recover() }()
		_ = WithTx(ctx, dbh, nil, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, insertQuestion); err != nil {
				return err
			}
			panic("halfway")
		})
	}()
	if n := countQuestions(t, dbh); n != 0 {
		t.Fatalf("panic left %d rows", n)
	}
}

func TestParseDriver(t *testing.T) {
	cases := map[string]Driver{"": DriverSQLite, "sqlite3": DriverSQLite, "PG": DriverPostgres, "pgx": DriverPostgres}
	for in, want := range cases {
		got, err := ParseDriver(in)
		if err != nil || got != want {
			t.Errorf("ParseDriver(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDriver("mysql"); err == nil {
		t.Errorf("expected error for mysql")
	}
}

func TestSQLitePoolIsSingleConnection(t *testing.T) {
	dbh := openMemory(t)
	if got := dbh.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d", got)
	}
}
