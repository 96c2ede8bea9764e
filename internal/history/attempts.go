package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Event is one graded submission.
type Event struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	QuestionID int64     `json:"question_id"`
	Correct    bool      `json:"correct"`
	Points     float64   `json:"points"`
	MaxPoints  float64   `json:"max_points"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repo is an append-only log of submissions kept in the attempt_log table.
type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db, now: time.Now} }

func (r *Repo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attempt_log (session_id, question_id, correct, points, max_points, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.SessionID, e.QuestionID, e.Correct, e.Points, e.MaxPoints, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Recent returns the newest events first. An empty sessionID means all
// sessions; limit <= 0 means 100.
func (r *Repo) Recent(ctx context.Context, sessionID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, question_id, correct, points, max_points, created_at
		 FROM attempt_log
		 WHERE $1 = '' OR session_id = $1
		 ORDER BY id DESC LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var created int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.QuestionID, &e.Correct, &e.Points, &e.MaxPoints, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
