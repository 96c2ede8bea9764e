package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-trainer/internal/db"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore persists questions and answers in the schema created by db.Open.
// Timestamps are stored as unix milliseconds.
type SQLStore struct {
	db *sql.DB
	q  querier
}

func NewSQLStore(dbh *sql.DB) *SQLStore {
	return &SQLStore{db: dbh, q: dbh}
}

const questionColumns = `id,text,points,type,last_asked_at,incorrect_count,last_incorrect_at,created_at,is_deleted,header1,header2`

func (s *SQLStore) ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error) {
	where, args := questionWhere(f)
	query := `SELECT ` + questionColumns + ` FROM questions` + where
	if f.OrderByIncorrect {
		query += ` ORDER BY incorrect_count DESC, id ASC`
	} else {
		query += ` ORDER BY id ASC`
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountQuestions(ctx context.Context, f QuestionFilter) (int, error) {
	where, args := questionWhere(f)
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&n)
	return n, err
}

func (s *SQLStore) GetQuestion(ctx context.Context, id int64) (Question, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *SQLStore) InsertQuestion(ctx context.Context, q Question) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `INSERT INTO questions
		(text,points,type,last_asked_at,incorrect_count,last_incorrect_at,created_at,is_deleted,header1,header2)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		q.Text, q.Points, string(q.Type), toMillis(q.LastAskedAt), q.IncorrectCount,
		toMillis(q.LastIncorrectAt), q.CreatedAt.UnixMilli(), q.IsDeleted, q.Header1, q.Header2,
	).Scan(&id)
	return id, err
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) error {
	return s.execOne(ctx, `UPDATE questions SET
		text=$1, points=$2, type=$3, last_asked_at=$4, incorrect_count=$5,
		last_incorrect_at=$6, is_deleted=$7, header1=$8, header2=$9
		WHERE id=$10`,
		q.Text, q.Points, string(q.Type), toMillis(q.LastAskedAt), q.IncorrectCount,
		toMillis(q.LastIncorrectAt), q.IsDeleted, q.Header1, q.Header2, q.ID)
}

func (s *SQLStore) MarkAsked(ctx context.Context, id int64, at time.Time) error {
	return s.execOne(ctx, `UPDATE questions SET last_asked_at=$1 WHERE id=$2`, at.UnixMilli(), id)
}

// AddIncorrect increments in SQL and returns the row as written.
func (s *SQLStore) AddIncorrect(ctx context.Context, id int64, at time.Time) (Question, error) {
	row := s.q.QueryRowContext(ctx, `UPDATE questions
		SET incorrect_count = incorrect_count + 1, last_incorrect_at=$1
		WHERE id=$2 RETURNING `+questionColumns, at.UnixMilli(), id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *SQLStore) MarkDeleted(ctx context.Context, id int64) error {
	return s.execOne(ctx, `UPDATE questions SET is_deleted=$1 WHERE id=$2`, true, id)
}

// execOne runs a single-row update; no affected row means ErrNotFound.
func (s *SQLStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListAnswers(ctx context.Context, f AnswerFilter) ([]Answer, error) {
	query := `SELECT id,question_id,text,is_correct,can_reorder,created_at FROM answers`
	var args []any
	if f.QuestionID != 0 {
		query += ` WHERE question_id=$1`
		args = append(args, f.QuestionID)
	}
	query += ` ORDER BY id ASC`
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Answer{}
	for rows.Next() {
		var a Answer
		var created int64
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect, &a.CanReorder, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertAnswer(ctx context.Context, a Answer) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `INSERT INTO answers (question_id,text,is_correct,can_reorder,created_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		a.QuestionID, a.Text, a.IsCorrect, a.CanReorder, a.CreatedAt.UnixMilli(),
	).Scan(&id)
	return id, err
}

// WithinTx runs fn against a Store bound to a single transaction. Nested
// calls reuse the outer transaction.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}
	return db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		return fn(&SQLStore{db: s.db, q: tx})
	})
}

func questionWhere(f QuestionFilter) (string, []any) {
	var conds []string
	var args []any
	if f.ActiveOnly {
		args = append(args, false)
		conds = append(conds, fmt.Sprintf("is_deleted=$%d", len(args)))
	}
	if f.IncorrectOnly {
		conds = append(conds, "incorrect_count > 0")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(sc scanner) (Question, error) {
	var (
		q                    Question
		typ                  string
		lastAsked, lastWrong sql.NullInt64
		created              int64
	)
	if err := sc.Scan(&q.ID, &q.Text, &q.Points, &typ, &lastAsked, &q.IncorrectCount,
		&lastWrong, &created, &q.IsDeleted, &q.Header1, &q.Header2); err != nil {
		return Question{}, err
	}
	q.Type = QuestionType(typ)
	q.LastAskedAt = fromMillis(lastAsked)
	q.LastIncorrectAt = fromMillis(lastWrong)
	q.CreatedAt = time.UnixMilli(created).UTC()
	return q, nil
}

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
