package quiz

import (
	"context"
	"time"
)

// QuestionFilter is the predicate understood by every Store. Zero value
// matches all questions in id order.
type QuestionFilter struct {
	ActiveOnly       bool // is_deleted = false
	IncorrectOnly    bool // incorrect_count > 0
	OrderByIncorrect bool // incorrect_count DESC, id ASC
	Limit            int  // 0 = no limit
}

type AnswerFilter struct {
	QuestionID int64
}

// Store is the persistence port used by the engine. Every call taking an id
// returns ErrNotFound when the id does not resolve.
//
// MarkAsked, AddIncorrect and MarkDeleted each write only their own columns,
// so concurrent sessions cannot overwrite each other's counters.
// UpdateQuestion replaces the whole record.
type Store interface {
	ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error)
	CountQuestions(ctx context.Context, f QuestionFilter) (int, error)
	GetQuestion(ctx context.Context, id int64) (Question, error)
	InsertQuestion(ctx context.Context, q Question) (int64, error)
	UpdateQuestion(ctx context.Context, q Question) error
	MarkAsked(ctx context.Context, id int64, at time.Time) error
	AddIncorrect(ctx context.Context, id int64, at time.Time) (Question, error)
	MarkDeleted(ctx context.Context, id int64) error

	ListAnswers(ctx context.Context, f AnswerFilter) ([]Answer, error)
	InsertAnswer(ctx context.Context, a Answer) (int64, error)
}

// TxStore is implemented by stores that can scope several writes in one
// transaction. fn receives a Store bound to that transaction.
type TxStore interface {
	Store
	WithinTx(ctx context.Context, fn func(Store) error) error
}
