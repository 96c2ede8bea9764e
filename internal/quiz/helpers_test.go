package quiz

import (
	"context"
	"errors"
	"testing"
	"time"
)

/* ---------------- fakes ---------------- */

// scriptedRand replays vals (mod n) in order, wrapping around.
type scriptedRand struct {
	vals []int
	i    int
}

func (r *scriptedRand) IntN(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

// faultyStore wraps a MemoryStore and fails selected calls.
type faultyStore struct {
	*MemoryStore
	failList         error
	failUpdate       error // applies to every question write
	failAnswerInsert int // fail the n-th answer insert (1-based), 0 = never
	answerInserts    int
}

func (f *faultyStore) ListQuestions(ctx context.Context, qf QuestionFilter) ([]Question, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	return f.MemoryStore.ListQuestions(ctx, qf)
}

func (f *faultyStore) UpdateQuestion(ctx context.Context, q Question) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	return f.MemoryStore.UpdateQuestion(ctx, q)
}

func (f *faultyStore) MarkAsked(ctx context.Context, id int64, at time.Time) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	return f.MemoryStore.MarkAsked(ctx, id, at)
}

func (f *faultyStore) AddIncorrect(ctx context.Context, id int64, at time.Time) (Question, error) {
	if f.failUpdate != nil {
		return Question{}, f.failUpdate
	}
	return f.MemoryStore.AddIncorrect(ctx, id, at)
}

func (f *faultyStore) MarkDeleted(ctx context.Context, id int64) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	return f.MemoryStore.MarkDeleted(ctx, id)
}

func (f *faultyStore) InsertAnswer(ctx context.Context, a Answer) (int64, error) {
	f.answerInserts++
	if f.failAnswerInsert > 0 && f.answerInserts == f.failAnswerInsert {
		return 0, errors.New("disk full")
	}
	return f.MemoryStore.InsertAnswer(ctx, a)
}

/* ---------------- fixtures ---------------- */

var t0 = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

// stepClock returns t0, t0+1m, t0+2m, ...
func stepClock() func() time.Time {
	n := 0
	return func() time.Time {
		t := t0.Add(time.Duration(n) * time.Minute)
		n++
		return t
	}
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func singleChoice(text string) (Question, []Answer) {
	return Question{Text: text, Points: 5, Type: TypeSingleChoice},
		[]Answer{{Text: "Paris", IsCorrect: true}, {Text: "Lyon"}}
}

func mustSave(t *testing.T, svc *Service, q Question, answers []Answer) Question {
	t.Helper()
	saved, err := svc.SaveQuestion(context.Background(), q, answers)
	if err != nil {
		t.Fatalf("save %q: %v", q.Text, err)
	}
	return saved
}

func timePtr(t time.Time) *time.Time { return &t }

// interleavedStore runs beforeMarkAsked between a selector's list and its
// last-asked write, standing in for another session acting in that gap.
type interleavedStore struct {
	Store
	beforeMarkAsked func()
}

func (s *interleavedStore) MarkAsked(ctx context.Context, id int64, at time.Time) error {
	if s.beforeMarkAsked != nil {
		s.beforeMarkAsked()
	}
	return s.Store.MarkAsked(ctx, id, at)
}
