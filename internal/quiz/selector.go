package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/mind-engage/mindengage-trainer/internal/logger"
)

// Branch draw: one value out of branchCount selects the uniform exploration
// pick, the others select the heaviest question.
const (
	branchCount   = 3
	exploreBranch = 0
)

// Exclusions is the set of question ids already shown in one session.
type Exclusions struct {
	ids map[int64]struct{}
}

func NewExclusions() *Exclusions {
	return &Exclusions{ids: map[int64]struct{}{}}
}

func (e *Exclusions) Add(id int64) { e.ids[id] = struct{}{} }

func (e *Exclusions) Has(id int64) bool {
	_, ok := e.ids[id]
	return ok
}

func (e *Exclusions) Len() int { return len(e.ids) }
func (e *Exclusions) Clear()   { clear(e.ids) }

// Selector picks questions for one session. It is not safe for concurrent
// use; callers serialise access per session.
type Selector struct {
	store    Store
	rnd      Rand
	now      func() time.Time
	log      *logger.Logger
	excluded *Exclusions
}

// NewSelector returns a Selector with an empty exclusion set.
func NewSelector(store Store, opts ...Option) *Selector {
	return NewSelectorWith(store, NewExclusions(), opts...)
}

// NewSelectorWith uses a caller-owned exclusion set.
func NewSelectorWith(store Store, excluded *Exclusions, opts ...Option) *Selector {
	c := newConfig(opts)
	return &Selector{store: store, rnd: c.rnd, now: c.now, log: c.log, excluded: excluded}
}

func (s *Selector) Exclusions() *Exclusions { return s.excluded }

// Reset starts a new round: every active question becomes eligible again.
func (s *Selector) Reset() { s.excluded.Clear() }

// Next is the weighted "exam" pick. With probability 2/3 it takes the
// highest-weight eligible question (random among ties), otherwise a uniform
// pick over all eligible questions.
func (s *Selector) Next(ctx context.Context) (Question, error) {
	eligible, err := s.eligible(ctx)
	if err != nil {
		return Question{}, err
	}

	branchDraw := s.rnd.IntN(branchCount)
	var pick Question
	if branchDraw == exploreBranch {
		pick = eligible[s.rnd.IntN(len(eligible))]
	} else {
		heaviest := Heaviest(eligible)
		pick = heaviest[s.rnd.IntN(len(heaviest))]
	}
	s.log.Debug("question selected", "question_id", pick.ID, "explore", branchDraw == exploreBranch, "eligible", len(eligible))
	return s.mark(ctx, pick)
}

// Random is the unweighted "practice" pick.
func (s *Selector) Random(ctx context.Context) (Question, error) {
	eligible, err := s.eligible(ctx)
	if err != nil {
		return Question{}, err
	}
	return s.mark(ctx, eligible[s.rnd.IntN(len(eligible))])
}

// Heaviest returns the questions sharing the maximum Weight, in input order.
func Heaviest(qs []Question) []Question {
	var out []Question
	best := -1.0
	for _, q := range qs {
		w := Weight(q)
		switch {
		case w > best:
			best = w
			out = append(out[:0], q)
		case w == best:
			out = append(out, q)
		}
	}
	return out
}

func (s *Selector) eligible(ctx context.Context) ([]Question, error) {
	all, err := s.store.ListQuestions(ctx, QuestionFilter{ActiveOnly: true})
	if err != nil {
		s.log.Error("list questions failed", "error", err)
		return nil, storageErr("list questions", err)
	}
	out := all[:0]
	for _, q := range all {
		if !q.IsDeleted && !s.excluded.Has(q.ID) {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoEligibleQuestions
	}
	return out, nil
}

// mark persists last-asked, then excludes the question from the rest of the
// session. Only last_asked_at is written; counters in q may be stale.
func (s *Selector) mark(ctx context.Context, q Question) (Question, error) {
	now := s.now()
	if err := s.store.MarkAsked(ctx, q.ID, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Question{}, ErrNotFound
		}
		s.log.Error("update last asked failed", "question_id", q.ID, "error", err)
		return Question{}, storageErr("mark asked", err)
	}
	q.LastAskedAt = &now
	s.excluded.Add(q.ID)
	return q, nil
}
