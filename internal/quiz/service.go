package quiz

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/mind-engage/mindengage-trainer/internal/grading"
	"github.com/mind-engage/mindengage-trainer/internal/logger"
)

// Service exposes the trainer operations over a Store.
type Service struct {
	store  Store
	now    func() time.Time
	rnd    Rand
	log    *logger.Logger
	grader grading.Grader
}

func NewService(store Store, opts ...Option) *Service {
	c := newConfig(opts)
	return &Service{
		store:  store,
		now:    c.now,
		rnd:    &lockedRand{r: c.rnd},
		log:    c.log,
		grader: c.grader,
	}
}

// NewSelector starts a session selector sharing the service's store, clock
// and logger. r must not be shared with another session.
func (s *Service) NewSelector(r Rand) *Selector {
	return NewSelector(s.store, WithRand(r), WithClock(s.now), WithLogger(s.log))
}

// SaveQuestion validates q and answers, then inserts the question followed by
// its answers. When the store supports transactions the inserts are atomic;
// otherwise a failure leaves the inserts made so far in place.
func (s *Service) SaveQuestion(ctx context.Context, q Question, answers []Answer) (Question, error) {
	if v := Validate(q, answers); len(v) > 0 {
		return Question{}, &ValidationError{Violations: v}
	}

	now := s.now()
	q.ID = 0
	q.CreatedAt = now

	insert := func(st Store) error {
		id, err := st.InsertQuestion(ctx, q)
		if err != nil {
			return storageErr("insert question", err)
		}
		q.ID = id
		for _, a := range answers {
			a.QuestionID = id
			a.CreatedAt = now
			if _, err := st.InsertAnswer(ctx, a); err != nil {
				return storageErr("insert answer", err)
			}
		}
		return nil
	}

	var err error
	if ts, ok := s.store.(TxStore); ok {
		err = ts.WithinTx(ctx, insert)
	} else {
		err = insert(s.store)
	}
	if err != nil {
		if !errors.Is(err, ErrStorage) {
			err = storageErr("save question", err)
		}
		s.log.Error("save question failed", "error", err)
		return Question{}, err
	}
	return q, nil
}

// RecordIncorrect counts one more wrong response for the question. The
// increment happens in the store, so concurrent recorders never lose one.
func (s *Service) RecordIncorrect(ctx context.Context, id int64) (Question, error) {
	q, err := s.store.AddIncorrect(ctx, id, s.now())
	if err != nil {
		return Question{}, s.writeErr("record incorrect", id, err)
	}
	return q, nil
}

// SoftDelete hides a question from selection and reports. Answers stay.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	if err := s.store.MarkDeleted(ctx, id); err != nil {
		return s.writeErr("mark deleted", id, err)
	}
	return nil
}

func (s *Service) CountActiveQuestions(ctx context.Context) (int, error) {
	n, err := s.store.CountQuestions(ctx, QuestionFilter{ActiveOnly: true})
	if err != nil {
		return 0, storageErr("count questions", err)
	}
	return n, nil
}

// MostIncorrect lists active questions answered wrong at least once, most
// mistakes first. limit <= 0 returns all of them.
func (s *Service) MostIncorrect(ctx context.Context, limit int) ([]Question, error) {
	qs, err := s.store.ListQuestions(ctx, QuestionFilter{
		ActiveOnly:       true,
		IncorrectOnly:    true,
		OrderByIncorrect: true,
		Limit:            limit,
	})
	if err != nil {
		return nil, storageErr("list questions", err)
	}
	return qs, nil
}

// Outcome is the graded result of one submitted response.
type Outcome struct {
	QuestionID int64          `json:"question_id"`
	Correct    bool           `json:"correct"`
	Result     grading.Result `json:"result"`
	Incorrect  int            `json:"incorrect_count"`
}

// Submit grades the selected answers and records a mistake when the
// response did not earn full credit. For matching questions answerIDs are
// the rows placed under the first header.
func (s *Service) Submit(ctx context.Context, questionID int64, answerIDs []int64) (Outcome, error) {
	q, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return Outcome{}, err
	}
	answers, err := s.store.ListAnswers(ctx, AnswerFilter{QuestionID: questionID})
	if err != nil {
		return Outcome{}, storageErr("list answers", err)
	}
	if len(answers) == 0 {
		return Outcome{}, ErrNoAnswers
	}

	gq := grading.Q{Type: string(q.Type), Points: float64(q.Points)}
	for _, a := range answers {
		if a.IsCorrect {
			gq.AnswerKey = append(gq.AnswerKey, answerKey(a.ID))
		}
	}
	resp := make([]string, 0, len(answerIDs))
	for _, id := range answerIDs {
		resp = append(resp, answerKey(id))
	}

	res, err := s.grader.Grade(ctx, gq, resp)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{QuestionID: q.ID, Correct: res.Correct(), Result: res, Incorrect: q.IncorrectCount}
	if !out.Correct {
		updated, err := s.RecordIncorrect(ctx, q.ID)
		if err != nil {
			return Outcome{}, err
		}
		out.Incorrect = updated.IncorrectCount
	}
	return out, nil
}

func answerKey(id int64) string { return strconv.FormatInt(id, 10) }

func (s *Service) getQuestion(ctx context.Context, id int64) (Question, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Question{}, ErrNotFound
	}
	if err != nil {
		s.log.Error("get question failed", "question_id", id, "error", err)
		return Question{}, storageErr("get question", err)
	}
	return q, nil
}

func (s *Service) writeErr(op string, id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	s.log.Error(op+" failed", "question_id", id, "error", err)
	return storageErr(op, err)
}
