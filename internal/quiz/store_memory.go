package quiz

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps questions and answers in process memory. It has no
// transactions, so a failed multi-step save may leave earlier inserts behind.
type MemoryStore struct {
	mu        sync.RWMutex
	questions map[int64]Question
	answers   map[int64]Answer
	nextQ     int64
	nextA     int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions: map[int64]Question{},
		answers:   map[int64]Answer{},
	}
}

func (m *MemoryStore) ListQuestions(_ context.Context, f QuestionFilter) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.questions))
	for _, q := range m.questions {
		if matches(q, f) {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.OrderByIncorrect && out[i].IncorrectCount != out[j].IncorrectCount {
			return out[i].IncorrectCount > out[j].IncorrectCount
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemoryStore) CountQuestions(ctx context.Context, f QuestionFilter) (int, error) {
	f.Limit = 0
	qs, err := m.ListQuestions(ctx, f)
	return len(qs), err
}

func (m *MemoryStore) GetQuestion(_ context.Context, id int64) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return cloneQuestion(q), nil
}

func (m *MemoryStore) InsertQuestion(_ context.Context, q Question) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextQ++
	q.ID = m.nextQ
	m.questions[q.ID] = cloneQuestion(q)
	return q.ID, nil
}

func (m *MemoryStore) UpdateQuestion(_ context.Context, q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		return ErrNotFound
	}
	m.questions[q.ID] = cloneQuestion(q)
	return nil
}

func (m *MemoryStore) MarkAsked(_ context.Context, id int64, at time.Time) error {
	return m.modify(id, func(q *Question) { q.LastAskedAt = &at })
}

func (m *MemoryStore) AddIncorrect(_ context.Context, id int64, at time.Time) (Question, error) {
	var out Question
	err := m.modify(id, func(q *Question) {
		q.IncorrectCount++
		q.LastIncorrectAt = &at
		out = cloneQuestion(*q)
	})
	return out, err
}

func (m *MemoryStore) MarkDeleted(_ context.Context, id int64) error {
	return m.modify(id, func(q *Question) { q.IsDeleted = true })
}

// modify applies fn to the stored question under the write lock.
func (m *MemoryStore) modify(id int64, fn func(*Question)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return ErrNotFound
	}
	fn(&q)
	m.questions[id] = q
	return nil
}

func (m *MemoryStore) ListAnswers(_ context.Context, f AnswerFilter) ([]Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Answer{}
	for _, a := range m.answers {
		if f.QuestionID == 0 || a.QuestionID == f.QuestionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) InsertAnswer(_ context.Context, a Answer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextA++
	a.ID = m.nextA
	m.answers[a.ID] = a
	return a.ID, nil
}

func matches(q Question, f QuestionFilter) bool {
	if f.ActiveOnly && q.IsDeleted {
		return false
	}
	if f.IncorrectOnly && q.IncorrectCount <= 0 {
		return false
	}
	return true
}

// cloneQuestion detaches the timestamp pointers so callers cannot mutate
// stored state through them.
func cloneQuestion(q Question) Question {
	if q.LastAskedAt != nil {
		t := *q.LastAskedAt
		q.LastAskedAt = &t
	}
	if q.LastIncorrectAt != nil {
		t := *q.LastIncorrectAt
		q.LastIncorrectAt = &t
	}
	return q
}
