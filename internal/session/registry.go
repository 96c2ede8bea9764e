package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-trainer/internal/logger"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

var ErrNotFound = errors.New("session: not found")

// Factory builds the selector for a new session. Each call must return a
// selector with its own random source and exclusion set.
type Factory func() *quiz.Selector

type entry struct {
	mu       sync.Mutex
	sel      *quiz.Selector
	lastUsed time.Time
}

// Registry holds the live quiz sessions of one process. Exclusions live only
// in memory and are gone after a restart.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  Factory
	idle     time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewRegistry returns a registry evicting sessions idle for longer than idle
// (0 keeps them until Delete).
func NewRegistry(factory Factory, idle time.Duration, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		sessions: map[string]*entry{},
		factory:  factory,
		idle:     idle,
		now:      time.Now,
		log:      log,
	}
}

// Create starts a session and returns its id.
func (r *Registry) Create() string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = &entry{sel: r.factory(), lastUsed: r.now()}
	r.mu.Unlock()
	r.log.Debug("session created", "session_id", id)
	return id
}

// Do runs fn with the session's selector. Calls for the same session are
// serialised; different sessions run in parallel.
func (r *Registry) Do(id string, fn func(*quiz.Selector) error) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		e.lastUsed = r.now()
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sel)
}

// Reset clears the session's exclusion set.
func (r *Registry) Reset(id string) error {
	return r.Do(id, func(s *quiz.Selector) error {
		s.Reset()
		return nil
	})
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the configured timeout and
// returns how many were removed.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	if n > 0 {
		r.log.Info("idle sessions evicted", "count", n)
	}
	return n
}
