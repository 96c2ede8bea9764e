package quiz

import (
	"math/rand/v2"
	"sync"
)

// Rand is the random source used for selection and shuffling.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns an independently seeded source, one per session.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeededRand returns a deterministic source for tests and replays.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle permutes xs in place with a Fisher-Yates pass.
func Shuffle[T any](r Rand, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// lockedRand serialises access to a source shared by concurrent callers.
type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
