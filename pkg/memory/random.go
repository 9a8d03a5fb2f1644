package memory

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// RandomSource is implemented by memories that carry a random generator.
// Tests attach a seeded generator so that random functions are deterministic.
type RandomSource interface {
	Random() *rand.Rand
}

type randomMemory struct {
	Memory
	rnd *rand.Rand
}

func (m *randomMemory) Random() *rand.Rand {
	return m.rnd
}

// WithRandom returns m with r attached as its random generator.
// r is used only by evaluations over the returned memory and must not be
// shared between concurrent evaluations.
func WithRandom(m Memory, r *rand.Rand) Memory {
	return &randomMemory{Memory: m, rnd: r}
}

var (
	globalMu   sync.Mutex
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomNext returns an integer in [min, max) drawn from the generator
// reachable from m, or from a process-wide generator. min == max yields min.
func RandomNext(m Memory, min, max int64) int64 {
	if max <= min {
		return min
	}
	if src, ok := m.(RandomSource); ok {
		if r := src.Random(); r != nil {
			return between(r, min, max)
		}
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	return between(globalRand, min, max)
}

// between draws from [min, max) for min < max. The span is computed in
// uint64, so ranges wider than math.MaxInt64 are drawn by rejection.
func between(r *rand.Rand, min, max int64) int64 {
	span := uint64(max) - uint64(min)
	if span <= math.MaxInt64 {
		return min + r.Int63n(int64(span))
	}
	for {
		if u := r.Uint64(); u < span {
			return int64(uint64(min) + u)
		}
	}
}
