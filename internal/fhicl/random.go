package fhicl

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSeedKey is the placeholder filled from the RandomSource when the
// caller leaves it out.
const RandomSeedKey = "random_seed"

// SeedBound is the exclusive upper bound of generated seeds.
const SeedBound = 10000

// RandomSource produces random seeds. *rand.Rand satisfies it, but is not
// safe for concurrent use; prefer NewRandom.
type RandomSource interface {
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRandom returns a goroutine-safe RandomSource with a fixed seed.
func NewRandom(seed int64) RandomSource {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

var (
	defaultOnce sync.Once
	defaultRand RandomSource
)

// DefaultRandom returns the process-wide time-seeded source. Only the
// outermost caller (the CLI) should reach for it.
func DefaultRandom() RandomSource {
	defaultOnce.Do(func() {
		defaultRand = NewRandom(time.Now().UnixNano())
	})
	return defaultRand
}
