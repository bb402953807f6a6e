// Package roller provides dice.Roller implementations for the turn engine.
//
// The engine never reaches for ambient randomness; every shuffle, ambush
// roll, targeting roll, and evasion die goes through an injected
// dice.Roller so resolution is deterministic under a seeded roller.
package roller

import (
	"math/rand"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/shuffleraid/raid-api/internal/errors"
)

// Seeded implements dice.Roller backed by a seedable PRNG
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ dice.Roller = (*Seeded)(nil)

// NewSeeded creates a roller seeded with the given value
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a uniform value in [1, size]
func (r *Seeded) Roll(size int) (int, error) {
	if size < 1 {
		return 0, errors.InvalidArgumentf("die size must be positive, got %d", size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(size) + 1, nil
}

// RollN returns count uniform values in [1, size]
func (r *Seeded) RollN(count, size int) ([]int, error) {
	if count < 1 {
		return nil, errors.InvalidArgumentf("roll count must be positive, got %d", count)
	}
	out := make([]int, count)
	for i := range out {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
