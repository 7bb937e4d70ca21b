package shared

import (
	"math/rand/v2"
	"time"
)

// Source supplies the randomness for shuffling and for the order in which a
// won pot is returned to a hand. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a PCG generator for seed. A zero seed is replaced by the
// wall clock.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
