package impostor

import (
	crand "crypto/rand"
	"math/rand/v2"
)

// Random is the source of every random choice a room makes. *rand.Rand from
// math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
	Perm(n int) []int
}

// NewRandom returns a ChaCha8 generator seeded from crypto/rand.
func NewRandom() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return rand.New(rand.NewChaCha8(seed))
}
