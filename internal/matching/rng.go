package matching

import "math/rand"

// newRand returns a private source for one call. A zero seed draws a fresh
// seed from the process-wide source, which is safe for concurrent use.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = rand.Int63()
	}
	return rand.New(rand.NewSource(seed))
}
