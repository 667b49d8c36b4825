package matching

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrLengthMismatch = errors.New("permutation length mismatch")
	ErrNotPermutation = errors.New("not a permutation")
)

// Permutation encodes a candidate pairing: request i is paired with
// counterpart p[i].
type Permutation []int

// Validate checks that p is a bijection over 0..n-1.
func (p Permutation) Validate(n int) error {
	if len(p) != n {
		return fmt.Errorf("%w: want %d, got %d", ErrLengthMismatch, n, len(p))
	}
	seen := make([]bool, n)
	for i, v := range p {
		if v < 0 || v >= n || seen[v] {
			return fmt.Errorf("%w: bad value %d at position %d", ErrNotPermutation, v, i)
		}
		seen[v] = true
	}
	return nil
}

// Clone returns a non-nil copy, empty when p is empty.
func (p Permutation) Clone() Permutation {
	c := make(Permutation, len(p))
	copy(c, p)
	return c
}

// key is a compact, comparable encoding of the permutation value.
func (p Permutation) key() string {
	buf := make([]byte, 0, len(p)*2)
	for _, v := range p {
		buf = binary.AppendUvarint(buf, uint64(v))
	}
	return string(buf)
}

func randomPermutation(n int, rng *rand.Rand) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	rng.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}
