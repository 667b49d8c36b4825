package matching

import (
	"math/rand"
	"sort"
)

type individual struct {
	perm    Permutation
	fitness float64
}

// selectSUS draws k individuals by stochastic universal sampling: one random
// offset and k evenly spaced points over the cumulative fitness of the
// population sorted by descending fitness.
func selectSUS(population []individual, k int, rng *rand.Rand) []individual {
	if k <= 0 || len(population) == 0 {
		return nil
	}

	sorted := append([]individual(nil), population...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].fitness > sorted[b].fitness })

	total := 0.0
	for _, ind := range population {
		total += ind.fitness
	}

	distance := total / float64(k)
	start := rng.Float64() * distance

	chosen := make([]individual, 0, k)
	i := 0
	sum := sorted[0].fitness
	for n := 0; n < k; n++ {
		point := start + float64(n)*distance
		for sum < point && i < len(sorted)-1 {
			i++
			sum += sorted[i].fitness
		}
		chosen = append(chosen, sorted[i])
	}

	return chosen
}

// crossoverUPMX is the uniform partially matched crossover. Each position is
// picked with probability indpb; the picked values are exchanged between the
// children and the positions that held them are swapped back so both
// children stay permutations. The parents are not modified.
func crossoverUPMX(parent1, parent2 Permutation, indpb float64, rng *rand.Rand) (Permutation, Permutation, error) {
	if len(parent1) != len(parent2) {
		return nil, nil, ErrLengthMismatch
	}

	size := len(parent1)
	child1, child2 := parent1.Clone(), parent2.Clone()

	pos1, pos2 := make([]int, size), make([]int, size)
	for i := 0; i < size; i++ {
		pos1[child1[i]] = i
		pos2[child2[i]] = i
	}

	for i := 0; i < size; i++ {
		if rng.Float64() >= indpb {
			continue
		}

		v1, v2 := child1[i], child2[i]

		child1[i], child1[pos1[v2]] = v2, v1
		child2[i], child2[pos2[v1]] = v1, v2

		pos1[v1], pos1[v2] = pos1[v2], pos1[v1]
		pos2[v1], pos2[v2] = pos2[v2], pos2[v1]
	}

	return child1, child2, nil
}

// mutateShuffle swaps each position, with probability indpb, with another
// uniformly chosen position that is never the position itself.
func mutateShuffle(p Permutation, indpb float64, rng *rand.Rand) Permutation {
	mutant := p.Clone()
	size := len(mutant)
	if size < 2 {
		return mutant
	}

	for i := 0; i < size; i++ {
		if rng.Float64() >= indpb {
			continue
		}

		swap := rng.Intn(size - 1)
		if swap >= i {
			swap++
		}
		mutant[i], mutant[swap] = mutant[swap], mutant[i]
	}

	return mutant
}
