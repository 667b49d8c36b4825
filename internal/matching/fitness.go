package matching

import (
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// evaluator scores pairs and individuals for one call. Its caches are keyed by
// indices into the padded sides and are meaningless for any other input.
type evaluator struct {
	requests     []*Item
	counterparts []*Item
	n            int
	now          time.Time
	bonus        float64

	pairs       []float64
	known       []bool
	individuals map[string]float64
}

func newEvaluator(requests, counterparts []*Item, now time.Time, bonus float64) *evaluator {
	n := len(requests)

	return &evaluator{
		requests:     requests,
		counterparts: counterparts,
		n:            n,
		now:          now,
		bonus:        bonus,
		pairs:        make([]float64, n*n),
		known:        make([]bool, n*n),
		individuals:  make(map[string]float64),
	}
}

// pair returns the fitness of pairing requests[i] with counterparts[j].
// Zero means the pair must never be made.
func (e *evaluator) pair(i, j int) float64 {
	idx := i*e.n + j
	if e.known[idx] {
		return e.pairs[idx]
	}

	f := pairFitness(e.requests[i], e.counterparts[j], e.now, e.bonus)
	e.pairs[idx] = f
	e.known[idx] = true
	return f
}

func (e *evaluator) individual(p Permutation) float64 {
	key := p.key()
	if f, ok := e.individuals[key]; ok {
		return f
	}

	fitness := 0.0
	for i, j := range p {
		fitness += e.pair(i, j)
	}

	e.individuals[key] = fitness
	return fitness
}

func pairFitness(request, counterpart *Item, now time.Time, bonus float64) float64 {
	if request == nil || counterpart == nil {
		return 0
	}

	if request.Owner == counterpart.Owner {
		return 0
	}

	ratio := similarity(request.Tags, counterpart.Tags)

	age := waited(request.CreatedAt, now) + waited(counterpart.CreatedAt, now)

	affinity := 1.0
	if request.Affiliated {
		affinity *= bonus
		if counterpart.Affiliated {
			affinity *= bonus
		}
	}

	return ratio * age * affinity
}

// similarity is the order-sensitive sequence similarity ratio in [0,1].
func similarity(a, b []string) float64 {
	return difflib.NewMatcher(a, b).Ratio()
}

// waited is the age in seconds, zero for entries created after now.
func waited(created, now time.Time) float64 {
	return max(now.Sub(created).Seconds(), 0)
}
