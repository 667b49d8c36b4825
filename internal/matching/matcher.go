package matching

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"
)

// Matcher pairs requests with counterparts using a permutation genetic
// algorithm. A Matcher holds no per-call state and is safe for concurrent use.
type Matcher struct {
	opts   Options
	logger *zap.Logger
}

// Report describes one matching run.
type Report struct {
	Pairs       []Pair
	BestFitness float64
	Generations int
	// History holds the best fitness seen after each generation.
	History []float64
	// ShortCircuit is set when the search was skipped for trivial input.
	ShortCircuit bool
}

func New(opts Options, logger *zap.Logger) (*Matcher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{opts: opts, logger: logger}, nil
}

// Match returns the pairs of the best pairing found. Pairs with zero fitness
// are left out. The inputs are not modified.
func (m *Matcher) Match(requests, counterparts []Item) ([]Pair, error) {
	report, err := m.Run(requests, counterparts)
	if err != nil {
		return nil, err
	}
	return report.Pairs, nil
}

// Run is Match with the search statistics.
func (m *Matcher) Run(requests, counterparts []Item) (*Report, error) {
	m.logger.Info("running genetic matching",
		zap.Int("requests", len(requests)),
		zap.Int("counterparts", len(counterparts)),
	)

	n := max(len(requests), len(counterparts))
	if len(requests) == 0 || len(counterparts) == 0 {
		m.logger.Info("nothing to match", zap.Int("requests", len(requests)), zap.Int("counterparts", len(counterparts)))
		return &Report{ShortCircuit: true}, nil
	}

	r := &run{
		opts: m.opts,
		eval: newEvaluator(pad(requests, n), pad(counterparts, n), m.opts.now(), m.opts.AffinityBonus),
		rng:  newRand(m.opts.Seed),
		n:    n,
	}

	if n == 1 {
		report := r.single()
		m.logger.Info("only matching 1 to 1, genetic search skipped", zap.Int("matches", len(report.Pairs)))
		return report, nil
	}

	best, history, err := r.evolve(m.logger)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Pairs:       r.extract(best.perm),
		BestFitness: best.fitness,
		Generations: m.opts.Generations,
		History:     history,
	}

	m.logger.Info("genetic matching finished",
		zap.Int("matches", len(report.Pairs)),
		zap.Int("requests", len(requests)),
		zap.Int("counterparts", len(counterparts)),
		zap.Int("generations", report.Generations),
		zap.Float64("best_fitness", report.BestFitness),
	)

	return report, nil
}

type run struct {
	opts Options
	eval *evaluator
	rng  *rand.Rand
	n    int
}

func (r *run) single() *Report {
	perm := Permutation{0}
	return &Report{
		Pairs:        r.extract(perm),
		BestFitness:  r.eval.individual(perm),
		ShortCircuit: true,
	}
}

func (r *run) evolve(logger *zap.Logger) (individual, []float64, error) {
	size := r.opts.PopulationSize
	population := make([]individual, 0, size)

	var best individual
	for i := 0; i < size; i++ {
		perm := randomPermutation(r.n, r.rng)
		ind := individual{perm: perm, fitness: r.eval.individual(perm)}
		population = append(population, ind)

		if i == 0 || ind.fitness > best.fitness {
			best = ind
		}
	}

	history := make([]float64, 0, r.opts.Generations)
	for gen := 0; gen < r.opts.Generations; gen++ {
		logger.Debug("generation",
			zap.Int("generation", gen),
			zap.Int("generations", r.opts.Generations),
			zap.Int("population", len(population)),
			zap.Float64("best_fitness", best.fitness),
		)

		r.rng.Shuffle(len(population), func(i, j int) { population[i], population[j] = population[j], population[i] })

		children := make([]individual, 0, 2*size-1)
		children = append(children, individual{perm: best.perm.Clone(), fitness: best.fitness})

		parents := selectSUS(population, size, r.rng)

		for i := 0; i < size-1; i++ {
			c1, c2, err := crossoverUPMX(parents[i].perm, parents[i+1].perm, r.opts.CrossoverProbability, r.rng)
			if err != nil {
				return individual{}, nil, fmt.Errorf("crossover at generation %d: %w", gen, err)
			}

			for _, child := range []Permutation{c1, c2} {
				mutant := mutateShuffle(child, r.opts.MutationProbability, r.rng)
				if err := mutant.Validate(r.n); err != nil {
					return individual{}, nil, fmt.Errorf("offspring at generation %d: %w", gen, err)
				}
				children = append(children, individual{perm: mutant, fitness: r.eval.individual(mutant)})
			}
		}

		sort.SliceStable(children, func(a, b int) bool { return children[a].fitness > children[b].fitness })

		if children[0].fitness > best.fitness {
			best = children[0]
		}

		// The elite seed leaves exactly one child too many. The population
		// holds 2*size-2 individuals from here on, not size.
		population = children[:len(children)-1]
		history = append(history, best.fitness)
	}

	logger.Debug("generation",
		zap.Int("generation", r.opts.Generations),
		zap.Int("generations", r.opts.Generations),
		zap.Int("population", len(population)),
		zap.Float64("best_fitness", best.fitness),
	)

	return best, history, nil
}

func (r *run) extract(perm Permutation) []Pair {
	pairs := make([]Pair, 0, len(perm))
	for i, j := range perm {
		fitness := r.eval.pair(i, j)
		if fitness == 0 {
			continue
		}

		pairs = append(pairs, Pair{
			Request:     *r.eval.requests[i],
			Counterpart: *r.eval.counterparts[j],
			Fitness:     fitness,
		})
	}
	return pairs
}
