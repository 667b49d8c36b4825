package matching

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultGenerations          = 50
	DefaultPopulationSize       = 24
	DefaultCrossoverProbability = 0.60
	DefaultMutationProbability  = 0.08
	DefaultAffinityBonus        = 1.2
)

var ErrInvalidOptions = errors.New("invalid matcher options")

// Options tunes the genetic search.
type Options struct {
	Generations    int
	PopulationSize int
	// CrossoverProbability is the per-position swap rate of the crossover.
	CrossoverProbability float64
	// MutationProbability is the per-position shuffle rate of the mutation.
	MutationProbability float64
	// AffinityBonus multiplies the pair fitness once when the request is
	// affiliated and once more when both sides are.
	AffinityBonus float64
	// Seed makes runs reproducible. Zero picks an unpredictable seed per call.
	Seed int64
	// Now is captured once per call. Defaults to time.Now.
	Now func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Generations:          DefaultGenerations,
		PopulationSize:       DefaultPopulationSize,
		CrossoverProbability: DefaultCrossoverProbability,
		MutationProbability:  DefaultMutationProbability,
		AffinityBonus:        DefaultAffinityBonus,
	}
}

func (o Options) Validate() error {
	if o.Generations < 0 {
		return fmt.Errorf("%w: generations must be >= 0, got %d", ErrInvalidOptions, o.Generations)
	}
	if o.PopulationSize < 2 || o.PopulationSize%2 != 0 {
		return fmt.Errorf("%w: population size must be an even number >= 2, got %d", ErrInvalidOptions, o.PopulationSize)
	}
	if o.CrossoverProbability < 0 || o.CrossoverProbability > 1 {
		return fmt.Errorf("%w: crossover probability must be within [0,1], got %v", ErrInvalidOptions, o.CrossoverProbability)
	}
	if o.MutationProbability < 0 || o.MutationProbability > 1 {
		return fmt.Errorf("%w: mutation probability must be within [0,1], got %v", ErrInvalidOptions, o.MutationProbability)
	}
	if o.AffinityBonus <= 0 {
		return fmt.Errorf("%w: affinity bonus must be > 0, got %v", ErrInvalidOptions, o.AffinityBonus)
	}
	return nil
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
