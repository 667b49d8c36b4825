package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSimilarityIsOrderSensitive(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.0, similarity([]string{"SOFT", "DATA"}, []string{"SOFT", "DATA"}))
	require.Equal(t, 0.5, similarity([]string{"SOFT", "DATA"}, []string{"DATA", "SOFT"}))
	require.Equal(t, 0.0, similarity([]string{"SOFT"}, []string{"LAW"}))
}

func TestPairFitness(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tenSecondsAgo := now.Add(-10 * time.Second)

	request := func(owner string, affiliated bool) *Item {
		return &Item{ID: "r", Owner: owner, Tags: []string{"SOFT"}, CreatedAt: tenSecondsAgo, Affiliated: affiliated}
	}
	counterpart := func(owner string, affiliated bool) *Item {
		return &Item{ID: "c", Owner: owner, Tags: []string{"SOFT"}, CreatedAt: tenSecondsAgo, Affiliated: affiliated}
	}

	tests := []struct {
		name        string
		request     *Item
		counterpart *Item
		expect      float64
	}{
		{name: "placeholder request", request: nil, counterpart: counterpart("u2", false), expect: 0},
		{name: "placeholder counterpart", request: request("u1", false), counterpart: nil, expect: 0},
		{name: "same owner", request: request("u1", true), counterpart: counterpart("u1", true), expect: 0},
		{name: "no affiliation", request: request("u1", false), counterpart: counterpart("u2", false), expect: 20},
		{name: "counterpart affiliated only", request: request("u1", false), counterpart: counterpart("u2", true), expect: 20},
		{name: "request affiliated", request: request("u1", true), counterpart: counterpart("u2", false), expect: 24},
		{name: "both affiliated", request: request("u1", true), counterpart: counterpart("u2", true), expect: 28.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tt.expect, pairFitness(tt.request, tt.counterpart, now, DefaultAffinityBonus), 1e-9)
		})
	}
}

func TestPairFitnessDisjointTags(t *testing.T) {
	t.Parallel()

	now := time.Now()
	r := &Item{Owner: "u1", Tags: []string{"LAW"}, CreatedAt: now.Add(-time.Hour)}
	c := &Item{Owner: "u2", Tags: []string{"MED"}, CreatedAt: now.Add(-time.Hour)}

	require.Equal(t, 0.0, pairFitness(r, c, now, DefaultAffinityBonus))
}

func TestPairFitnessIgnoresFutureCreation(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	future := &Item{Owner: "u1", Tags: []string{"SOFT"}, CreatedAt: now.Add(time.Hour)}
	past := &Item{Owner: "u2", Tags: []string{"SOFT"}, CreatedAt: now.Add(-10 * time.Second)}
	alsoFuture := &Item{Owner: "u3", Tags: []string{"SOFT"}, CreatedAt: now.Add(time.Hour)}

	require.Equal(t, 0.0, pairFitness(future, alsoFuture, now, DefaultAffinityBonus))
	require.InDelta(t, 10.0, pairFitness(future, past, now, DefaultAffinityBonus), 1e-9)
}

func TestEvaluatorMemoizesZeroFitness(t *testing.T) {
	t.Parallel()

	now := time.Now()
	requests := []Item{{ID: "r1", Owner: "u1", Tags: []string{"SOFT"}, CreatedAt: now.Add(time.Hour)}}
	counterparts := []Item{{ID: "c1", Owner: "u2", Tags: []string{"SOFT"}, CreatedAt: now.Add(time.Hour)}}

	e := newEvaluator(pad(requests, 1), pad(counterparts, 1), now, DefaultAffinityBonus)
	require.False(t, e.known[0])
	require.Equal(t, 0.0, e.pair(0, 0))
	require.True(t, e.known[0])
	require.Equal(t, 0.0, e.pairs[0])
}

func TestEvaluatorMemoizesPerCall(t *testing.T) {
	t.Parallel()

	now := time.Now()
	requests := []Item{
		{ID: "r1", Owner: "u1", Tags: []string{"SOFT"}, CreatedAt: now.Add(-time.Minute)},
		{ID: "r2", Owner: "u2", Tags: []string{"LAW"}, CreatedAt: now.Add(-time.Minute)},
	}
	counterparts := []Item{
		{ID: "c1", Owner: "u3", Tags: []string{"SOFT"}, CreatedAt: now.Add(-time.Minute)},
	}

	e := newEvaluator(pad(requests, 2), pad(counterparts, 2), now, DefaultAffinityBonus)

	identity := Permutation{0, 1}
	require.InDelta(t, 120.0, e.individual(identity), 1e-9)
	require.Len(t, e.individuals, 1)
	require.InDelta(t, 120.0, e.pairs[0], 1e-9)
	require.Equal(t, 0.0, e.pairs[3])
	require.False(t, e.known[1])
	require.True(t, e.known[3])

	require.InDelta(t, 120.0, e.individual(Permutation{0, 1}), 1e-9)
	require.Len(t, e.individuals, 1)

	require.Equal(t, 0.0, e.individual(Permutation{1, 0}))
	require.Len(t, e.individuals, 2)
}
