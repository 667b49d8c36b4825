// Package matching pairs two queues of entries, requests and counterparts, so
// that the summed pair compatibility is as high as a genetic search can find.
//
// A candidate pairing is a permutation p where request i is paired with
// counterpart p[i]. The shorter side is padded with placeholders; pairs that
// touch a placeholder, pairs of the same owner and pairs with no tag
// similarity have zero fitness and are never returned.
//
// The search runs a fixed number of generations with elitism, stochastic
// universal sampling, uniform partially matched crossover and shuffle
// mutation. All caches live for a single call.
package matching
