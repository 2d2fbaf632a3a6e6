// Package rng centralizes deterministic random streams.
//
// Every random draw in graphem comes from a *rand.Rand built here from an
// explicit seed; there is no package-level or time-based source anywhere.
// A *rand.Rand is not goroutine-safe: derive one stream per consumer with
// [Derive] instead of sharing.
package rng

import "math/rand/v2"

// New returns a PCG stream for seed. The second PCG word is a fixed mix of
// the seed so that nearby seeds do not produce correlated streams.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Derive returns an independent stream for (seed, stream), so that separate
// consumers of one user-visible seed (initializer, generator, estimator)
// never share draws.
func Derive(seed, stream uint64) *rand.Rand {
	return New(mix(seed, stream))
}

// Trial returns the stream of the i-th independent trial of (seed,
// stream). Trials can run in any order or in parallel and still draw the
// same numbers.
func Trial(seed, stream uint64, i int) *rand.Rand {
	return New(mix(mix(seed, stream), uint64(i)))
}

// mix is the SplitMix64 finalizer over seed and stream.
func mix(seed, stream uint64) uint64 {
	x := seed ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Streams used across the module.
const (
	StreamSpectral  uint64 = 1
	StreamGenerator uint64 = 2
	StreamInfluence uint64 = 3
	StreamBaseline  uint64 = 4
)
