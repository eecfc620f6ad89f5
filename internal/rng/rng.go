// Package rng provides the single seeded random stream used to build a dataset.
//
// Every draw is a pure function of the seed and of the draws made before it, so
// two runs that make the same calls in the same order see the same values.
// A Source is never shared between goroutines and there is no package-level
// instance: generators receive the Source they draw from as a parameter.
package rng

import (
	"math"

	"github.com/brianvoe/gofakeit/v6"
)

// Source is a seeded pseudo-random stream.
type Source struct {
	faker *gofakeit.Faker
	draws int64
}

// New creates a Source seeded with seed.
//
// Seed 0 makes gofakeit pull its seed from crypto/rand, so callers must
// reject it before getting here (dataset.Params.Validate does).
func New(seed int64) *Source {
	return &Source{faker: gofakeit.New(seed)}
}

// Draws reports how many primitive draws the Source has served.
// Useful for asserting that a step consumed no randomness.
func (s *Source) Draws() int64 {
	return s.draws
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	s.draws++
	return s.faker.Rand.Float64()
}

// Bernoulli returns true with probability p.
func (s *Source) Bernoulli(p float64) bool {
	return s.Float64() < p
}

// IntRange returns a uniform integer in [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	s.draws++
	return s.faker.Number(lo, hi)
}

// Choice returns a uniformly chosen element of options.
func (s *Source) Choice(options []string) string {
	s.draws++
	return s.faker.RandomString(options)
}

// Weighted returns an element of options chosen with the given relative
// weights. A single uniform draw is compared against the cumulative weights.
// An empty weights slice falls back to Choice.
func (s *Source) Weighted(options []string, weights []float64) string {
	if len(weights) == 0 {
		return s.Choice(options)
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	u := s.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if u < acc {
			return options[i]
		}
	}
	// Float rounding can leave u == total.
	return options[len(options)-1]
}

// Normal returns a draw from N(mean, stddev²).
func (s *Source) Normal(mean, stddev float64) float64 {
	s.draws++
	return mean + stddev*s.faker.Rand.NormFloat64()
}

// Noise parametrizes a clamped normal draw.
type Noise struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	StdDev float64 `yaml:"stddev" json:"stddev" validate:"gte=0"`
	Min    float64 `yaml:"min" json:"min"`
	Max    float64 `yaml:"max" json:"max"`
}

// ClampedNormal draws from N(n.Mean, n.StdDev²) and saturates the result at
// [n.Min, n.Max].
func (s *Source) ClampedNormal(n Noise) float64 {
	return Clamp(s.Normal(n.Mean, n.StdDev), n.Min, n.Max)
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
