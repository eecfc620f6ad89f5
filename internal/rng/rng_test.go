package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawSequence(s *Source) []any {
	return []any{
		s.Float64(),
		s.IntRange(1, 100),
		s.Choice([]string{"a", "b", "c"}),
		s.Weighted([]string{"x", "y"}, []float64{1, 3}),
		s.Normal(10, 2),
		s.Bernoulli(0.5),
	}
}

func TestSameSeedSameStream(t *testing.T) {
	a := drawSequence(New(42))
	b := drawSequence(New(42))
	assert.Equal(t, a, b)
}

func TestDifferentSeedDifferentStream(t *testing.T) {
	a, b := New(1), New(2)
	same := 0
	for i := 0; i < 20; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func TestIntRangeInclusive(t *testing.T) {
	s := New(7)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := s.IntRange(1, 3)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 3)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
}

func TestIntRangeSingleValue(t *testing.T) {
	assert.Equal(t, 5, New(3).IntRange(5, 5))
}

func TestWeightedRespectsZeroWeight(t *testing.T) {
	s := New(11)
	for i := 0; i < 500; i++ {
		assert.NotEqual(t, "never", s.Weighted([]string{"never", "always"}, []float64{0, 1}))
	}
}

func TestWeightedEmptyWeightsIsUniform(t *testing.T) {
	s := New(5)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[s.Weighted([]string{"a", "b"}, nil)] = true
	}
	assert.Len(t, seen, 2)
}

func TestBernoulliExtremes(t *testing.T) {
	s := New(9)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Bernoulli(0))
		assert.True(t, s.Bernoulli(1))
	}
}

func TestClampedNormalStaysInRange(t *testing.T) {
	s := New(13)
	n := Noise{Mean: 65, StdDev: 25, Min: 5, Max: 400}
	for i := 0; i < 1000; i++ {
		v := s.ClampedNormal(n)
		require.GreaterOrEqual(t, v, 5.0)
		require.LessOrEqual(t, v, 400.0)
	}
}

func TestDrawsCounts(t *testing.T) {
	s := New(1)
	assert.Equal(t, int64(0), s.Draws())
	s.Float64()
	s.Normal(0, 1)
	s.Choice([]string{"a"})
	assert.Equal(t, int64(3), s.Draws())
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.v, tt.lo, tt.hi))
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.24, Round(1.236, 2))
	assert.Equal(t, 65.0, Round(64.996, 2))
	assert.Equal(t, 5.0, Round(4.6, 0))
}
