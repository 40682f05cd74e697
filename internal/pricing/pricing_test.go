package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedProbability(t *testing.T) {
	t.Run("valid odds", func(t *testing.T) {
		p, err := ImpliedProbability(2.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, p, 1e-9)

		p, err = ImpliedProbability(2.10)
		require.NoError(t, err)
		assert.InDelta(t, 0.4762, p, 1e-4)
	})

	t.Run("invalid odds", func(t *testing.T) {
		for _, odds := range []float64{1.0, 0.5, 0, -2, math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := ImpliedProbability(odds)
			assert.ErrorIs(t, err, ErrInvalidOdds, "odds=%v", odds)
		}
	})
}

func TestValuePercentage(t *testing.T) {
	t.Run("positive value", func(t *testing.T) {
		// prob=0.55 odds=2.10 -> implied=0.4762, value ~ 15.5%
		v, err := ValuePercentage(0.55, 2.10)
		require.NoError(t, err)
		assert.True(t, v.HasValue)
		assert.InDelta(t, 15.5, v.Percentage, 0.01)
	})

	t.Run("negative value", func(t *testing.T) {
		// prob=0.40 odds=2.0 -> implied=0.5, value=-20%
		v, err := ValuePercentage(0.40, 2.0)
		require.NoError(t, err)
		assert.False(t, v.HasValue)
		assert.InDelta(t, -20.0, v.Percentage, 1e-9)
	})

	t.Run("sign matches prob vs implied", func(t *testing.T) {
		for _, odds := range []float64{1.05, 1.5, 2.0, 3.3, 10, 100} {
			implied := 1 / odds
			for _, prob := range []float64{0, 0.01, 0.25, 0.5, 0.75, 0.99, 1} {
				v, err := ValuePercentage(prob, odds)
				require.NoError(t, err)
				assert.Equal(t, prob > implied, v.HasValue, "prob=%v odds=%v", prob, odds)
			}
		}
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		v, err := ValuePercentage(0.55, 2.10)
		require.NoError(t, err)
		assert.Equal(t, v.Percentage, math.Round(v.Percentage*100)/100)
	})
}

func TestKellyFraction(t *testing.T) {
	t.Run("classic formula", func(t *testing.T) {
		// b=1, p=0.55, q=0.45 -> f=0.10 -> 10%
		f, err := KellyFraction(0.55, 2.0)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, f, 1e-9)
	})

	t.Run("negative edge clamps to zero", func(t *testing.T) {
		f, err := KellyFraction(0.30, 2.0)
		require.NoError(t, err)
		assert.Zero(t, f)
	})

	t.Run("capped at 25 percent", func(t *testing.T) {
		f, err := KellyFraction(0.99, 5.0)
		require.NoError(t, err)
		assert.InDelta(t, 25.0, f, 1e-9)
	})

	t.Run("always within [0,25] for valid input", func(t *testing.T) {
		for prob := 0.0; prob <= 1.0; prob += 0.05 {
			for _, odds := range []float64{1.01, 1.2, 1.8, 2.5, 4, 12, 50, 500} {
				f, err := KellyFraction(prob, odds)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, f, 0.0, "prob=%v odds=%v", prob, odds)
				assert.LessOrEqual(t, f, 25.0, "prob=%v odds=%v", prob, odds)
			}
		}
	})

	t.Run("invalid odds", func(t *testing.T) {
		_, err := KellyFraction(0.5, 1.0)
		assert.ErrorIs(t, err, ErrInvalidOdds)
		_, err = KellyFraction(0.5, math.NaN())
		assert.ErrorIs(t, err, ErrInvalidOdds)
	})
}

func TestExpectedValue(t *testing.T) {
	t.Run("positive", func(t *testing.T) {
		ev, err := ExpectedValue(0.55, 2.10)
		require.NoError(t, err)
		assert.InDelta(t, 0.155, ev, 1e-9)
	})

	t.Run("negative is not clamped", func(t *testing.T) {
		ev, err := ExpectedValue(0.40, 2.0)
		require.NoError(t, err)
		assert.InDelta(t, -0.2, ev, 1e-9)
	})

	t.Run("invalid odds", func(t *testing.T) {
		_, err := ExpectedValue(0.5, 0.9)
		assert.ErrorIs(t, err, ErrInvalidOdds)
	})
}
