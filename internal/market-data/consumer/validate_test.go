package consumer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

func fp(v float64) *float64 { return &v }

func validQuote() events.OddsQuoteUpdated {
	return events.OddsQuoteUpdated{
		MatchID:   "m1",
		Bookmaker: "bet365",
		HomeTeam:  "Flamengo",
		AwayTeam:  "Palmeiras",
		Prices:    events.OddsPrices{Home: fp(2.10), Draw: fp(3.40), Away: fp(3.80)},
		Version:   1,
		UpdatedAt: time.Now(),
	}
}

func TestValidateQuote(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateQuote(validQuote()))
	})

	t.Run("missing outcome is fine", func(t *testing.T) {
		q := validQuote()
		q.Prices.Draw = nil
		assert.NoError(t, ValidateQuote(q))
	})

	t.Run("missing match id", func(t *testing.T) {
		q := validQuote()
		q.MatchID = ""
		assert.Error(t, ValidateQuote(q))
	})

	t.Run("missing bookmaker", func(t *testing.T) {
		q := validQuote()
		q.Bookmaker = ""
		assert.Error(t, ValidateQuote(q))
	})

	t.Run("odd at or below 1", func(t *testing.T) {
		q := validQuote()
		q.Prices.Home = fp(1.0)
		assert.Error(t, ValidateQuote(q))
	})

	t.Run("non-finite odd", func(t *testing.T) {
		q := validQuote()
		q.Prices.Away = fp(math.NaN())
		assert.Error(t, ValidateQuote(q))
	})

	t.Run("no outcome offered", func(t *testing.T) {
		q := validQuote()
		q.Prices = events.OddsPrices{}
		assert.Error(t, ValidateQuote(q))
	})
}

func validPrediction() events.PredictionCreated {
	return events.PredictionCreated{
		MatchID:            "m1",
		HomeWinProbability: 0.50,
		DrawProbability:    fp(0.28),
		AwayWinProbability: 0.22,
		ConfidenceScore:    0.75,
		ModelVersion:       "v3",
		CreatedAt:          time.Now(),
	}
}

func TestValidatePrediction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidatePrediction(validPrediction()))
	})

	t.Run("two-outcome sport without draw", func(t *testing.T) {
		p := validPrediction()
		p.DrawProbability = nil
		p.HomeWinProbability = 0.6
		p.AwayWinProbability = 0.4
		assert.NoError(t, ValidatePrediction(p))
	})

	t.Run("probability out of range", func(t *testing.T) {
		p := validPrediction()
		p.HomeWinProbability = 1.2
		assert.Error(t, ValidatePrediction(p))
	})

	t.Run("sum far from one", func(t *testing.T) {
		p := validPrediction()
		p.AwayWinProbability = 0.5 // soma 1.28
		assert.Error(t, ValidatePrediction(p))
	})

	t.Run("sum within tolerance", func(t *testing.T) {
		p := validPrediction()
		p.AwayWinProbability = 0.25 // soma 1.03
		assert.NoError(t, ValidatePrediction(p))
	})

	t.Run("confidence out of range", func(t *testing.T) {
		p := validPrediction()
		p.ConfidenceScore = 1.5
		assert.Error(t, ValidatePrediction(p))
	})
}
