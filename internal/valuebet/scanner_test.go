package valuebet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fp(v float64) *float64 { return &v }

func matchData(id string, pred *PredictionSnapshot, quotes ...OddsQuote) MatchData {
	return MatchData{
		Match:      Match{ID: id, HomeTeam: "Flamengo", AwayTeam: "Palmeiras", League: "Serie A"},
		Prediction: pred,
		Quotes:     quotes,
	}
}

func TestScannerEmitsValueAboveThreshold(t *testing.T) {
	s := NewScanner(zap.NewNop(), 5.0)

	pred := &PredictionSnapshot{
		ID:         "pred-1",
		MatchID:    "m1",
		Home:       0.55,
		Draw:       fp(0.25),
		Away:       0.20,
		Confidence: 0.8,
	}
	quote := OddsQuote{
		MatchID:   "m1",
		Bookmaker: "bet365",
		Home:      fp(2.10), // implied 0.4762 -> ~15.5% value
		Draw:      fp(3.50), // implied 0.2857 -> sem valor
		Away:      fp(4.80), // implied 0.2083 -> sem valor
	}

	got := s.Scan([]MatchData{matchData("m1", pred, quote)})
	require.Len(t, got, 1)

	opp := got[0]
	assert.Equal(t, "m1_bet365_home", opp.ID)
	assert.Equal(t, OutcomeHome, opp.Outcome)
	assert.InDelta(t, 15.5, opp.ValuePercent, 0.01)
	assert.InDelta(t, 1/2.10, opp.ImpliedProbability, 1e-9)
	assert.InDelta(t, 0.155, opp.ExpectedValue, 1e-9)
	assert.Greater(t, opp.KellyPercent, 0.0)
	assert.LessOrEqual(t, opp.KellyPercent, 25.0)
	assert.Equal(t, "Flamengo", opp.HomeTeam)
}

func TestScannerExcludesNegativeValue(t *testing.T) {
	s := NewScanner(zap.NewNop(), 5.0)

	pred := &PredictionSnapshot{ID: "pred-1", MatchID: "m1", Home: 0.40, Away: 0.60}
	quote := OddsQuote{MatchID: "m1", Bookmaker: "bwin", Home: fp(2.0)} // implied 0.5 > 0.40

	got := s.Scan([]MatchData{matchData("m1", pred, quote)})
	assert.Empty(t, got)
}

func TestScannerRespectsThreshold(t *testing.T) {
	pred := &PredictionSnapshot{ID: "p", MatchID: "m1", Home: 0.52, Away: 0.48}
	quote := OddsQuote{MatchID: "m1", Bookmaker: "bk", Home: fp(2.0)} // value = 4%

	low := NewScanner(zap.NewNop(), 3.0)
	assert.Len(t, low.Scan([]MatchData{matchData("m1", pred, quote)}), 1)

	high := NewScanner(zap.NewNop(), 5.0)
	assert.Empty(t, high.Scan([]MatchData{matchData("m1", pred, quote)}))
}

func TestScannerSkipsMissingData(t *testing.T) {
	s := NewScanner(zap.NewNop(), 5.0)

	t.Run("no prediction", func(t *testing.T) {
		got := s.Scan([]MatchData{matchData("m1", nil, OddsQuote{Bookmaker: "bk", Home: fp(3.0)})})
		assert.Empty(t, got)
	})

	t.Run("no quotes", func(t *testing.T) {
		got := s.Scan([]MatchData{matchData("m1", &PredictionSnapshot{Home: 0.9, Away: 0.1})})
		assert.Empty(t, got)
	})

	t.Run("outcome absent on either side is skipped silently", func(t *testing.T) {
		// previsão sem empate, cotação sem odd para away
		pred := &PredictionSnapshot{ID: "p", MatchID: "m1", Home: 0.70, Away: 0.30}
		quote := OddsQuote{MatchID: "m1", Bookmaker: "bk", Home: fp(1.60), Draw: fp(4.0)}

		got := s.Scan([]MatchData{matchData("m1", pred, quote)})
		require.Len(t, got, 1)
		assert.Equal(t, OutcomeHome, got[0].Outcome)
	})

	t.Run("malformed quote does not abort other matches", func(t *testing.T) {
		bad := matchData("m1", &PredictionSnapshot{ID: "p1", Home: 0.9, Away: 0.1},
			OddsQuote{MatchID: "m1", Bookmaker: "bk", Home: fp(math.NaN())})
		good := matchData("m2", &PredictionSnapshot{ID: "p2", MatchID: "m2", Home: 0.70, Away: 0.30},
			OddsQuote{MatchID: "m2", Bookmaker: "bk", Home: fp(1.60)})

		got := s.Scan([]MatchData{bad, good})
		require.Len(t, got, 1)
		assert.Equal(t, "m2", got[0].MatchID)
	})

	t.Run("empty input returns empty list", func(t *testing.T) {
		assert.Empty(t, s.Scan(nil))
	})
}

func TestScannerOrdering(t *testing.T) {
	s := NewScanner(zap.NewNop(), 5.0)

	// m1/home: value alto; m2/home: value médio; dois bookmakers empatados em m3
	data := []MatchData{
		matchData("m2", &PredictionSnapshot{ID: "p2", MatchID: "m2", Home: 0.60, Away: 0.40, Confidence: 0.9},
			OddsQuote{MatchID: "m2", Bookmaker: "bk", Home: fp(1.80)}), // value 8%
		matchData("m1", &PredictionSnapshot{ID: "p1", MatchID: "m1", Home: 0.55, Away: 0.45, Confidence: 0.7},
			OddsQuote{MatchID: "m1", Bookmaker: "bk", Home: fp(2.10)}), // value 15.5%
		matchData("m3", &PredictionSnapshot{ID: "p3", MatchID: "m3", Home: 0.60, Away: 0.40, Confidence: 0.5},
			OddsQuote{MatchID: "m3", Bookmaker: "zebra", Home: fp(1.80)},
			OddsQuote{MatchID: "m3", Bookmaker: "alpha", Home: fp(1.80)}),
	}

	got := s.Scan(data)
	require.Len(t, got, 4)

	assert.Equal(t, "m1", got[0].MatchID)
	// empate em value 8%: confiança maior primeiro
	assert.Equal(t, "m2", got[1].MatchID)
	// empate total em m3: bookmaker em ordem lexicográfica
	assert.Equal(t, "alpha", got[2].Bookmaker)
	assert.Equal(t, "zebra", got[3].Bookmaker)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].ValuePercent, got[i].ValuePercent)
	}
}
