package consumer

import (
	"errors"
	"fmt"
	"math"

	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

// Tolerância para a soma das probabilidades de um snapshot (~1).
const probSumTolerance = 0.05

var errMalformedPayload = errors.New("malformed payload")

// ValidateQuote valida o shape de uma cotação na fronteira, antes de
// entrar no core: payloads dos upstreams não são confiados implicitamente.
func ValidateQuote(e events.OddsQuoteUpdated) error {
	if e.MatchID == "" {
		return fmt.Errorf("%w: match_id is required", errMalformedPayload)
	}
	if e.Bookmaker == "" {
		return fmt.Errorf("%w: bookmaker is required", errMalformedPayload)
	}
	prices := map[string]*float64{
		"home": e.Prices.Home,
		"draw": e.Prices.Draw,
		"away": e.Prices.Away,
	}
	offered := 0
	for outcome, p := range prices {
		if p == nil {
			continue // resultado não ofertado: não é erro
		}
		if math.IsNaN(*p) || math.IsInf(*p, 0) || *p <= 1 {
			return fmt.Errorf("%w: %s odd %v must be finite and > 1", errMalformedPayload, outcome, *p)
		}
		offered++
	}
	if offered == 0 {
		return fmt.Errorf("%w: quote offers no outcome", errMalformedPayload)
	}
	return nil
}

// ValidatePrediction valida um snapshot de previsão: probabilidades em
// [0,1], soma ~1 e confiança em [0,1].
func ValidatePrediction(e events.PredictionCreated) error {
	if e.MatchID == "" {
		return fmt.Errorf("%w: match_id is required", errMalformedPayload)
	}
	if !validProb(e.HomeWinProbability) || !validProb(e.AwayWinProbability) {
		return fmt.Errorf("%w: probabilities must be within [0,1]", errMalformedPayload)
	}
	sum := e.HomeWinProbability + e.AwayWinProbability
	if e.DrawProbability != nil {
		if !validProb(*e.DrawProbability) {
			return fmt.Errorf("%w: draw probability must be within [0,1]", errMalformedPayload)
		}
		sum += *e.DrawProbability
	}
	if math.Abs(sum-1) > probSumTolerance {
		return fmt.Errorf("%w: probabilities sum to %.4f", errMalformedPayload, sum)
	}
	if !validProb(e.ConfidenceScore) {
		return fmt.Errorf("%w: confidence must be within [0,1]", errMalformedPayload)
	}
	return nil
}

func validProb(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
