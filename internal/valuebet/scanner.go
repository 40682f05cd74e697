package valuebet

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/pricing"
)

// DefaultMinValuePercent é o corte padrão de valor mínimo de uma oportunidade.
const DefaultMinValuePercent = 5.0

// Scanner precifica cada (partida, cotação, resultado) contra o snapshot mais
// recente do modelo e emite as oportunidades acima do corte de valor.
type Scanner struct {
	log             *zap.Logger
	minValuePercent float64
}

func NewScanner(log *zap.Logger, minValuePercent float64) *Scanner {
	if minValuePercent <= 0 {
		minValuePercent = DefaultMinValuePercent
	}
	return &Scanner{log: log, minValuePercent: minValuePercent}
}

// MinValuePercent devolve o corte configurado.
func (s *Scanner) MinValuePercent() float64 { return s.minValuePercent }

// Scan percorre as partidas e devolve as oportunidades ordenadas por
// valor decrescente (empate: confiança desc, match id asc, resultado asc).
//
// Partida sem previsão ou sem cotação é pulada em silêncio: é falta de dado,
// não erro. Cotação malformada gera log e não aborta o restante do scan.
func (s *Scanner) Scan(data []MatchData) []Opportunity {
	now := time.Now().UTC()
	var out []Opportunity

	for _, md := range data {
		if md.Prediction == nil || len(md.Quotes) == 0 {
			continue
		}
		for _, quote := range md.Quotes {
			for _, outcome := range allOutcomes {
				opp, ok := s.price(md, quote, outcome, now)
				if ok {
					out = append(out, opp)
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ValuePercent != b.ValuePercent {
			return a.ValuePercent > b.ValuePercent
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.MatchID != b.MatchID {
			return a.MatchID < b.MatchID
		}
		if a.Bookmaker != b.Bookmaker {
			return a.Bookmaker < b.Bookmaker
		}
		return a.Outcome < b.Outcome
	})

	return out
}

// price calcula uma combinação (partida, cotação, resultado).
// Devolve false quando falta dado ou quando a combinação não tem valor.
func (s *Scanner) price(md MatchData, quote OddsQuote, outcome Outcome, now time.Time) (Opportunity, bool) {
	pred := md.Prediction

	prob, ok := pred.Probability(outcome)
	if !ok {
		return Opportunity{}, false
	}
	odds, ok := quote.Price(outcome)
	if !ok {
		return Opportunity{}, false
	}

	value, err := pricing.ValuePercentage(prob, odds)
	if err != nil {
		// dado malformado: registra e segue com as demais combinações
		s.log.Warn("skipping unpriceable quote",
			zap.String("match_id", md.Match.ID),
			zap.String("bookmaker", quote.Bookmaker),
			zap.String("outcome", string(outcome)),
			zap.Float64("odds", odds),
			zap.Error(err),
		)
		return Opportunity{}, false
	}
	if !value.HasValue || value.Percentage < s.minValuePercent {
		return Opportunity{}, false
	}

	implied, err := pricing.ImpliedProbability(odds)
	if err != nil {
		return Opportunity{}, false
	}
	kelly, err := pricing.KellyFraction(prob, odds)
	if err != nil {
		return Opportunity{}, false
	}
	ev, err := pricing.ExpectedValue(prob, odds)
	if err != nil {
		return Opportunity{}, false
	}

	return Opportunity{
		ID:                   fmt.Sprintf("%s_%s_%s", md.Match.ID, quote.Bookmaker, outcome),
		MatchID:              md.Match.ID,
		PredictionID:         pred.ID,
		Bookmaker:            quote.Bookmaker,
		Outcome:              outcome,
		PredictedProbability: prob,
		BookmakerOdds:        odds,
		ImpliedProbability:   implied,
		ValuePercent:         value.Percentage,
		KellyPercent:         kelly,
		ExpectedValue:        ev,
		Confidence:           pred.Confidence,
		HomeTeam:             md.Match.HomeTeam,
		AwayTeam:             md.Match.AwayTeam,
		League:               md.Match.League,
		MatchDate:            md.Match.StartsAt,
		CreatedAt:            now,
	}, true
}
