package pricing

import (
	"errors"
	"math"
)

// ErrInvalidOdds indica odd decimal inválida (<= 1 ou não finita).
var ErrInvalidOdds = errors.New("invalid odds: must be a finite value greater than 1")

// KellyCapPercent limita a fração de Kelly a 25% da banca (controle de risco).
const KellyCapPercent = 25.0

// Value é o resultado do cálculo de valor de uma aposta.
// HasValue usa o percentual bruto, antes do arredondamento.
type Value struct {
	Percentage float64 // arredondado para 2 casas
	HasValue   bool
}

// ImpliedProbability converte odd decimal em probabilidade implícita (1/odds).
func ImpliedProbability(odds float64) (float64, error) {
	if err := checkOdds(odds); err != nil {
		return 0, err
	}
	return 1 / odds, nil
}

// ValuePercentage compara a probabilidade prevista com a implícita na odd:
// ((p - implied) / implied) * 100
func ValuePercentage(predictedProb, odds float64) (Value, error) {
	implied, err := ImpliedProbability(odds)
	if err != nil {
		return Value{}, err
	}
	raw := ((predictedProb - implied) / implied) * 100
	return Value{
		Percentage: round2(raw),
		HasValue:   raw > 0,
	}, nil
}

// KellyFraction calcula a fração de Kelly f = (b*p - q) / b, com b = odds-1,
// limitada a [0, KellyCapPercent] e expressa em percentual da banca.
// Edge negativo devolve 0, não erro.
func KellyFraction(predictedProb, odds float64) (float64, error) {
	if err := checkOdds(odds); err != nil {
		return 0, err
	}
	b := odds - 1
	p := predictedProb
	q := 1 - p

	kelly := (b*p - q) / b
	kelly = math.Max(0, math.Min(KellyCapPercent/100, kelly))
	return kelly * 100, nil
}

// ExpectedValue calcula o lucro médio por unidade apostada:
// p*(odds-1) - (1-p). Pode ser negativo.
func ExpectedValue(predictedProb, odds float64) (float64, error) {
	if err := checkOdds(odds); err != nil {
		return 0, err
	}
	return predictedProb*(odds-1) - (1 - predictedProb), nil
}

func checkOdds(odds float64) error {
	if math.IsNaN(odds) || math.IsInf(odds, 0) || odds <= 1 {
		return ErrInvalidOdds
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
