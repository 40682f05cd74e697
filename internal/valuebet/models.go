package valuebet

import "time"

// Outcome identifica o resultado apostável de uma partida 1x2.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

// allOutcomes na ordem de precificação do scanner.
var allOutcomes = [...]Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeHome, OutcomeDraw, OutcomeAway:
		return true
	}
	return false
}

// Match são os dados denormalizados de exibição de uma partida.
type Match struct {
	ID       string
	HomeTeam string
	AwayTeam string
	League   string
	StartsAt time.Time
}

// PredictionSnapshot é a saída imutável do modelo para uma partida.
// Draw é nulo em esportes de dois resultados.
type PredictionSnapshot struct {
	ID           string
	MatchID      string
	Home         float64
	Draw         *float64
	Away         float64
	Confidence   float64
	ModelVersion string
	CreatedAt    time.Time
}

// Probability devolve a probabilidade prevista para o resultado, se presente.
func (p *PredictionSnapshot) Probability(o Outcome) (float64, bool) {
	switch o {
	case OutcomeHome:
		return p.Home, true
	case OutcomeDraw:
		if p.Draw == nil {
			return 0, false
		}
		return *p.Draw, true
	case OutcomeAway:
		return p.Away, true
	}
	return 0, false
}

// OddsQuote é a cotação de um bookmaker para uma partida em um instante.
// Preço nulo = resultado não ofertado por esse bookmaker.
type OddsQuote struct {
	MatchID   string
	Bookmaker string
	Home      *float64
	Draw      *float64
	Away      *float64
	Version   int
	UpdatedAt time.Time
}

// Price devolve a odd decimal ofertada para o resultado, se presente.
func (q *OddsQuote) Price(o Outcome) (float64, bool) {
	var v *float64
	switch o {
	case OutcomeHome:
		v = q.Home
	case OutcomeDraw:
		v = q.Draw
	case OutcomeAway:
		v = q.Away
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// MatchData agrupa a entrada de um ciclo de scan para uma partida:
// o snapshot mais recente do modelo e as cotações correntes.
type MatchData struct {
	Match      Match
	Prediction *PredictionSnapshot
	Quotes     []OddsQuote
}

// Opportunity é uma value bet derivada de (partida, cotação, resultado).
// Registro somente-leitura: cada scan substitui o lote anterior por inteiro.
type Opportunity struct {
	ID                   string
	MatchID              string
	PredictionID         string
	Bookmaker            string
	Outcome              Outcome
	PredictedProbability float64
	BookmakerOdds        float64
	ImpliedProbability   float64
	ValuePercent         float64
	KellyPercent         float64
	ExpectedValue        float64
	Confidence           float64
	HomeTeam             string
	AwayTeam             string
	League               string
	MatchDate            time.Time
	CreatedAt            time.Time
}
