package events

import "time"

// Preços decimais por resultado. Ponteiro nulo = resultado não ofertado
// (esportes sem empate, mercados parciais).
type OddsPrices struct {
	Home *float64 `json:"home,omitempty"`
	Draw *float64 `json:"draw,omitempty"`
	Away *float64 `json:"away,omitempty"`
}

// Evento publicado no tópico "odds_quotes" a cada atualização de cotação
// de um bookmaker para uma partida.
type OddsQuoteUpdated struct {
	MatchID   string     `json:"match_id"`
	Bookmaker string     `json:"bookmaker"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	League    string     `json:"league"`
	StartsAt  time.Time  `json:"starts_at"`
	Prices    OddsPrices `json:"prices"`
	Version   int        `json:"version"` // incrementado a cada atualização do bookmaker
	UpdatedAt time.Time  `json:"updated_at"`
	Source    string     `json:"source"` // ex: "feed-simulator"
}

// Evento publicado no tópico "prediction_updates" quando o gerador de
// previsões produz um novo snapshot para uma partida.
type PredictionCreated struct {
	MatchID            string    `json:"match_id"`
	HomeWinProbability float64   `json:"home_win_probability"`
	DrawProbability    *float64  `json:"draw_probability,omitempty"` // ausente em esportes de dois resultados
	AwayWinProbability float64   `json:"away_win_probability"`
	ConfidenceScore    float64   `json:"confidence_score"`
	ModelVersion       string    `json:"model_version"`
	CreatedAt          time.Time `json:"created_at"`
}
