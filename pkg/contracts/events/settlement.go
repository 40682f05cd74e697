package events

import "time"

// Evento publicado no tópico "match_results" quando uma partida termina.
// Result: "home" | "draw" | "away" | "void" (partida cancelada/anulada).
type MatchResult struct {
	MatchID    string    `json:"match_id"`
	Result     string    `json:"result"`
	FinishedAt time.Time `json:"finished_at"`
	Source     string    `json:"source"`
}

// Evento emitido pelo settlement-worker após liquidar uma aposta.
type BetSettled struct {
	BetID       string    `json:"bet_id"`
	UserID      string    `json:"user_id"`
	MatchID     string    `json:"match_id"`
	Status      string    `json:"status"` // "WON" | "LOST" | "VOID"
	PayoutCents int64     `json:"payout_cents"`
	Simulation  bool      `json:"simulation"`
	Ts          time.Time `json:"ts"`
}
