package dto

// PlaceBetRequest é o payload de colocação de aposta.
type PlaceBetRequest struct {
	UserID     string  `json:"user_id"`
	MatchID    string  `json:"match_id"`
	ValueBetID string  `json:"value_bet_id,omitempty"`
	Outcome    string  `json:"outcome"`
	StakeCents int64   `json:"stake_cents"`
	Odds       float64 `json:"odds"`
	Simulation bool    `json:"simulation"`
}

// SettleBetRequest é o payload de liquidação manual de uma aposta.
type SettleBetRequest struct {
	Result string `json:"result"` // won | lost | void
}

// DepositRequest é o payload de depósito na banca.
type DepositRequest struct {
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
	Simulation  bool   `json:"simulation"`
}
