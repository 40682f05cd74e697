package dto

import (
	"time"

	"github.com/radieske/value-bet-platform/internal/bankroll"
	"github.com/radieske/value-bet-platform/internal/betting"
	"github.com/radieske/value-bet-platform/internal/stats"
	"github.com/radieske/value-bet-platform/internal/valuebet"
)

// ErrorResponse é o corpo padrão de erro da API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValueBet é a projeção de uma oportunidade para a API.
type ValueBet struct {
	ID                   string    `json:"id"`
	MatchID              string    `json:"match_id"`
	Bookmaker            string    `json:"bookmaker"`
	Outcome              string    `json:"outcome"`
	PredictedProbability float64   `json:"predicted_probability"`
	BookmakerOdds        float64   `json:"bookmaker_odds"`
	ImpliedProbability   float64   `json:"implied_probability"`
	ValuePercent         float64   `json:"value_percent"`
	KellyPercent         float64   `json:"kelly_percent"`
	ExpectedValue        float64   `json:"expected_value"`
	Confidence           float64   `json:"confidence"`
	HomeTeam             string    `json:"home_team"`
	AwayTeam             string    `json:"away_team"`
	League               string    `json:"league"`
	MatchDate            time.Time `json:"match_date"`
	CreatedAt            time.Time `json:"created_at"`
}

func FromOpportunity(o valuebet.Opportunity) ValueBet {
	return ValueBet{
		ID:                   o.ID,
		MatchID:              o.MatchID,
		Bookmaker:            o.Bookmaker,
		Outcome:              string(o.Outcome),
		PredictedProbability: o.PredictedProbability,
		BookmakerOdds:        o.BookmakerOdds,
		ImpliedProbability:   o.ImpliedProbability,
		ValuePercent:         o.ValuePercent,
		KellyPercent:         o.KellyPercent,
		ExpectedValue:        o.ExpectedValue,
		Confidence:           o.Confidence,
		HomeTeam:             o.HomeTeam,
		AwayTeam:             o.AwayTeam,
		League:               o.League,
		MatchDate:            o.MatchDate,
		CreatedAt:            o.CreatedAt,
	}
}

func FromOpportunities(opps []valuebet.Opportunity) []ValueBet {
	out := make([]ValueBet, 0, len(opps))
	for _, o := range opps {
		out = append(out, FromOpportunity(o))
	}
	return out
}

// Bet é a projeção de uma aposta para a API.
type Bet struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	MatchID              string     `json:"match_id"`
	ValueBetID           string     `json:"value_bet_id,omitempty"`
	Outcome              string     `json:"outcome"`
	StakeCents           int64      `json:"stake_cents"`
	Odds                 float64    `json:"odds"`
	PotentialPayoutCents int64      `json:"potential_payout_cents"`
	ActualPayoutCents    int64      `json:"actual_payout_cents"`
	Status               string     `json:"status"`
	Simulation           bool       `json:"simulation"`
	PlacedAt             time.Time  `json:"placed_at"`
	SettledAt            *time.Time `json:"settled_at,omitempty"`
}

func FromBet(b *betting.Bet) Bet {
	return Bet{
		ID:                   b.ID,
		UserID:               b.UserID,
		MatchID:              b.MatchID,
		ValueBetID:           b.ValueBetID,
		Outcome:              string(b.Outcome),
		StakeCents:           b.StakeCents,
		Odds:                 b.Odds,
		PotentialPayoutCents: b.PotentialPayoutCents,
		ActualPayoutCents:    b.ActualPayoutCents,
		Status:               string(b.Status),
		Simulation:           b.Simulation,
		PlacedAt:             b.PlacedAt,
		SettledAt:            b.SettledAt,
	}
}

func FromBets(bets []betting.Bet) []Bet {
	out := make([]Bet, 0, len(bets))
	for i := range bets {
		out = append(out, FromBet(&bets[i]))
	}
	return out
}

// BankrollResponse é a projeção da banca para a API.
type BankrollResponse struct {
	UserID                 string    `json:"user_id"`
	BalanceCents           int64     `json:"balance_cents"`
	SimulationBalanceCents int64     `json:"simulation_balance_cents"`
	ROIPercentage          float64   `json:"roi_percentage"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func FromBankroll(b *bankroll.Bankroll) BankrollResponse {
	return BankrollResponse{
		UserID:                 b.UserID,
		BalanceCents:           b.BalanceCents,
		SimulationBalanceCents: b.SimulationBalanceCents,
		ROIPercentage:          b.ROIPercentage,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
}

// StatsResponse é a projeção das estatísticas para a API.
type StatsResponse struct {
	TotalBets            int     `json:"total_bets"`
	WinningBets          int     `json:"winning_bets"`
	LosingBets           int     `json:"losing_bets"`
	WinRate              float64 `json:"win_rate"`
	AverageOdds          float64 `json:"average_odds"`
	ProfitLossCents      int64   `json:"profit_loss_cents"`
	ROI                  float64 `json:"roi"`
	LongestWinningStreak int     `json:"longest_winning_streak"`
	LongestLosingStreak  int     `json:"longest_losing_streak"`
	BestBet              *Bet    `json:"best_bet,omitempty"`
	WorstBet             *Bet    `json:"worst_bet,omitempty"`
}

func FromStats(s stats.Stats) StatsResponse {
	out := StatsResponse{
		TotalBets:            s.TotalBets,
		WinningBets:          s.WinningBets,
		LosingBets:           s.LosingBets,
		WinRate:              s.WinRate,
		AverageOdds:          s.AverageOdds,
		ProfitLossCents:      s.ProfitLossCents,
		ROI:                  s.ROI,
		LongestWinningStreak: s.LongestWinningStreak,
		LongestLosingStreak:  s.LongestLosingStreak,
	}
	if s.BestBet != nil {
		b := FromBet(s.BestBet)
		out.BestBet = &b
	}
	if s.WorstBet != nil {
		b := FromBet(s.WorstBet)
		out.WorstBet = &b
	}
	return out
}
