package stats

import (
	"sort"

	"github.com/radieske/value-bet-platform/internal/betting"
)

// Stats são as métricas de dashboard derivadas do histórico liquidado de um
// usuário. Leitura pura: nada aqui é estado autoritativo.
type Stats struct {
	TotalBets            int
	WinningBets          int
	LosingBets           int
	WinRate              float64 // percentual
	AverageOdds          float64
	ProfitLossCents      int64
	ROI                  float64 // profit/total_staked * 100
	LongestWinningStreak int
	LongestLosingStreak  int
	BestBet              *betting.Bet // vitória de maior lucro (payout - stake)
	WorstBet             *betting.Bet // derrota de maior stake
}

// Aggregate computa as métricas sobre apostas liquidadas (WON/LOST).
// Entradas em outros status são ignoradas. A ordem cronológica de colocação
// é restabelecida internamente para o cálculo de sequências.
func Aggregate(bets []betting.Bet) Stats {
	settled := make([]betting.Bet, 0, len(bets))
	for _, b := range bets {
		if b.Status == betting.StatusWon || b.Status == betting.StatusLost {
			settled = append(settled, b)
		}
	}
	sort.SliceStable(settled, func(i, j int) bool {
		return settled[i].PlacedAt.Before(settled[j].PlacedAt)
	})

	var s Stats
	if len(settled) == 0 {
		return s
	}

	var totalStaked, totalReturns int64
	var totalOdds float64
	var curWin, curLose int

	for i := range settled {
		b := &settled[i]
		s.TotalBets++
		totalStaked += b.StakeCents
		totalOdds += b.Odds

		switch b.Status {
		case betting.StatusWon:
			s.WinningBets++
			totalReturns += b.ActualPayoutCents

			curWin++
			curLose = 0
			if curWin > s.LongestWinningStreak {
				s.LongestWinningStreak = curWin
			}

			profit := b.ActualPayoutCents - b.StakeCents
			if s.BestBet == nil || profit > s.BestBet.ActualPayoutCents-s.BestBet.StakeCents {
				s.BestBet = b
			}

		case betting.StatusLost:
			s.LosingBets++

			curLose++
			curWin = 0
			if curLose > s.LongestLosingStreak {
				s.LongestLosingStreak = curLose
			}

			if s.WorstBet == nil || b.StakeCents > s.WorstBet.StakeCents {
				s.WorstBet = b
			}
		}
	}

	s.WinRate = float64(s.WinningBets) / float64(s.TotalBets) * 100
	s.AverageOdds = totalOdds / float64(s.TotalBets)
	s.ProfitLossCents = totalReturns - totalStaked
	if totalStaked > 0 {
		s.ROI = float64(s.ProfitLossCents) / float64(totalStaked) * 100
	}
	return s
}
