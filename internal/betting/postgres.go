package betting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/value-bet-platform/internal/valuebet"
)

// Postgres implementa a persistência de apostas.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const betColumns = `
	id, user_id, match_id, COALESCE(value_bet_id, ''), outcome,
	stake_cents, odds, potential_payout_cents, actual_payout_cents,
	status, simulation, placed_at, settled_at`

func (p *Postgres) Insert(ctx context.Context, b *Bet) error {
	var valueBetID any
	if b.ValueBetID != "" {
		valueBetID = b.ValueBetID
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets
		  (id, user_id, match_id, value_bet_id, outcome, stake_cents, odds,
		   potential_payout_cents, actual_payout_cents, status, simulation, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9,$10,$11)`,
		b.ID, b.UserID, b.MatchID, valueBetID, string(b.Outcome), b.StakeCents, b.Odds,
		b.PotentialPayoutCents, string(b.Status), b.Simulation, b.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, betID string) (*Bet, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, betID)
	b, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, ErrBetNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// MarkSettled efetiva a transição PENDING -> terminal em um único UPDATE
// condicional. Redelivery ou liquidação dupla cai em ErrAlreadySettled,
// nunca em crédito duplicado.
func (p *Postgres) MarkSettled(ctx context.Context, betID string, status Status, actualPayoutCents int64, settledAt time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets
		SET status = $2, actual_payout_cents = $3, settled_at = $4
		WHERE id = $1 AND status = 'PENDING'`,
		betID, string(status), actualPayoutCents, settledAt,
	)
	if err != nil {
		return fmt.Errorf("mark settled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bets WHERE id = $1)`, betID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrBetNotFound
	}
	return ErrAlreadySettled
}

// Reopen desfaz a transição de liquidação (from -> PENDING). Só atua se a
// aposta ainda estiver no status terminal informado; qualquer outra coisa é
// uma corrida já resolvida e não deve ser sobrescrita.
func (p *Postgres) Reopen(ctx context.Context, betID string, from Status) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets
		SET status = 'PENDING', actual_payout_cents = 0, settled_at = NULL
		WHERE id = $1 AND status = $2`,
		betID, string(from),
	)
	if err != nil {
		return fmt.Errorf("reopen bet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reopen bet %s: not in status %s", betID, from)
	}
	return nil
}

// ListFilter filtra a listagem de apostas do usuário.
type ListFilter struct {
	Status     Status // vazio = todos
	Simulation *bool  // nulo = ambos os escopos
	Limit      int    // <= 0 = sem limite
}

// ListByUser devolve as apostas do usuário, mais recentes primeiro.
func (p *Postgres) ListByUser(ctx context.Context, userID string, f ListFilter) ([]Bet, error) {
	q := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1`
	args := []any{userID}

	if f.Status != "" {
		args = append(args, string(f.Status))
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Simulation != nil {
		args = append(args, *f.Simulation)
		q += fmt.Sprintf(" AND simulation = $%d", len(args))
	}
	q += " ORDER BY placed_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return p.queryBets(ctx, q, args...)
}

// ListSettled devolve as apostas liquidadas (WON/LOST) do escopo, em ordem
// cronológica de colocação — a ordem que o agregador de estatísticas espera.
func (p *Postgres) ListSettled(ctx context.Context, userID string, simulation bool) ([]Bet, error) {
	q := `SELECT ` + betColumns + `
		FROM bets
		WHERE user_id = $1 AND simulation = $2 AND status IN ('WON', 'LOST')
		ORDER BY placed_at`
	return p.queryBets(ctx, q, userID, simulation)
}

// ListPendingByMatch devolve as apostas pendentes de uma partida, para o
// settlement-worker liquidar quando o resultado chega.
func (p *Postgres) ListPendingByMatch(ctx context.Context, matchID string) ([]Bet, error) {
	q := `SELECT ` + betColumns + `
		FROM bets
		WHERE match_id = $1 AND status = 'PENDING'
		ORDER BY placed_at`
	return p.queryBets(ctx, q, matchID)
}

func (p *Postgres) queryBets(ctx context.Context, q string, args ...any) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBet(r rowScanner) (*Bet, error) {
	var b Bet
	var outcome, status string
	var settledAt sql.NullTime
	if err := r.Scan(
		&b.ID, &b.UserID, &b.MatchID, &b.ValueBetID, &outcome,
		&b.StakeCents, &b.Odds, &b.PotentialPayoutCents, &b.ActualPayoutCents,
		&status, &b.Simulation, &b.PlacedAt, &settledAt,
	); err != nil {
		return nil, err
	}
	b.Outcome = valuebet.Outcome(outcome)
	b.Status = Status(status)
	if settledAt.Valid {
		t := settledAt.Time
		b.SettledAt = &t
	}
	return &b, nil
}
