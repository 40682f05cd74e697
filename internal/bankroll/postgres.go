package bankroll

import (
	"context"
	"database/sql"
	"fmt"
)

// Postgres implementa o ledger de banca sobre Postgres.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// balanceColumn seleciona a coluna do escopo. Conjunto fechado: nunca
// recebe entrada de usuário.
func balanceColumn(simulation bool) string {
	if simulation {
		return "simulation_balance_cents"
	}
	return "balance_cents"
}

// GetOrCreate devolve a banca do usuário, criando-a com os saldos padrão no
// primeiro acesso. INSERT ... ON CONFLICT DO NOTHING garante uma única linha
// mesmo com primeiros acessos concorrentes.
func (p *Postgres) GetOrCreate(ctx context.Context, userID string) (*Bankroll, error) {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bankrolls (user_id, balance_cents, simulation_balance_cents, roi_percentage, version)
		VALUES ($1, $2, $3, 0, 1)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, int64(DefaultBalanceCents), int64(DefaultSimulationBalanceCents),
	)
	if err != nil {
		return nil, fmt.Errorf("create bankroll: %w", err)
	}

	var b Bankroll
	err = p.db.QueryRowContext(ctx, `
		SELECT user_id, balance_cents, simulation_balance_cents, roi_percentage, created_at, updated_at
		FROM bankrolls WHERE user_id = $1`, userID,
	).Scan(&b.UserID, &b.BalanceCents, &b.SimulationBalanceCents, &b.ROIPercentage, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Reserve debita o saldo do escopo de forma atômica: um único UPDATE
// condicional com a checagem de suficiência na cláusula WHERE, nunca
// read-modify-write em passos separados. Duas reservas concorrentes jamais
// passam pela checagem contra um saldo obsoleto.
func (p *Postgres) Reserve(ctx context.Context, userID string, amountCents int64, simulation bool, ref string) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	col := balanceColumn(simulation)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE bankrolls
		SET %[1]s = %[1]s - $1, version = version + 1, updated_at = NOW()
		WHERE user_id = $2 AND %[1]s >= $1`, col),
		amountCents, userID,
	)
	if err != nil {
		return fmt.Errorf("reserve: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distingue banca inexistente de saldo insuficiente
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM bankrolls WHERE user_id = $1)`, userID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bankroll_ledger (user_id, operation, amount_cents, simulation, description)
		VALUES ($1, 'RESERVE', $2, $3, $4)`,
		userID, amountCents, simulation, ref,
	); err != nil {
		return fmt.Errorf("ledger entry: %w", err)
	}

	return tx.Commit()
}

// Credit adiciona o valor ao saldo do escopo (pagamento de liquidação,
// estorno de void, depósito).
func (p *Postgres) Credit(ctx context.Context, userID string, amountCents int64, simulation bool, ref string) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	col := balanceColumn(simulation)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE bankrolls
		SET %[1]s = %[1]s + $1, version = version + 1, updated_at = NOW()
		WHERE user_id = $2`, col),
		amountCents, userID,
	)
	if err != nil {
		return fmt.Errorf("credit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bankroll_ledger (user_id, operation, amount_cents, simulation, description)
		VALUES ($1, 'CREDIT', $2, $3, $4)`,
		userID, amountCents, simulation, ref,
	); err != nil {
		return fmt.Errorf("ledger entry: %w", err)
	}

	return tx.Commit()
}

// RecalculateROI recalcula e persiste o ROI da banca real a partir das
// apostas liquidadas: profit/total_staked * 100 (0 sem apostas liquidadas).
// Leitura derivada: sempre reconstituível a partir do histórico de apostas.
func (p *Postgres) RecalculateROI(ctx context.Context, userID string) (float64, error) {
	var roi float64
	err := p.db.QueryRowContext(ctx, `
		UPDATE bankrolls SET roi_percentage = sub.roi, updated_at = NOW()
		FROM (
			SELECT CASE WHEN COALESCE(SUM(stake_cents), 0) = 0 THEN 0
			       ELSE (SUM(CASE WHEN status = 'WON' THEN actual_payout_cents ELSE 0 END) - SUM(stake_cents))::float8
			            / SUM(stake_cents) * 100
			       END AS roi
			FROM bets
			WHERE user_id = $1 AND simulation = false AND status IN ('WON', 'LOST')
		) sub
		WHERE user_id = $1
		RETURNING roi_percentage`, userID,
	).Scan(&roi)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("recalculate roi: %w", err)
	}
	return roi, nil
}
