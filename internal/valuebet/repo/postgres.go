package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/value-bet-platform/internal/valuebet"
)

// Postgres implementa a leitura dos insumos de scan e a persistência do
// lote de oportunidades.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// LoadScanInputs carrega as partidas agendadas com o snapshot de previsão
// mais recente e todas as cotações correntes. Partida sem previsão não entra
// no resultado; partida sem cotação entra com Quotes vazio (o scanner pula).
func (p *Postgres) LoadScanInputs(ctx context.Context) ([]valuebet.MatchData, error) {
	const qMatches = `
		SELECT m.id, m.home_team, m.away_team, m.league, m.starts_at,
		       pr.id, pr.home_prob, pr.draw_prob, pr.away_prob,
		       pr.confidence, pr.model_version, pr.created_at
		FROM matches m
		JOIN LATERAL (
			SELECT id, home_prob, draw_prob, away_prob, confidence, model_version, created_at
			FROM predictions
			WHERE match_id = m.id
			ORDER BY created_at DESC
			LIMIT 1
		) pr ON true
		WHERE m.status = 'scheduled'
		ORDER BY m.starts_at;
	`
	rows, err := p.db.QueryContext(ctx, qMatches)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	defer rows.Close()

	byMatch := make(map[string]*valuebet.MatchData)
	var order []string
	for rows.Next() {
		var md valuebet.MatchData
		var pred valuebet.PredictionSnapshot
		if err := rows.Scan(
			&md.Match.ID, &md.Match.HomeTeam, &md.Match.AwayTeam, &md.Match.League, &md.Match.StartsAt,
			&pred.ID, &pred.Home, &pred.Draw, &pred.Away,
			&pred.Confidence, &pred.ModelVersion, &pred.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		pred.MatchID = md.Match.ID
		md.Prediction = &pred
		byMatch[md.Match.ID] = &md
		order = append(order, md.Match.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const qQuotes = `
		SELECT q.match_id, q.bookmaker, q.home_odd, q.draw_odd, q.away_odd, q.version, q.updated_at
		FROM odds_quotes q
		JOIN matches m ON m.id = q.match_id
		WHERE m.status = 'scheduled'
		ORDER BY q.match_id, q.bookmaker;
	`
	qrows, err := p.db.QueryContext(ctx, qQuotes)
	if err != nil {
		return nil, fmt.Errorf("load quotes: %w", err)
	}
	defer qrows.Close()

	for qrows.Next() {
		var q valuebet.OddsQuote
		if err := qrows.Scan(&q.MatchID, &q.Bookmaker, &q.Home, &q.Draw, &q.Away, &q.Version, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan quote row: %w", err)
		}
		if md, ok := byMatch[q.MatchID]; ok {
			md.Quotes = append(md.Quotes, q)
		}
	}
	if err := qrows.Err(); err != nil {
		return nil, err
	}

	out := make([]valuebet.MatchData, 0, len(order))
	for _, id := range order {
		out = append(out, *byMatch[id])
	}
	return out, nil
}

// ReplaceBatch substitui o lote corrente de oportunidades em uma transação:
// delete-then-insert, nunca merge incremental, para que oportunidades de
// partidas resolvidas ou previsões superadas não sobrevivam ao scan.
func (p *Postgres) ReplaceBatch(ctx context.Context, opps []valuebet.Opportunity) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM value_bets`); err != nil {
		return fmt.Errorf("clear batch: %w", err)
	}

	const qInsert = `
		INSERT INTO value_bets
		  (id, match_id, prediction_id, bookmaker, outcome,
		   predicted_probability, bookmaker_odds, implied_probability,
		   value_percent, kelly_percent, expected_value, confidence,
		   home_team, away_team, league, match_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`
	stmt, err := tx.PrepareContext(ctx, qInsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range opps {
		if _, err := stmt.ExecContext(ctx,
			o.ID, o.MatchID, o.PredictionID, o.Bookmaker, string(o.Outcome),
			o.PredictedProbability, o.BookmakerOdds, o.ImpliedProbability,
			o.ValuePercent, o.KellyPercent, o.ExpectedValue, o.Confidence,
			o.HomeTeam, o.AwayTeam, o.League, o.MatchDate, o.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert opportunity %s: %w", o.ID, err)
		}
	}

	return tx.Commit()
}

// List devolve o lote corrente ordenado por valor decrescente.
// minValue filtra no banco (0 = sem filtro adicional); limit <= 0 = sem limite.
func (p *Postgres) List(ctx context.Context, minValue float64, limit int) ([]valuebet.Opportunity, error) {
	q := `
		SELECT id, match_id, prediction_id, bookmaker, outcome,
		       predicted_probability, bookmaker_odds, implied_probability,
		       value_percent, kelly_percent, expected_value, confidence,
		       home_team, away_team, league, match_date, created_at
		FROM value_bets
		WHERE value_percent >= $1
		ORDER BY value_percent DESC, confidence DESC, match_id, outcome
	`
	args := []any{minValue}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []valuebet.Opportunity
	for rows.Next() {
		var o valuebet.Opportunity
		var outcome string
		if err := rows.Scan(
			&o.ID, &o.MatchID, &o.PredictionID, &o.Bookmaker, &outcome,
			&o.PredictedProbability, &o.BookmakerOdds, &o.ImpliedProbability,
			&o.ValuePercent, &o.KellyPercent, &o.ExpectedValue, &o.Confidence,
			&o.HomeTeam, &o.AwayTeam, &o.League, &o.MatchDate, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		o.Outcome = valuebet.Outcome(outcome)
		out = append(out, o)
	}
	return out, rows.Err()
}
