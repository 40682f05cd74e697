package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

// Postgres persiste os dados de mercado: partidas, cotações correntes,
// histórico de cotações e snapshots de previsão.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// UpsertMatch insere/atualiza os dados de exibição da partida anunciada
// junto com a cotação.
func (p *Postgres) UpsertMatch(ctx context.Context, e events.OddsQuoteUpdated) error {
	const q = `
		INSERT INTO matches (id, home_team, away_team, league, starts_at, status)
		VALUES ($1,$2,$3,$4,$5,'scheduled')
		ON CONFLICT (id) DO UPDATE SET
		  home_team = EXCLUDED.home_team,
		  away_team = EXCLUDED.away_team,
		  league    = EXCLUDED.league,
		  starts_at = EXCLUDED.starts_at
	`
	_, err := p.db.ExecContext(ctx, q, e.MatchID, e.HomeTeam, e.AwayTeam, e.League, e.StartsAt)
	return err
}

// UpsertQuote insere/atualiza a cotação corrente de um bookmaker para uma
// partida. ON CONFLICT na chave natural (match_id, bookmaker) evita
// duplicidade em reprocessamentos.
func (p *Postgres) UpsertQuote(ctx context.Context, e events.OddsQuoteUpdated) error {
	const q = `
		INSERT INTO odds_quotes
		  (match_id, bookmaker, home_odd, draw_odd, away_odd, version, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (match_id, bookmaker) DO UPDATE SET
		  home_odd  = EXCLUDED.home_odd,
		  draw_odd  = EXCLUDED.draw_odd,
		  away_odd  = EXCLUDED.away_odd,
		  version   = EXCLUDED.version,
		  updated_at= EXCLUDED.updated_at
	`
	_, err := p.db.ExecContext(ctx, q,
		e.MatchID, e.Bookmaker,
		e.Prices.Home, e.Prices.Draw, e.Prices.Away,
		e.Version, e.UpdatedAt,
	)
	return err
}

// InsertQuoteHistory registra a cotação no histórico.
func (p *Postgres) InsertQuoteHistory(ctx context.Context, e events.OddsQuoteUpdated) error {
	const q = `
		INSERT INTO odds_quote_history
		  (match_id, bookmaker, home_odd, draw_odd, away_odd, version, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := p.db.ExecContext(ctx, q,
		e.MatchID, e.Bookmaker,
		e.Prices.Home, e.Prices.Draw, e.Prices.Away,
		e.Version, e.UpdatedAt,
	)
	return err
}

// InsertPrediction registra um novo snapshot de previsão. Snapshots são
// imutáveis: sempre insert, o mais recente vence na precificação.
func (p *Postgres) InsertPrediction(ctx context.Context, e events.PredictionCreated) (string, error) {
	id := uuid.NewString()
	const q = `
		INSERT INTO predictions
		  (id, match_id, home_prob, draw_prob, away_prob, confidence, model_version, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	if _, err := p.db.ExecContext(ctx, q,
		id, e.MatchID,
		e.HomeWinProbability, e.DrawProbability, e.AwayWinProbability,
		e.ConfidenceScore, e.ModelVersion, e.CreatedAt,
	); err != nil {
		return "", fmt.Errorf("insert prediction: %w", err)
	}
	return id, nil
}

// MarkMatchFinished tira a partida do conjunto agendado quando o resultado
// chega, para que o próximo scan não gere oportunidade para ela.
func (p *Postgres) MarkMatchFinished(ctx context.Context, matchID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE matches SET status = 'finished' WHERE id = $1`, matchID)
	return err
}
