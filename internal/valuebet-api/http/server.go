package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/bankroll"
	"github.com/radieske/value-bet-platform/internal/betting"
	"github.com/radieske/value-bet-platform/internal/scanner"
	"github.com/radieske/value-bet-platform/internal/stats"
	"github.com/radieske/value-bet-platform/internal/valuebet"
	"github.com/radieske/value-bet-platform/internal/valuebet-api/dto"
	"github.com/radieske/value-bet-platform/internal/valuebet-api/ws"
	vbcache "github.com/radieske/value-bet-platform/internal/valuebet/cache"
)

// ValueBetSource lê o lote corrente de oportunidades.
type ValueBetSource interface {
	List(ctx context.Context, minValue float64, limit int) ([]valuebet.Opportunity, error)
}

// ScanTrigger dispara um ciclo de scan sob demanda.
type ScanTrigger interface {
	RunOnce(ctx context.Context) (scanner.Summary, error)
}

// BetReader lê apostas para as rotas de consulta.
type BetReader interface {
	Get(ctx context.Context, betID string) (*betting.Bet, error)
	ListByUser(ctx context.Context, userID string, f betting.ListFilter) ([]betting.Bet, error)
	ListSettled(ctx context.Context, userID string, simulation bool) ([]betting.Bet, error)
}

// Ledger é o recorte do ledger de banca usado pelas rotas de bankroll.
type Ledger interface {
	GetOrCreate(ctx context.Context, userID string) (*bankroll.Bankroll, error)
	Credit(ctx context.Context, userID string, amountCents int64, simulation bool, ref string) error
}

// API expõe os endpoints REST do motor de value bets: oportunidades,
// apostas, banca e estatísticas.
type API struct {
	Log       *zap.Logger
	ValueBets ValueBetSource
	Cache     *vbcache.Cache // opcional: lote corrente sem ir ao banco
	Scans     ScanTrigger
	Bets      *betting.Service
	BetReader BetReader
	Ledger    Ledger
	Hub       *ws.Hub // opcional
}

// Router retorna o roteador HTTP com os endpoints REST.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/v1/value-bets", a.listValueBets)
	r.Post("/v1/value-bets/scan", a.triggerScan)

	r.Post("/v1/bets", a.placeBet)
	r.Get("/v1/bets", a.listBets)
	r.Get("/v1/bets/{id}", a.getBet)
	r.Post("/v1/bets/{id}/settle", a.settleBet)

	r.Get("/v1/bankroll", a.getBankroll)
	r.Post("/v1/bankroll/deposit", a.deposit)

	r.Get("/v1/stats", a.getStats)

	if a.Hub != nil {
		r.Get("/ws", a.Hub.HandleWS)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia os erros de domínio para status HTTP.
func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, betting.ErrInvalidBetParameters),
		errors.Is(err, bankroll.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, betting.ErrBetNotFound),
		errors.Is(err, bankroll.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, bankroll.ErrInsufficientBalance),
		errors.Is(err, betting.ErrAlreadySettled):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		a.Log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

// listValueBets devolve o lote corrente. Sem filtros, tenta o cache antes
// do banco.
func (a *API) listValueBets(w http.ResponseWriter, r *http.Request) {
	minValue, err := parseFloat(r.URL.Query().Get("min_value"), 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid min_value"})
		return
	}
	limit, err := parseInt(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
		return
	}

	if minValue == 0 && limit == 0 && a.Cache != nil {
		var cached []valuebet.Opportunity
		if ok, _ := a.Cache.GetBatch(r.Context(), &cached); ok {
			writeJSON(w, http.StatusOK, dto.FromOpportunities(cached))
			return
		}
	}

	opps, err := a.ValueBets.List(r.Context(), minValue, limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromOpportunities(opps))
}

// triggerScan dispara um ciclo de scan imediato.
func (a *API) triggerScan(w http.ResponseWriter, r *http.Request) {
	if a.Scans == nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "scanner unavailable"})
		return
	}
	sum, err := a.Scans.RunOnce(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}

	bet, err := a.Bets.Place(r.Context(), betting.PlaceParams{
		UserID:     req.UserID,
		MatchID:    req.MatchID,
		ValueBetID: req.ValueBetID,
		Outcome:    req.Outcome,
		StakeCents: req.StakeCents,
		Odds:       req.Odds,
		Simulation: req.Simulation,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.FromBet(bet))
}

func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "user_id is required"})
		return
	}
	limit, err := parseInt(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
		return
	}

	f := betting.ListFilter{
		Status: betting.Status(r.URL.Query().Get("status")),
		Limit:  limit,
	}
	if v := r.URL.Query().Get("simulation"); v != "" {
		sim, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid simulation"})
			return
		}
		f.Simulation = &sim
	}

	bets, err := a.BetReader.ListByUser(r.Context(), userID, f)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBets(bets))
}

func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	bet, err := a.BetReader.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(bet))
}

func (a *API) settleBet(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}

	bet, err := a.Bets.Settle(r.Context(), chi.URLParam(r, "id"), betting.Result(req.Result))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(bet))
}

// getBankroll devolve a banca do usuário, criando-a com os saldos padrão no
// primeiro acesso.
func (a *API) getBankroll(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "user_id is required"})
		return
	}
	b, err := a.Ledger.GetOrCreate(r.Context(), userID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBankroll(b))
}

func (a *API) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "user_id is required"})
		return
	}

	// garante a existência da banca antes do crédito
	if _, err := a.Ledger.GetOrCreate(r.Context(), req.UserID); err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.Ledger.Credit(r.Context(), req.UserID, req.AmountCents, req.Simulation, "deposit"); err != nil {
		a.writeError(w, err)
		return
	}

	b, err := a.Ledger.GetOrCreate(r.Context(), req.UserID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBankroll(b))
}

func (a *API) getStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "user_id is required"})
		return
	}
	simulation := false
	if v := r.URL.Query().Get("simulation"); v != "" {
		var err error
		if simulation, err = strconv.ParseBool(v); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid simulation"})
			return
		}
	}

	settled, err := a.BetReader.ListSettled(r.Context(), userID, simulation)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromStats(stats.Aggregate(settled)))
}

func parseFloat(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
