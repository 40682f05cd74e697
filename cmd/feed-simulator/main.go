package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/shared/config"
	"github.com/radieske/value-bet-platform/internal/shared/logger"
	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	bookmakers = []string{"bet365", "pinnacle"}

	// Métricas Prometheus de conexões e mensagens do feed
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas por tipo",
	}, []string{"type"})
)

// simMatch é uma partida do catálogo simulado, com as probabilidades
// "reais" que o feed usa para gerar odds e previsões coerentes.
type simMatch struct {
	id       string
	homeTeam string
	awayTeam string
	league   string
	startsAt time.Time
	homeProb float64
	drawProb float64
	awayProb float64
	version  int
}

type clientConn struct {
	id   string
	mu   sync.Mutex
	conn *websocket.Conn
}

// write serializa as escritas na conexão: gorilla/websocket não permite
// escritores concorrentes, e odds, previsões e resultados são emitidos por
// goroutines independentes.
func (c *clientConn) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{clients: make(map[string]*clientConn), log: log}
}

func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

func (h *hub) broadcast(msg events.FeedMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, _ := json.Marshal(msg)
	for id, c := range h.clients {
		if err := c.write(b); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsMessagesSent.WithLabelValues(msg.Type).Inc()
		}
	}
}

// catalog gerencia o conjunto de partidas ativas da simulação.
type catalog struct {
	mu      sync.Mutex
	matches []*simMatch
	seq     int
}

var teams = [][2]string{
	{"Flamengo", "Palmeiras"},
	{"Grêmio", "Internacional"},
	{"Corinthians", "Santos"},
	{"São Paulo", "Vasco"},
	{"Cruzeiro", "Atlético-MG"},
	{"Botafogo", "Fluminense"},
}

func (c *catalog) newMatch() *simMatch {
	c.seq++
	pair := teams[c.seq%len(teams)]
	home := 0.25 + rand.Float64()*0.35 // 0.25..0.60
	draw := 0.15 + rand.Float64()*0.15 // 0.15..0.30
	return &simMatch{
		id:       fmt.Sprintf("MATCH_%03d", c.seq),
		homeTeam: pair[0],
		awayTeam: pair[1],
		league:   "Serie A",
		startsAt: time.Now().Add(time.Duration(1+rand.Intn(48)) * time.Hour).UTC(),
		homeProb: home,
		drawProb: draw,
		awayProb: 1 - home - draw,
	}
}

func (c *catalog) snapshot() []*simMatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*simMatch, len(c.matches))
	copy(out, c.matches)
	return out
}

// rotate remove a partida mais antiga e acrescenta uma nova, devolvendo a
// removida (a que vai receber resultado).
func (c *catalog) rotate() *simMatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.matches) == 0 {
		return nil
	}
	done := c.matches[0]
	c.matches = append(c.matches[1:], c.newMatch())
	return done
}

func fp(v float64) *float64 { return &v }

// quoteFor gera uma cotação com margem de bookmaker e ruído sobre as
// probabilidades reais. O ruído é o que abre espaço para value bets.
func quoteFor(m *simMatch, bookmaker, source string) events.OddsQuoteUpdated {
	margin := 1.05 + rand.Float64()*0.05
	noisy := func(p float64) float64 {
		v := p * (0.85 + rand.Float64()*0.30)
		if v < 0.02 {
			v = 0.02
		}
		return v
	}
	odd := func(p float64) *float64 {
		return fp(1 / (noisy(p) * margin))
	}
	return events.OddsQuoteUpdated{
		MatchID:   m.id,
		Bookmaker: bookmaker,
		HomeTeam:  m.homeTeam,
		AwayTeam:  m.awayTeam,
		League:    m.league,
		StartsAt:  m.startsAt,
		Prices: events.OddsPrices{
			Home: odd(m.homeProb),
			Draw: odd(m.drawProb),
			Away: odd(m.awayProb),
		},
		Version:   m.version,
		UpdatedAt: time.Now().UTC(),
		Source:    source,
	}
}

// predictionFor gera um snapshot do "modelo" próximo das probabilidades reais.
func predictionFor(m *simMatch) events.PredictionCreated {
	jitter := func(p float64) float64 { return p * (0.95 + rand.Float64()*0.10) }
	h, d, a := jitter(m.homeProb), jitter(m.drawProb), jitter(m.awayProb)
	sum := h + d + a
	return events.PredictionCreated{
		MatchID:            m.id,
		HomeWinProbability: h / sum,
		DrawProbability:    fp(d / sum),
		AwayWinProbability: a / sum,
		ConfidenceScore:    0.6 + rand.Float64()*0.35,
		ModelVersion:       "sim-v1",
		CreatedAt:          time.Now().UTC(),
	}
}

// resultFor sorteia o desfecho segundo as probabilidades reais da partida.
func resultFor(m *simMatch, source string) events.MatchResult {
	r := rand.Float64()
	result := "away"
	switch {
	case r < m.homeProb:
		result = "home"
	case r < m.homeProb+m.drawProb:
		result = "draw"
	}
	return events.MatchResult{
		MatchID:    m.id,
		Result:     result,
		FinishedAt: time.Now().UTC(),
		Source:     source,
	}
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(wsConnections, wsMessagesSent)

	h := newHub(log)

	cat := &catalog{}
	for i := 0; i < 4; i++ {
		cat.matches = append(cat.matches, cat.newMatch())
	}

	// Odds: a cada 3s, uma cotação por (partida, bookmaker)
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			for _, m := range cat.snapshot() {
				m.version++
				for _, bk := range bookmakers {
					q := quoteFor(m, bk, cfg.ServiceName)
					h.broadcast(events.FeedMessage{Type: events.FeedTypeOdds, Odds: &q})
				}
			}
		}
	}()

	// Previsões: a cada 15s, um snapshot por partida
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			for _, m := range cat.snapshot() {
				p := predictionFor(m)
				h.broadcast(events.FeedMessage{Type: events.FeedTypePrediction, Prediction: &p})
			}
		}
	}()

	// Resultados: a cada 90s, encerra a partida mais antiga e repõe o catálogo
	go func() {
		ticker := time.NewTicker(90 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if m := cat.rotate(); m != nil {
				res := resultFor(m, cfg.ServiceName)
				h.broadcast(events.FeedMessage{Type: events.FeedTypeResult, Result: &res})
				log.Info("match finished", zap.String("match_id", m.id), zap.String("result", res.Result))
			}
		}
	}()

	// ==== MUX PÚBLICO (/ws)
	appMux := http.NewServeMux()
	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("feed simulator (metrics) running", zap.String("addr", metricsAddr))
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("feed simulator (public) running", zap.String("addr", publicAddr), zap.String("paths", "/ws"))
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
