package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/bankroll"
	"github.com/radieske/value-bet-platform/internal/betting"
	"github.com/radieske/value-bet-platform/internal/scanner"
	sharedcache "github.com/radieske/value-bet-platform/internal/shared/cache"
	"github.com/radieske/value-bet-platform/internal/shared/config"
	"github.com/radieske/value-bet-platform/internal/shared/db"
	"github.com/radieske/value-bet-platform/internal/shared/logger"
	"github.com/radieske/value-bet-platform/internal/shared/metrics"
	"github.com/radieske/value-bet-platform/internal/valuebet"
	httpapi "github.com/radieske/value-bet-platform/internal/valuebet-api/http"
	"github.com/radieske/value-bet-platform/internal/valuebet-api/ws"
	vbcache "github.com/radieske/value-bet-platform/internal/valuebet/cache"
	vbrepo "github.com/radieske/value-bet-platform/internal/valuebet/repo"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Camada de domínio
	ledger := bankroll.NewPostgres(pg)
	betRepo := betting.NewPostgres(pg)
	betSvc := betting.NewService(log, betRepo, ledger)

	vbRepo := vbrepo.NewPostgres(pg)
	cache := vbcache.New(redisClient, 60*time.Second)

	// Worker de scan embutido só para o trigger manual da API;
	// o scan periódico roda no scanner-worker.
	scanWorker := &scanner.Worker{
		Log:     log,
		Source:  vbRepo,
		Scanner: valuebet.NewScanner(log, cfg.MinValuePercent),
		Store:   vbRepo,
		Cache:   cache,
	}

	// WebSocket: clientes recebem a notificação de refresh de cada novo lote
	hub := ws.NewHub(func(*http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, log, redisClient, hub)

	api := &httpapi.API{
		Log:       log,
		ValueBets: vbRepo,
		Cache:     cache,
		Scans:     scanWorker,
		Bets:      betSvc,
		BetReader: betRepo,
		Ledger:    ledger,
		Hub:       hub,
	}

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	go func() {
		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Info("valuebet-api listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
	log.Info("valuebet-api stopped")
}
