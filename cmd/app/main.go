package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"telegram-promo-activator/internal/application"
	"telegram-promo-activator/internal/config"
	"telegram-promo-activator/internal/infra/adapters/giftsbattle"
	tele "telegram-promo-activator/internal/infra/adapters/telegram"
	pg "telegram-promo-activator/internal/infra/db/postgres"
	"telegram-promo-activator/internal/infra/logging"
	"telegram-promo-activator/internal/infra/metrics"
	red "telegram-promo-activator/internal/infra/redis"
	"telegram-promo-activator/internal/infra/sched"
	"telegram-promo-activator/internal/infra/web"
	"telegram-promo-activator/internal/infra/worker"
	"telegram-promo-activator/internal/usecase"
)

const pollingBackoffCap = 30 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	stateRepo := red.NewStateRepo(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	accountRepo := pg.NewAccountRepo(pool)
	activationRepo := pg.NewActivationRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Remote API ----
	gbClient, err := giftsbattle.NewClient(&cfg.GiftsBattle, logger)
	if err != nil {
		log.Fatalf("giftsbattle client: %v", err)
	}

	// ---- Use cases ----
	batchPool := worker.NewPool(cfg.Activation.ConcurrentLimit, logger)
	accountUC := usecase.NewAccountUseCase(accountRepo, gbClient, txManager, logger)
	activationUC := usecase.NewActivationUseCase(accountRepo, activationRepo, gbClient, batchPool, logger)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, gbClient, batchPool, logger)
	statsUC := usecase.NewStatsUseCase(accountRepo, activationRepo, logger)

	facade := application.NewBotFacade(accountUC, activationUC, balanceUC, statsUC)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealBotAdapter(&cfg.Bot, facade, stateRepo, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	go superviseBot(ctx, botAdapter, logger)

	// ---- Admin HTTP API ----
	var httpServer *http.Server
	if cfg.Admin.Port > 0 {
		auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
		adminSrv := web.NewServer(statsUC, accountUC, activationUC, auth, cfg.Admin.APIKey, logger)
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
			Handler: adminSrv.Routes(),
		}
		go func() {
			logger.Info().Str("addr", httpServer.Addr).Msg("admin API listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("admin API server error")
			}
		}()
	}

	// ---- Periodic balance refresh ----
	if cfg.Activation.RefreshInterval > 0 {
		balanceWorker := sched.NewBalanceWorker(cfg.Activation.RefreshInterval, balanceUC, logger)
		go func() { _ = balanceWorker.Run(ctx) }()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("admin API shutdown error")
		}
	}
}

// superviseBot restarts polling whenever it dies, with a doubling backoff.
// The bot process stays alive through transient Telegram outages instead of
// requiring an operator restart.
func superviseBot(ctx context.Context, bot *tele.RealBotAdapter, logger *zerolog.Logger) {
	backoff := time.Second
	for {
		err := bot.StartPolling(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Error().Err(err).Dur("backoff", backoff).Msg("telegram polling stopped; restarting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > pollingBackoffCap {
			backoff = pollingBackoffCap
		}
	}
}
