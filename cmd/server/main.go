package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/club-events/internal/config"
	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/handler"
	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/queue"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/router"
	"github.com/iliyamo/club-events/internal/service"
)

func main() {
	cfg := config.MustLoad()
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dialect, err := database.Open(cfg.DB)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, dialect); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Redis is optional: without it rate limiting and caching are off.
	rc, err := config.LoadRedisConfig()
	if err != nil {
		logger.Error("redis config", "err", err)
		os.Exit(1)
	}
	rdb := config.NewRedisClient(rc)
	if rdb == nil {
		logger.Warn("redis unavailable; rate limit and cache disabled", "addr", rc.Address())
	} else {
		defer rdb.Close()
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Error("rate limit config", "err", err)
		os.Exit(1)
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		logger.Error("cache config", "err", err)
		os.Exit(1)
	}

	var (
		notifier service.Notifier      = service.NopNotifier{}
		verifier service.EmailVerifier = service.NopNotifier{}
	)
	if cfg.RabbitMQURL != "" {
		pub := queue.NewPublisher(cfg.RabbitMQURL)
		notifier, verifier = pub, pub
	} else {
		logger.Info("RABBITMQ_URL not set; notifications disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db, dialect)
	regs := repository.NewRegistrationRepo(db, dialect)
	content := repository.NewContentRepo(db)

	ledger := service.NewRegistrationService(db, events, regs, users, notifier, logger)
	eventSvc := service.NewEventService(db, events, regs, logger)

	e := router.New(db, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Profile:       handler.NewProfileHandler(cfg, users, tokens, ledger, verifier),
		Events:        handler.NewEventHandler(eventSvc),
		Registrations: handler.NewRegistrationHandler(ledger),
		AdminUsers:    handler.NewAdminUserHandler(users),
		Content:       handler.NewContentHandler(content),
	}, cfg.JWTSecret, router.Options{
		Logger:    logger,
		RateLimit: middleware.RateLimit(rlCfg, rdb, logger),
		Cache:     middleware.ResponseCache(cacheCfg, rdb),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "db", string(dialect))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	// let in-flight confirmations finish before the db closes
	ledger.Wait()
}
