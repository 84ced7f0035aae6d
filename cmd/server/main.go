package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barcontrol/internal/config"
	"barcontrol/internal/infra"
	"barcontrol/internal/middleware"
	"barcontrol/internal/repository"
	"barcontrol/internal/router"
	"barcontrol/internal/service"
	"barcontrol/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis only carries locks and background jobs; the bar keeps selling without it.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis indisponível, seguindo sem filas")
			rdb = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logRepo := repository.NewLogRepository(db)
	breaker := infra.NewBreaker(5, 30*time.Second)
	dispatcher := worker.NewDispatcher(rdb, breaker, logRepo)
	if rdb != nil {
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.NewHandlers(logRepo))
	}
	worker.StartRetencaoLogs(ctx, logRepo, cfg.LogRetentionDays)
	go middleware.StartLimiterPurge(ctx)

	authSvc := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	created, err := authSvc.GarantirAdmin(ctx, cfg.SeedAdminUsername, cfg.SeedAdminPassword, cfg.SeedAdminName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}
	if created {
		log.Warn().Str("username", cfg.SeedAdminUsername).Msg("usuário admin inicial criado, troque a senha")
	}

	r := router.New(cfg, db, rdb, dispatcher, breaker)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("barcontrol backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
