package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"example/fair-chess-api/app"
	"example/fair-chess-api/app/config"
	"example/fair-chess-api/app/engine"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := app.ConfigureLogger(cfg.Logs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.InitDB(ctx, cfg.DB); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize db")
	}
	defer app.CloseDB()

	pool, err := engine.NewPool(ctx, engine.PoolConfig{
		Path:    cfg.Engine.Path,
		Size:    cfg.Engine.PoolSize,
		Threads: cfg.Engine.Threads,
		HashMB:  cfg.Engine.HashMB,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start engines")
	}

	games := app.NewFairGameService(pool, cfg.Engine.SearchTimeout, logger)
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: app.NewRouter(cfg.HTTP, games),
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := pool.Close(); err != nil {
		logger.Error().Err(err).Msg("engine shutdown")
	}
}
