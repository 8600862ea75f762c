// Command fairgame generates one fair starting position with a local engine
// and prints it as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"example/fair-chess-api/app"
	"example/fair-chess-api/app/config"
	"example/fair-chess-api/app/engine"
	"example/fair-chess-api/app/search"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	minPly := flag.Int("min-ply", search.DefaultMinPly, "plies that are never accepted")
	maxPly := flag.Int("max-ply", search.DefaultMaxPly, "ply budget")
	maxDepth := flag.Int("max-depth", search.DefaultMaxDepth, "engine search depth")
	maxCP := flag.Int("max-cp", search.DefaultMaxCP, "fairness threshold in centipawns")
	maxPV := flag.Int("max-pv", search.DefaultMaxPV, "lines requested per position")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := app.ConfigureLogger(cfg.Logs)

	params, err := search.NewParameters(*minPly, *maxPly, *maxDepth, *maxCP, *maxPV)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid parameters")
	}

	if err := run(context.Background(), cfg, params, logger); err != nil {
		var noFair *search.NoFairPositionError
		if errors.As(err, &noFair) {
			logger.Error().Err(err).Msg("Could not find a fair game")
		} else {
			logger.Error().Err(err).Msg("search failed")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, params search.Parameters, logger zerolog.Logger) error {
	start := time.Now()
	pool, err := engine.NewPool(ctx, engine.PoolConfig{
		Path:    cfg.Engine.Path,
		Size:    1,
		Threads: cfg.Engine.Threads,
		HashMB:  cfg.Engine.HashMB,
	}, logger)
	if err != nil {
		return errors.WithMessage(err, "start engine")
	}
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn().Err(err).Msg("engine shutdown")
		}
	}()

	game, err := app.NewFairGameService(pool, cfg.Engine.SearchTimeout, logger).GenerateFairGame(ctx, params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(game); err != nil {
		return errors.Wrap(err, "encode result")
	}
	logger.Info().Dur("took", time.Since(start)).Msg("done")
	return nil
}
