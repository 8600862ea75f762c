package app

import (
	"context"
	"fmt"
	"time"

	"example/fair-chess-api/app/board"
	"example/fair-chess-api/app/engine"
	"example/fair-chess-api/app/models"
	"example/fair-chess-api/app/search"

	"github.com/rs/zerolog"
)

// GameGenerator produces one fair game per call.
type GameGenerator interface {
	GenerateFairGame(ctx context.Context, params search.Parameters) (models.FairGame, error)
}

// lineAnalyser is the part of engine.UCIEngine a search needs.
type lineAnalyser interface {
	Analyse(ctx context.Context, fen string, depth, multiPV int) ([]models.PVLine, error)
}

// uciAnalyser turns raw UCI lines into search lines. UCI scores are always
// given from the side to move.
type uciAnalyser struct {
	eng lineAnalyser
}

func (a uciAnalyser) Analyse(ctx context.Context, pos search.Position, depth, lines int) ([]search.EvaluatedLine, error) {
	raw, err := a.eng.Analyse(ctx, pos.FEN(), depth, lines)
	if err != nil {
		return nil, err
	}
	turn := pos.Turn()
	out := make([]search.EvaluatedLine, 0, len(raw))
	for _, line := range raw {
		out = append(out, toEvaluatedLine(line, turn))
	}
	return out, nil
}

func toEvaluatedLine(line models.PVLine, turn search.Side) search.EvaluatedLine {
	if line.Score == nil {
		return search.UnscoredLine(line.Moves...)
	}
	var score search.Score
	switch {
	case line.Score.CP != nil:
		score = search.Centipawns(*line.Score.CP, turn)
	case line.Score.Mate != nil:
		score = search.Mate(*line.Score.Mate, turn)
	default:
		return search.UnscoredLine(line.Moves...)
	}
	if len(line.Moves) == 0 {
		return search.EmptyLine(score)
	}
	return search.ScoredLine(score, line.Moves...)
}

// engineSession is a checked-out engine, reset once per game.
type engineSession interface {
	lineAnalyser
	NewGame() error
}

type enginePool interface {
	Acquire(ctx context.Context) (engineSession, error)
	Release(engineSession)
}

// uciPool lends engine.UCIEngine sessions from an engine.Pool.
type uciPool struct {
	pool *engine.Pool
}

func (p uciPool) Acquire(ctx context.Context) (engineSession, error) {
	eng, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return eng, nil
}

func (p uciPool) Release(s engineSession) {
	p.pool.Release(s.(*engine.UCIEngine))
}

// FairGameService runs searches on engines checked out of a pool.
type FairGameService struct {
	pool    enginePool
	timeout time.Duration
	log     zerolog.Logger
}

func NewFairGameService(pool *engine.Pool, timeout time.Duration, logger zerolog.Logger) *FairGameService {
	return &FairGameService{pool: uciPool{pool: pool}, timeout: timeout, log: logger}
}

// GenerateFairGame returns *search.EngineFaultError or
// *search.NoFairPositionError when the search itself fails.
func (s *FairGameService) GenerateFairGame(ctx context.Context, params search.Parameters) (models.FairGame, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	eng, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.FairGame{}, fmt.Errorf("acquire engine: %w", err)
	}
	defer s.pool.Release(eng)

	// New game (lets the engine clear its internal state)
	if err := eng.NewGame(); err != nil {
		return models.FairGame{}, fmt.Errorf("new game: %w", err)
	}

	start := time.Now()
	game, err := runSearch(ctx, uciAnalyser{eng: eng}, params, s.log)
	if err != nil {
		return models.FairGame{}, err
	}
	s.log.Info().
		Str("fen", game.FEN).
		Int("score", game.Score).
		Int("ply", game.Ply).
		Dur("took", time.Since(start)).
		Msg("fair game found")

	if err := SaveFairGame(ctx, game, params); err != nil {
		// not fatal, the caller still gets the game
		s.log.Error().Err(err).Msg("SaveFairGame failed")
	}
	return game, nil
}

func runSearch(ctx context.Context, eng search.Engine, params search.Parameters, logger zerolog.Logger) (models.FairGame, error) {
	outcome, err := search.NewSearcher(eng, logger).Run(ctx, board.NewPosition(), params)
	if err != nil {
		return models.FairGame{}, err
	}
	if outcome.Status != search.StatusFound {
		return models.FairGame{}, outcome.Err()
	}
	return fairGameFromCandidate(outcome.Candidate), nil
}

func fairGameFromCandidate(c search.Candidate) models.FairGame {
	return models.FairGame{
		FEN:   c.Position.FEN(),
		Score: c.SignedScore(),
		Ply:   c.Ply,
		Turn:  c.Turn().String(),
	}
}
