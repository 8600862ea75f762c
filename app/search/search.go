// Package search walks an engine's own best line from the initial position and
// stops at the first position, past a minimum ply, that the engine scores as
// nearly equal.
package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Position is the mutable board a search advances one move at a time.
type Position interface {
	// ApplyMove plays a move given in UCI notation.
	ApplyMove(move string) error
	// Snapshot returns an independent copy that later moves do not affect.
	Snapshot() Position
	FEN() string
	Turn() Side
}

// Engine analyses a position and returns up to lines principal variations.
// Calls are blocking and must not be interleaved on one engine.
type Engine interface {
	Analyse(ctx context.Context, pos Position, depth, lines int) ([]EvaluatedLine, error)
}

// Status is how a search ended.
type Status int

const (
	StatusFound Status = iota + 1
	StatusExhausted
	StatusEngineFault
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusExhausted:
		return "exhausted"
	case StatusEngineFault:
		return "engine_fault"
	default:
		return "unknown"
	}
}

// Candidate is an accepted position together with how it was reached.
type Candidate struct {
	Position Position
	Score    Score
	Ply      int
}

// Turn is the side to move in the candidate position.
func (c Candidate) Turn() Side {
	return c.Position.Turn()
}

// SignedScore is the evaluation from the side to move's point of view.
func (c Candidate) SignedScore() int {
	return c.Score.Signed(c.Turn())
}

// Magnitude is the unsigned evaluation from the side to move's point of view.
func (c Candidate) Magnitude() int {
	return c.Score.Magnitude(c.Turn())
}

// Outcome is the terminal state of one search. Candidate is only set when
// Status is StatusFound.
type Outcome struct {
	Status      Status
	Candidate   Candidate
	EngineCalls int
	err         error
}

// Err returns nil for a found position, otherwise *EngineFaultError or
// *NoFairPositionError.
func (o Outcome) Err() error {
	return o.err
}

// Searcher runs fair-position searches against one engine.
type Searcher struct {
	engine Engine
	log    zerolog.Logger
}

// NewSearcher returns a Searcher that logs each ply to logger.
func NewSearcher(engine Engine, logger zerolog.Logger) *Searcher {
	return &Searcher{engine: engine, log: logger}
}

// Run searches from pos, which it mutates in place. The returned error is only
// set when the engine call itself failed; domain failures are reported through
// the Outcome.
func (s *Searcher) Run(ctx context.Context, pos Position, params Parameters) (Outcome, error) {
	var (
		score Score
		calls int
	)

	for ply := 0; ply < params.MaxPly(); ply++ {
		s.log.Debug().
			Int("ply", ply).
			Str("turn", pos.Turn().String()).
			Msg("running eval")

		lines, err := s.engine.Analyse(ctx, pos, params.MaxDepth(), params.MaxPV())
		calls++
		if err != nil {
			return Outcome{EngineCalls: calls}, fmt.Errorf("analyse ply %d: %w", ply, err)
		}

		var best EvaluatedLine
		if ranked := RankLines(lines, pos.Turn()); len(ranked) > 0 {
			best = ranked[0]
		}

		switch best.Shape() {
		case LineNoMove:
			return s.fault(calls, ply, "no principal variation returned"), nil
		case LineUnscored:
			return s.fault(calls, ply, "no evaluation returned"), nil
		case LineScored:
		}

		move := best.Moves()[0]
		if err := pos.ApplyMove(move); err != nil {
			return s.fault(calls, ply, fmt.Sprintf("illegal move %s: %v", move, err)), nil
		}
		score, _ = best.Score()

		if ply <= params.MinPly() {
			s.log.Debug().
				Int("ply", ply).
				Int("min_ply", params.MinPly()).
				Msg("skipping candidate")
			continue
		}

		magnitude := score.Magnitude(pos.Turn())
		s.log.Debug().
			Int("ply", ply).
			Int("score", magnitude).
			Msg("candidate")

		if magnitude < params.MaxCP() {
			return Outcome{
				Status:      StatusFound,
				Candidate:   Candidate{Position: pos.Snapshot(), Score: score, Ply: ply},
				EngineCalls: calls,
			}, nil
		}
	}

	return Outcome{
		Status:      StatusExhausted,
		EngineCalls: calls,
		err:         &NoFairPositionError{MaxPly: params.MaxPly(), MaxCP: params.MaxCP()},
	}, nil
}

func (s *Searcher) fault(calls, ply int, reason string) Outcome {
	err := &EngineFaultError{Ply: ply, Reason: reason}
	s.log.Warn().Err(err).Msg("engine fault")
	return Outcome{Status: StatusEngineFault, EngineCalls: calls, err: err}
}
