package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"example/fair-chess-api/app/config"
	"example/fair-chess-api/app/models"
	"example/fair-chess-api/app/search"

	"github.com/rs/zerolog"
)

// Ruy Lopez, Breyer variation.
var breyer = []string{
	"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5a4", "g8f6",
	"e1g1", "f8e7", "f1e1", "b7b5", "a4b3", "d7d6", "c2c3", "e8g8",
	"h2h3", "c6b8", "d2d4", "b8d7", "b1d2", "c8b7", "b3c2", "f8e8",
	"a2a4", "e7f8",
}

func intPtr(v int) *int { return &v }

// scriptedEngine plays the Breyer line and reports scores(ply) for its move.
// With decoy set, a worse line is listed first by the engine.
type scriptedEngine struct {
	fens   []string
	decoy  bool
	scores func(ply int) *models.UCIScore
}

func (s *scriptedEngine) Analyse(_ context.Context, fen string, _, _ int) ([]models.PVLine, error) {
	ply := len(s.fens)
	s.fens = append(s.fens, fen)
	if ply >= len(breyer) {
		return nil, errors.New("script exhausted")
	}
	line := models.PVLine{MultiPV: 1, Score: s.scores(ply), Moves: []string{breyer[ply]}}
	if !s.decoy {
		return []models.PVLine{line}, nil
	}
	line.MultiPV = 2
	return []models.PVLine{
		{MultiPV: 1, Score: &models.UCIScore{CP: intPtr(900)}, Moves: []string{"a2a3"}},
		line,
	}, nil
}

func TestRunSearchOnRealBoard(t *testing.T) {
	eng := &scriptedEngine{decoy: true, scores: func(ply int) *models.UCIScore {
		if ply == 19 {
			return &models.UCIScore{CP: intPtr(-3)}
		}
		return &models.UCIScore{CP: intPtr(250)}
	}}

	game, err := runSearch(context.Background(), uciAnalyser{eng: eng}, search.DefaultParameters(), zerolog.Nop())
	if err != nil {
		t.Fatalf("runSearch error: %v", err)
	}
	if game.Ply != 19 || game.Score != 3 || game.Turn != "white" {
		t.Fatalf("unexpected game: %+v", game)
	}
	if !strings.Contains(game.FEN, " w ") {
		t.Fatalf("unexpected FEN: %s", game.FEN)
	}
	if len(eng.fens) != 20 {
		t.Fatalf("engine calls = %d, want 20", len(eng.fens))
	}
	if !strings.HasPrefix(eng.fens[0], "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Fatalf("first analysis was not the initial position: %s", eng.fens[0])
	}
}

func TestRunSearchReportsNoFairGame(t *testing.T) {
	eng := &scriptedEngine{scores: func(int) *models.UCIScore { return &models.UCIScore{Mate: intPtr(3)} }}

	_, err := runSearch(context.Background(), uciAnalyser{eng: eng}, search.DefaultParameters(), zerolog.Nop())
	var noFair *search.NoFairPositionError
	if !errors.As(err, &noFair) {
		t.Fatalf("runSearch error = %v, want NoFairPositionError", err)
	}
	if len(eng.fens) != search.DefaultMaxPly {
		t.Fatalf("engine calls = %d, want %d", len(eng.fens), search.DefaultMaxPly)
	}
}

func TestRunSearchReportsEngineFault(t *testing.T) {
	eng := &scriptedEngine{scores: func(ply int) *models.UCIScore {
		if ply == 2 {
			return nil
		}
		return &models.UCIScore{CP: intPtr(10)}
	}}

	_, err := runSearch(context.Background(), uciAnalyser{eng: eng}, search.DefaultParameters(), zerolog.Nop())
	var fault *search.EngineFaultError
	if !errors.As(err, &fault) || fault.Ply != 2 {
		t.Fatalf("runSearch error = %v, want EngineFaultError at ply 2", err)
	}
}

// fakeSession is a scripted engine that restarts its script on NewGame.
type fakeSession struct {
	*scriptedEngine
	newGameErr  error
	newGames    int
	hadDeadline bool
}

func (s *fakeSession) NewGame() error {
	if s.newGameErr != nil {
		return s.newGameErr
	}
	s.newGames++
	s.fens = nil
	return nil
}

func (s *fakeSession) Analyse(ctx context.Context, fen string, depth, multiPV int) ([]models.PVLine, error) {
	_, s.hadDeadline = ctx.Deadline()
	return s.scriptedEngine.Analyse(ctx, fen, depth, multiPV)
}

// onePool holds a single session, like an engine.Pool of size one.
type onePool struct {
	idle     chan engineSession
	released int
}

func newOnePool(s engineSession) *onePool {
	p := &onePool{idle: make(chan engineSession, 1)}
	p.idle <- s
	return p
}

func (p *onePool) Acquire(ctx context.Context) (engineSession, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case s := <-p.idle:
		return s, nil
	}
}

func (p *onePool) Release(s engineSession) {
	p.released++
	p.idle <- s
}

func fairAtPly19(ply int) *models.UCIScore {
	if ply == 19 {
		return &models.UCIScore{CP: intPtr(-3)}
	}
	return &models.UCIScore{CP: intPtr(250)}
}

func newTestService(pool enginePool, timeout time.Duration) *FairGameService {
	return &FairGameService{pool: pool, timeout: timeout, log: zerolog.Nop()}
}

func TestGenerateFairGame(t *testing.T) {
	session := &fakeSession{scriptedEngine: &scriptedEngine{scores: fairAtPly19}}
	pool := newOnePool(session)

	game, err := newTestService(pool, 0).GenerateFairGame(context.Background(), search.DefaultParameters())
	if err != nil {
		t.Fatalf("GenerateFairGame error: %v", err)
	}
	if game.Ply != 19 || game.Score != 3 || game.Turn != "white" {
		t.Fatalf("unexpected game: %+v", game)
	}
	if session.newGames != 1 {
		t.Fatalf("NewGame calls = %d, want 1", session.newGames)
	}
	if session.hadDeadline {
		t.Fatalf("search should not have a deadline without a timeout")
	}
	if pool.released != 1 {
		t.Fatalf("releases = %d, want 1", pool.released)
	}
}

func TestGenerateFairGameAppliesTimeout(t *testing.T) {
	session := &fakeSession{scriptedEngine: &scriptedEngine{scores: fairAtPly19}}

	if _, err := newTestService(newOnePool(session), time.Minute).GenerateFairGame(context.Background(), search.DefaultParameters()); err != nil {
		t.Fatalf("GenerateFairGame error: %v", err)
	}
	if !session.hadDeadline {
		t.Fatalf("search should run under the configured timeout")
	}
}

func TestGenerateFairGameReleasesAfterFailures(t *testing.T) {
	cases := []struct {
		name   string
		scores func(int) *models.UCIScore
		check  func(error) bool
	}{
		{
			name:   "engine fault",
			scores: func(int) *models.UCIScore { return nil },
			check: func(err error) bool {
				var fault *search.EngineFaultError
				return errors.As(err, &fault)
			},
		},
		{
			name:   "no fair position",
			scores: func(int) *models.UCIScore { return &models.UCIScore{Mate: intPtr(3)} },
			check: func(err error) bool {
				var noFair *search.NoFairPositionError
				return errors.As(err, &noFair)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := &fakeSession{scriptedEngine: &scriptedEngine{scores: tc.scores}}
			pool := newOnePool(session)
			svc := newTestService(pool, 0)

			if _, err := svc.GenerateFairGame(context.Background(), search.DefaultParameters()); !tc.check(err) {
				t.Fatalf("GenerateFairGame error = %v", err)
			}
			if pool.released != 1 {
				t.Fatalf("releases = %d, want 1", pool.released)
			}

			// the same engine serves the next request
			session.scores = fairAtPly19
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			game, err := svc.GenerateFairGame(ctx, search.DefaultParameters())
			if err != nil {
				t.Fatalf("second GenerateFairGame error: %v", err)
			}
			if game.Ply != 19 || session.newGames != 2 {
				t.Fatalf("unexpected reuse: game %+v, new games %d", game, session.newGames)
			}
		})
	}
}

func TestGenerateFairGameReleasesWhenNewGameFails(t *testing.T) {
	session := &fakeSession{scriptedEngine: &scriptedEngine{scores: fairAtPly19}, newGameErr: errors.New("broken pipe")}
	pool := newOnePool(session)

	if _, err := newTestService(pool, 0).GenerateFairGame(context.Background(), search.DefaultParameters()); err == nil {
		t.Fatalf("GenerateFairGame should fail when NewGame fails")
	}
	if pool.released != 1 {
		t.Fatalf("releases = %d, want 1", pool.released)
	}
	if len(session.fens) != 0 {
		t.Fatalf("no analysis should run after NewGame fails")
	}
}

func TestGenerateFairGameWaitsForEngine(t *testing.T) {
	pool := &onePool{idle: make(chan engineSession, 1)}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := newTestService(pool, 0).GenerateFairGame(ctx, search.DefaultParameters()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("GenerateFairGame error = %v, want deadline exceeded", err)
	}
	if pool.released != 0 {
		t.Fatalf("nothing was acquired, releases = %d", pool.released)
	}
}

func TestToEvaluatedLine(t *testing.T) {
	cases := []struct {
		name  string
		line  models.PVLine
		shape search.LineShape
		mag   int
	}{
		{"scored", models.PVLine{Score: &models.UCIScore{CP: intPtr(-12)}, Moves: []string{"e2e4"}}, search.LineScored, 12},
		{"mate", models.PVLine{Score: &models.UCIScore{Mate: intPtr(2)}, Moves: []string{"e2e4"}}, search.LineScored, search.UnavailableMagnitude},
		{"unscored", models.PVLine{Moves: []string{"e2e4"}}, search.LineUnscored, 0},
		{"empty score", models.PVLine{Score: &models.UCIScore{}, Moves: []string{"e2e4"}}, search.LineUnscored, 0},
		{"no move", models.PVLine{Score: &models.UCIScore{Mate: intPtr(0)}}, search.LineNoMove, search.UnavailableMagnitude},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := toEvaluatedLine(tc.line, search.Black)
			if line.Shape() != tc.shape {
				t.Fatalf("shape = %v, want %v", line.Shape(), tc.shape)
			}
			if score, ok := line.Score(); ok && score.Magnitude(search.White) != tc.mag {
				t.Fatalf("magnitude = %d, want %d", score.Magnitude(search.White), tc.mag)
			}
		})
	}
}

func TestToEvaluatedLineScoresFromSideToMove(t *testing.T) {
	line := toEvaluatedLine(models.PVLine{Score: &models.UCIScore{CP: intPtr(40)}, Moves: []string{"e7e5"}}, search.Black)
	score, _ := line.Score()
	if cp, _ := score.Pov(search.Black); cp != 40 {
		t.Fatalf("black pov = %d, want 40", cp)
	}
	if cp, _ := score.Pov(search.White); cp != -40 {
		t.Fatalf("white pov = %d, want -40", cp)
	}
}

func TestConfigureLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := configureLogger(config.LogConfig{Level: "warn"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("unexpected log output: %q", out)
	}

	buf.Reset()
	logger = configureLogger(config.LogConfig{Level: "bogus"}, &buf)
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %v, want info", logger.GetLevel())
	}
}
