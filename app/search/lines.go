package search

import "sort"

// LineShape tells which of the three forms an EvaluatedLine takes.
type LineShape int

const (
	// LineNoMove carries no move at all (a score may or may not be present).
	LineNoMove LineShape = iota
	// LineUnscored has at least one move but no evaluation.
	LineUnscored
	// LineScored has at least one move and an evaluation.
	LineScored
)

// EvaluatedLine is one principal variation reported by the engine for a position.
type EvaluatedLine struct {
	moves    []string
	score    Score
	hasScore bool
}

// ScoredLine is a line with moves and an evaluation.
func ScoredLine(score Score, moves ...string) EvaluatedLine {
	return EvaluatedLine{moves: moves, score: score, hasScore: true}
}

// UnscoredLine is a line the engine reported without an evaluation.
func UnscoredLine(moves ...string) EvaluatedLine {
	return EvaluatedLine{moves: moves}
}

// EmptyLine is a scored line with no moves, as reported for terminal positions.
func EmptyLine(score Score) EvaluatedLine {
	return EvaluatedLine{score: score, hasScore: true}
}

// Shape reports whether the line has moves and a score.
func (l EvaluatedLine) Shape() LineShape {
	switch {
	case len(l.moves) == 0:
		return LineNoMove
	case !l.hasScore:
		return LineUnscored
	default:
		return LineScored
	}
}

// Moves returns the move sequence in UCI notation.
func (l EvaluatedLine) Moves() []string {
	return l.moves
}

// Score returns the evaluation and whether one was reported.
func (l EvaluatedLine) Score() (Score, bool) {
	return l.score, l.hasScore
}

// rankKey is the unsigned magnitude for turn, or UnavailableMagnitude when the
// line carries no score.
func (l EvaluatedLine) rankKey(turn Side) int {
	if !l.hasScore {
		return UnavailableMagnitude
	}
	return l.score.Magnitude(turn)
}

// RankLines orders lines by closeness to equality for the side to move.
// Ties keep the engine order. The input slice is not modified.
func RankLines(lines []EvaluatedLine, turn Side) []EvaluatedLine {
	ranked := make([]EvaluatedLine, len(lines))
	copy(ranked, lines)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].rankKey(turn) < ranked[j].rankKey(turn)
	})
	return ranked
}
