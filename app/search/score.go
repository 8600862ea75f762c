package search

import "fmt"

// UnavailableMagnitude stands in for any score that has no centipawn value
// (mate scores). It also means "very unfair", so the two cannot be told apart.
const UnavailableMagnitude = 1000

// Side is the colour a score is expressed for.
type Side int

const (
	White Side = iota
	Black
)

// Other is the opponent of s.
func (s Side) Other() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

type scoreKind int

const (
	kindCentipawns scoreKind = iota
	kindMate
)

// Score is an engine evaluation expressed from the point of view of one side.
type Score struct {
	kind  scoreKind
	value int
	pov   Side
}

// Centipawns builds a plain numeric score seen from pov.
func Centipawns(cp int, pov Side) Score {
	return Score{kind: kindCentipawns, value: cp, pov: pov}
}

// Mate builds a mate-in-n score seen from pov. Positive n means pov mates.
func Mate(n int, pov Side) Score {
	return Score{kind: kindMate, value: n, pov: pov}
}

// Pov returns the signed centipawns from side's point of view. ok is false
// when the score has no centipawn value.
func (s Score) Pov(side Side) (cp int, ok bool) {
	if s.kind != kindCentipawns {
		return 0, false
	}
	if side == s.pov {
		return s.value, true
	}
	return -s.value, true
}

// Signed is Pov with UnavailableMagnitude substituted for missing values.
func (s Score) Signed(side Side) int {
	cp, ok := s.Pov(side)
	if !ok {
		return UnavailableMagnitude
	}
	return cp
}

// Magnitude is the unsigned score for side.
func (s Score) Magnitude(side Side) int {
	cp, ok := s.Pov(side)
	if !ok {
		return UnavailableMagnitude
	}
	if cp < 0 {
		return -cp
	}
	return cp
}

func (s Score) String() string {
	if s.kind == kindMate {
		return fmt.Sprintf("mate %d (%s)", s.value, s.pov)
	}
	return fmt.Sprintf("cp %d (%s)", s.value, s.pov)
}
