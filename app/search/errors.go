package search

import "fmt"

// ValidationError reports a parameter outside its allowed range.
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, e.Min, e.Max, e.Value)
}

// EngineFaultError reports a malformed best line at some ply.
type EngineFaultError struct {
	Ply    int
	Reason string
}

func (e *EngineFaultError) Error() string {
	return fmt.Sprintf("engine fault at ply %d: %s", e.Ply, e.Reason)
}

// NoFairPositionError reports that the ply budget ran out.
type NoFairPositionError struct {
	MaxPly int
	MaxCP  int
}

func (e *NoFairPositionError) Error() string {
	return fmt.Sprintf("no position below %d centipawns within %d plies", e.MaxCP, e.MaxPly)
}
