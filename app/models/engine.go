package models

type UCIScore struct {
	// Exactly one of these will be set:
	CP   *int `json:"cp,omitempty"`   // centipawns, positive means advantage for side to move
	Mate *int `json:"mate,omitempty"` // in N, sign indicates who is mating (+ means side to move mates)
}

// PVLine is the last report the engine gave for one MultiPV slot.
type PVLine struct {
	MultiPV int       `json:"multipv"`
	Depth   int       `json:"depth"`
	Score   *UCIScore `json:"score,omitempty"` // nil when the engine never scored this line
	Moves   []string  `json:"pv"`              // UCI moves, e.g. "e2e4"
}
