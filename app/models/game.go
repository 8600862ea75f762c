package models

import "time"

// FairGame is what we return to the frontend and store in the DB.
type FairGame struct {
	FEN   string `json:"fen"`
	Score int    `json:"score"` // centipawns from the side to move
	Ply   int    `json:"ply"`
	Turn  string `json:"turn"` // "white" or "black"
}

// StoredFairGame is a FairGame together with the parameters that produced it.
type StoredFairGame struct {
	FairGame
	ID        int64     `json:"id"`
	MinPly    int       `json:"min_ply"`
	MaxPly    int       `json:"max_ply"`
	MaxDepth  int       `json:"max_depth"`
	MaxCP     int       `json:"max_cp"`
	MaxPV     int       `json:"max_pv"`
	CreatedAt time.Time `json:"created_at"`
}
