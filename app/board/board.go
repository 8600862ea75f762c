// Package board adapts notnil/chess games to the search.Position interface.
package board

import (
	"fmt"
	"strings"

	"example/fair-chess-api/app/search"

	"github.com/notnil/chess"
)

// Position is a live game advanced one UCI move at a time.
type Position struct {
	game *chess.Game
}

// NewPosition starts from the standard initial position.
func NewPosition() *Position {
	return &Position{game: chess.NewGame()}
}

// FromFEN starts from an arbitrary position.
func FromFEN(fen string) (*Position, error) {
	opt, err := chess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return &Position{game: chess.NewGame(opt)}, nil
}

func (p *Position) ApplyMove(move string) error {
	m, err := chess.UCINotation{}.Decode(p.game.Position(), move)
	if err != nil {
		return err
	}
	return p.game.Move(m)
}

// Snapshot rebuilds the position from its FEN so the copy shares no state
// with the live game.
func (p *Position) Snapshot() search.Position {
	snap, err := FromFEN(p.FEN())
	if err != nil {
		// FEN produced by the library itself always parses.
		panic(err)
	}
	return snap
}

func (p *Position) FEN() string {
	return p.game.Position().String()
}

func (p *Position) Turn() search.Side {
	if p.game.Position().Turn() == chess.Black {
		return search.Black
	}
	return search.White
}
