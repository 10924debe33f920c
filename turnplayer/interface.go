package turnplayer

import (
	"context"

	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/move"
)

// TurnPlayer picks a move for one side of a game, given only the grid as it
// stands at the start of the turn.
type TurnPlayer interface {
	NewGame(me game.Color)
	ChooseMove(ctx context.Context, grid game.Grid, me game.Color) (move.Move, error)
}
