package negamax

import (
	"context"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
)

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    childNodes := orderMoves(childNodes)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
**/

// evaluate scores the position for the side to move. A finished game is
// worth WinScore less the stone count to the winner; a full board is a draw.
func (s *Solver) evaluate() int32 {
	b := s.board
	stm := b.ToMove()
	switch b.Winner() {
	case board.NoSide:
		if b.IsFull() {
			return 0
		}
		return b.ScoreFor(stm)
	case stm:
		return WinScore - int32(b.StoneCount())
	default:
		return -(WinScore - int32(b.StoneCount()))
	}
}

// searchRoot runs one pass at the given depth and returns the best score and
// every root move that reaches it. Moves after the first are searched with
// the window (best-1, β) so that an exact tie is told apart from a fail-low.
func (s *Solver) searchRoot(ctx context.Context, depth int) (int32, []move.Move, error) {
	b := s.board
	side := b.ToMove()
	α, β := -HugeNumber, HugeNumber
	bestValue := -HugeNumber
	var ties []move.Move

	for idx, m := range s.rootMoves {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		b.MakeMove(m, side)
		s.nodes.Add(1)
		floor := α
		if s.pruningOptim && idx > 0 {
			floor = bestValue - 1
		}
		value, err := s.negamax(ctx, depth-1, -β, -floor)
		b.Undo()
		if err != nil {
			return 0, nil, err
		}
		value = -value
		s.rootScores[idx] = value
		switch {
		case value > bestValue:
			bestValue = value
			ties = append(ties[:0], m)
		case value == bestValue:
			ties = append(ties, m)
		}
	}
	if s.transpositionTableOptim {
		s.ttable.store(b.Hash(), TableEntry{
			score: bestValue,
			flag:  TTExact,
			depth: uint8(depth),
			play:  ties[0],
		})
	}
	return bestValue, ties, nil
}

func (s *Solver) negamax(ctx context.Context, depth int, α, β int32) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b := s.board
	nodeKey := b.Hash()

	alphaOrig := α
	hashMove := move.InvalidMove
	if s.transpositionTableOptim {
		if ttEntry, ok := s.ttable.lookup(nodeKey); ok {
			hashMove = ttEntry.play
			if int(ttEntry.depth) >= depth {
				score := ttEntry.score
				switch ttEntry.flag {
				case TTExact:
					return score, nil
				case TTLower:
					α = max(α, score)
				case TTUpper:
					β = min(β, score)
				}
				if α >= β {
					return score, nil
				}
			}
		}
	}

	if depth <= 0 || b.Terminal() {
		return s.evaluate(), nil
	}

	children := s.playsAt(depth)
	movegen.GenAll(b, hashMove, children)
	if children.Len() == 0 {
		return s.evaluate(), nil
	}

	side := b.ToMove()
	bestValue := -HugeNumber
	bestMove := move.InvalidMove
	for _, child := range children.Moves {
		b.MakeMove(child, side)
		s.nodes.Add(1)
		value, err := s.negamax(ctx, depth-1, -β, -α)
		b.Undo()
		if err != nil {
			return value, err
		}
		if -value > bestValue {
			bestValue = -value
			bestMove = child
		}
		if s.pruningOptim {
			α = max(α, bestValue)
			if α >= β {
				break // beta cut-off
			}
		}
	}

	if s.transpositionTableOptim {
		entryToStore := TableEntry{
			score: bestValue,
			depth: uint8(min(depth, 255)),
			play:  bestMove,
		}
		if bestValue <= alphaOrig {
			entryToStore.flag = TTUpper
		} else if bestValue >= β {
			entryToStore.flag = TTLower
		} else {
			entryToStore.flag = TTExact
		}
		s.ttable.store(nodeKey, entryToStore)
	}
	return bestValue, nil
}
