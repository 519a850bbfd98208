package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// GameState - board plus the mark whose turn it is.
// It is mutated in place and is not safe for concurrent use.
type GameState struct {
	Board Board `json:"board"`
	Turn  Cell  `json:"turn"`
}

func NewGameState(first Cell) *GameState {
	return &GameState{Turn: first}
}

// ApplyMove - puts the current player's mark on the cell and passes the turn.
// An occupied cell leaves the state untouched.
func (that *GameState) ApplyMove(move Move) error {
	if !move.Valid() {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidMove, move)
	}

	if that.Board[move] != Empty {
		return fmt.Errorf("%w: %w: cell %d", apperror.ErrInvalidMove, apperror.ErrCellOccupied, move)
	}

	that.Board[move] = that.Turn
	that.Turn = that.Turn.Opponent()

	return nil
}

// UndoMove - reverts the most recent ApplyMove. Calls must pair with applies in LIFO order.
func (that *GameState) UndoMove(move Move) error {
	if !move.Valid() {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidMove, move)
	}

	if that.Board[move] == Empty {
		return fmt.Errorf("%w: cell %d is empty", apperror.ErrInvalidMove, move)
	}

	that.Board[move] = Empty
	that.Turn = that.Turn.Opponent()

	return nil
}

// With - applies the move, runs fn and undoes the move on every exit path of fn.
func (that *GameState) With(move Move, fn func()) error {
	if err := that.ApplyMove(move); err != nil {
		return err
	}

	defer func() {
		// the cell was just filled, so undo cannot fail
		_ = that.UndoMove(move)
	}()

	fn()

	return nil
}

// Winner - mark holding a complete line, or Empty.
// X lines are checked before O lines, so a malformed board with both reports X.
func (that *GameState) Winner() Cell {
	for _, mark := range [...]Cell{PlayerX, PlayerO} {
		for _, combo := range WinCombos {
			if that.Board[combo[0]] == mark && that.Board[combo[1]] == mark && that.Board[combo[2]] == mark {
				return mark
			}
		}
	}

	return Empty
}

func (that *GameState) IsFull() bool {
	for _, cell := range that.Board {
		if cell == Empty {
			return false
		}
	}

	return true
}

func (that *GameState) IsTerminal() bool {
	return that.Winner() != Empty || that.IsFull()
}

// AvailableMoves - empty cells in ascending order.
func (that *GameState) AvailableMoves() []Move {
	moves := make([]Move, 0, BoardSize)
	for i, cell := range that.Board {
		if cell == Empty {
			moves = append(moves, Move(i))
		}
	}

	return moves
}

func (that *GameState) Outcome() Outcome {
	if winner := that.Winner(); winner != Empty {
		return WinnerOutcome(winner)
	}

	if that.IsFull() {
		return Draw
	}

	return InProgress
}

// Consistent - reports whether the mark counts agree with the turn marker:
// the side to move has placed as many marks as the opponent, or one fewer.
func (that *GameState) Consistent() bool {
	if that.Turn != PlayerX && that.Turn != PlayerO {
		return false
	}

	mover := that.Board.Count(that.Turn)
	other := that.Board.Count(that.Turn.Opponent())

	return mover == other || mover+1 == other
}

func (that *GameState) Clone() *GameState {
	clone := *that
	return &clone
}
