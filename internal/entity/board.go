package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	BoardSide = 3
	BoardSize = BoardSide * BoardSide
)

// Cell - content of a single board square.
type Cell uint8

const (
	Empty Cell = iota
	PlayerX
	PlayerO
)

var WinCombos = [8][3]Move{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func (that Cell) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

// Opponent - returns the other mark. Empty has no opponent.
func (that Cell) Opponent() Cell {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	cell, err := ParseCell(string(text))
	if err != nil {
		return err
	}

	*that = cell

	return nil
}

// ParseCell - converts "X", "O" or "" into a Cell.
func ParseCell(mark string) (Cell, error) {
	switch mark {
	case "X", "x":
		return PlayerX, nil
	case "O", "o":
		return PlayerO, nil
	case "":
		return Empty, nil
	default:
		return Empty, fmt.Errorf("unknown mark %q", mark)
	}
}

// Move - index of a board square, row-major.
type Move int

const NoMove Move = -1

// MoveAt - converts a (row, column) pair into a Move.
func MoveAt(row, col int) (Move, error) {
	if row < 0 || row >= BoardSide || col < 0 || col >= BoardSide {
		return NoMove, fmt.Errorf("%w: row %d, col %d", apperror.ErrInvalidMove, row, col)
	}

	return Move(row*BoardSide + col), nil
}

func (that Move) Valid() bool {
	return that >= 0 && that < BoardSize
}

func (that Move) Row() int {
	return int(that) / BoardSide
}

func (that Move) Col() int {
	return int(that) % BoardSide
}

type Board [BoardSize]Cell

func (that *Board) Count(cell Cell) int {
	count := 0
	for _, c := range that {
		if c == cell {
			count++
		}
	}

	return count
}

// Outcome - result of a game, derived from the board.
type Outcome uint8

const (
	InProgress Outcome = iota
	XWins
	OWins
	Draw
)

func (that Outcome) String() string {
	switch that {
	case XWins:
		return "x_wins"
	case OWins:
		return "o_wins"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

func (that Outcome) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "x_wins":
		*that = XWins
	case "o_wins":
		*that = OWins
	case "draw":
		*that = Draw
	case "in_progress", "":
		*that = InProgress
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}

	return nil
}

// WinnerOutcome - outcome for a game won by the given mark.
func WinnerOutcome(winner Cell) Outcome {
	switch winner {
	case PlayerX:
		return XWins
	case PlayerO:
		return OWins
	default:
		return InProgress
	}
}
