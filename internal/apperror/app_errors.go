package apperror

import "errors"

var (
	ErrInvalidMove     = errors.New("invalid move")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrIllegalTurn     = errors.New("it's not your turn")
	ErrGameFinished    = errors.New("game is already finished")
	ErrNoMoveAvailable = errors.New("no move available")
	ErrGameNotFound    = errors.New("game not found")
)
