package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

// Game - a single human versus automated player session.
type Game struct {
	ID         string    `json:"id"`
	State      GameState `json:"state"`
	HumanMark  Cell      `json:"human_mark"`
	AIMark     Cell      `json:"ai_mark"`
	Status     string    `json:"status"`
	Outcome    Outcome   `json:"outcome"`
	LastAIMove *Move     `json:"last_ai_move,omitempty"`
}

func NewGame(id string, state *GameState, aiMark Cell) *Game {
	game := &Game{
		ID:        id,
		State:     *state,
		HumanMark: aiMark.Opponent(),
		AIMark:    aiMark,
	}
	game.UpdateGameState()

	return game
}

// UpdateGameState - recomputes status and outcome from the board.
func (that *Game) UpdateGameState() {
	that.Outcome = that.State.Outcome()

	if that.Outcome == InProgress {
		that.Status = StatusOngoing
		return
	}

	that.Status = StatusFinished
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsAITurn() bool {
	return that.IsOngoing() && that.State.Turn == that.AIMark
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("unknown game status: %s", that.Status)
	}
}
