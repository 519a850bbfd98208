package tictactoe

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/search"
)

// StartPolicy - decides which mark opens a new game.
type StartPolicy string

const (
	FixedXFirst StartPolicy = "x-first"
	FixedOFirst StartPolicy = "o-first"
	RandomStart StartPolicy = "random"
)

// Rand - source of randomness for RandomStart. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type Options struct {
	StartPolicy StartPolicy
	AIMark      entity.Cell
	Parallel    bool
}

type GameController struct {
	policy   StartPolicy
	aiMark   entity.Cell
	parallel bool
	rnd      Rand
}

func NewGameController(opts Options, rnd Rand) (*GameController, error) {
	switch opts.StartPolicy {
	case FixedXFirst, FixedOFirst:
	case RandomStart:
		if rnd == nil {
			return nil, fmt.Errorf("start policy %q needs a random source", opts.StartPolicy)
		}
	default:
		return nil, fmt.Errorf("unknown start policy %q", opts.StartPolicy)
	}

	if opts.AIMark != entity.PlayerX && opts.AIMark != entity.PlayerO {
		return nil, fmt.Errorf("invalid automated player mark %q", opts.AIMark)
	}

	return &GameController{
		policy:   opts.StartPolicy,
		aiMark:   opts.AIMark,
		parallel: opts.Parallel,
		rnd:      rnd,
	}, nil
}

func (that *GameController) AIMark() entity.Cell {
	return that.aiMark
}

func (that *GameController) HumanMark() entity.Cell {
	return that.aiMark.Opponent()
}

// NewGame - empty board with the opening mark chosen by the start policy.
func (that *GameController) NewGame() *entity.GameState {
	switch that.policy {
	case FixedOFirst:
		return entity.NewGameState(entity.PlayerO)
	case RandomStart:
		if that.rnd.IntN(2) == 0 {
			return entity.NewGameState(entity.PlayerX)
		}
		return entity.NewGameState(entity.PlayerO)
	default:
		return entity.NewGameState(entity.PlayerX)
	}
}

// ApplyHumanMove - validates and applies the human player's move.
func (that *GameController) ApplyHumanMove(state *entity.GameState, move entity.Move) error {
	if state.IsTerminal() {
		return apperror.ErrGameFinished
	}

	if state.Turn != that.HumanMark() {
		return fmt.Errorf("%w: %s to move", apperror.ErrIllegalTurn, state.Turn)
	}

	if err := state.ApplyMove(move); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	return nil
}

// ComputeAIMove - optimal move for the automated player. The state is left unchanged.
func (that *GameController) ComputeAIMove(ctx context.Context, state *entity.GameState) (search.Result, error) {
	if state.IsTerminal() {
		return search.Result{Move: entity.NoMove}, apperror.ErrNoMoveAvailable
	}

	if state.Turn != that.aiMark {
		return search.Result{Move: entity.NoMove}, fmt.Errorf("%w: %s to move", apperror.ErrIllegalTurn, state.Turn)
	}

	if that.parallel {
		result, err := search.ParallelBestMove(ctx, state, that.aiMark)
		if err != nil {
			return result, fmt.Errorf("failed to search best move: %w", err)
		}

		return result, nil
	}

	result, err := search.NewSearcher(state, that.aiMark).BestMove()
	if err != nil {
		return result, fmt.Errorf("failed to search best move: %w", err)
	}

	return result, nil
}

// PlayAIMove - computes and applies the automated player's move.
func (that *GameController) PlayAIMove(ctx context.Context, state *entity.GameState) (search.Result, error) {
	result, err := that.ComputeAIMove(ctx, state)
	if err != nil {
		return result, err
	}

	if err = state.ApplyMove(result.Move); err != nil {
		return result, fmt.Errorf("failed to apply automated move: %w", err)
	}

	return result, nil
}

func (that *GameController) Outcome(state *entity.GameState) entity.Outcome {
	return state.Outcome()
}
