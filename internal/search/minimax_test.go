package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.Empty
)

func TestSearcher_BestMove(t *testing.T) {
	t.Run("Completes own row to win immediately", func(t *testing.T) {
		// Given: O holds two of the middle row and it is O's turn
		state := &entity.GameState{
			Board: entity.Board{x, x, e, o, o, e, e, e, e},
			Turn:  o,
		}

		// When: the best move for O is searched
		result, err := NewSearcher(state, o).BestMove()

		// Then: O completes the row
		require.NoError(t, err)
		assert.Equal(t, entity.Move(5), result.Move)
		assert.Equal(t, Win, result.Score)

		// And: the block at 2 also wins later but the immediate win is preferred
		require.NoError(t, state.With(2, func() {
			assert.Equal(t, Win, NewSearcher(state, o).Value())
		}))
	})

	t.Run("Takes the only winning move", func(t *testing.T) {
		// Given: O can finish the middle row and no other move wins
		state := &entity.GameState{
			Board: entity.Board{x, x, e, o, o, e, x, e, e},
			Turn:  o,
		}

		// When: the best move for O is searched
		result, err := NewSearcher(state, o).BestMove()

		// Then: O plays 5 and wins
		require.NoError(t, err)
		assert.Equal(t, entity.Move(5), result.Move)
		assert.Equal(t, Win, result.Score)

		// And: every other move falls short of a win
		for _, move := range []entity.Move{2, 7, 8} {
			require.NoError(t, state.With(move, func() {
				assert.NotEqual(t, Win, NewSearcher(state, o).Value(), "move %d", move)
			}))
		}
	})

	t.Run("Answers a corner opening with the center", func(t *testing.T) {
		// Given: X opened in the corner
		state := &entity.GameState{Board: entity.Board{x}, Turn: o}

		// When: O searches for a reply
		result, err := NewSearcher(state, o).BestMove()

		// Then: the center is the only reply that does not lose
		require.NoError(t, err)
		assert.Equal(t, entity.Move(4), result.Move)
		assert.Equal(t, Draw, result.Score)

		// And: optimal play from both sides never ends in an O loss
		require.NoError(t, state.ApplyMove(result.Move))
		assert.NotEqual(t, entity.XWins, playOut(t, state))
	})

	t.Run("Opening on an empty board is a draw and ties go to the lowest index", func(t *testing.T) {
		// Given: an empty board with the automated player to move
		state := entity.NewGameState(o)

		// When: searching for the opening
		result, err := NewSearcher(state, o).BestMove()

		// Then: every opening draws, so the first candidate is kept
		require.NoError(t, err)
		assert.Equal(t, entity.Move(0), result.Move)
		assert.Equal(t, Draw, result.Score)

		// And: the center opening is just as good
		require.NoError(t, state.ApplyMove(4))
		assert.Equal(t, Draw, NewSearcher(state, o).Value())
	})

	t.Run("Blocks the opponent's line", func(t *testing.T) {
		// Given: X threatens the top row, O has nothing to win with
		state := &entity.GameState{
			Board: entity.Board{x, x, e, e, o, e, e, e, e},
			Turn:  o,
		}

		// When: O searches
		result, err := NewSearcher(state, o).BestMove()

		// Then: O must block at 2
		require.NoError(t, err)
		assert.Equal(t, entity.Move(2), result.Move)
	})

	t.Run("Full board has no move", func(t *testing.T) {
		state := &entity.GameState{
			Board: entity.Board{x, o, x, x, o, o, o, x, x},
			Turn:  o,
		}

		result, err := NewSearcher(state, o).BestMove()

		require.ErrorIs(t, err, apperror.ErrNoMoveAvailable)
		assert.Equal(t, entity.NoMove, result.Move)
	})

	t.Run("Won board has no move", func(t *testing.T) {
		state := &entity.GameState{
			Board: entity.Board{x, x, x, o, o, e, e, e, e},
			Turn:  o,
		}

		_, err := NewSearcher(state, o).BestMove()

		require.ErrorIs(t, err, apperror.ErrNoMoveAvailable)
	})

	t.Run("Searching for the side not to move is rejected", func(t *testing.T) {
		state := entity.NewGameState(x)

		_, err := NewSearcher(state, o).BestMove()

		require.ErrorIs(t, err, apperror.ErrIllegalTurn)
	})

	t.Run("Searching for an empty mark is rejected", func(t *testing.T) {
		state := &entity.GameState{Turn: e}

		_, err := NewSearcher(state, e).BestMove()

		require.ErrorIs(t, err, apperror.ErrIllegalTurn)
	})
}

func TestSearcher_BestMoveRestoresState(t *testing.T) {
	for _, state := range reachableStates() {
		if state.IsTerminal() {
			continue
		}

		// Given: a copy of the state before the search
		before := *state

		// When: searching for the side to move
		_, err := NewSearcher(state, state.Turn).BestMove()
		require.NoError(t, err)

		// Then: board and turn are bit-identical afterwards
		require.Equal(t, before, *state)
	}
}

func TestSearcher_BestMoveIsDeterministic(t *testing.T) {
	state := &entity.GameState{Board: entity.Board{e, e, x, e, e, e, e, e, e}, Turn: o}

	first, err := NewSearcher(state, o).BestMove()
	require.NoError(t, err)

	for range 20 {
		again, err := NewSearcher(state, o).BestMove()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearcher_BestMoveMatchesPlainMinimax(t *testing.T) {
	for _, state := range reachableStates() {
		if state.IsTerminal() {
			continue
		}

		// Given: the exact value of every candidate without pruning
		mover := state.Turn
		want := Loss - 1
		wantMove := entity.NoMove
		firstWin := entity.NoMove
		for _, move := range state.AvailableMoves() {
			require.NoError(t, state.ApplyMove(move))
			value := plainMinimax(state, mover)
			if firstWin == entity.NoMove && hasLine(state.Board, mover) {
				firstWin = move
			}
			require.NoError(t, state.UndoMove(move))

			if value > want {
				want = value
				wantMove = move
			}
		}

		// an immediate win outranks the first-best move
		if firstWin != entity.NoMove {
			wantMove = firstWin
		}

		// When: the pruned search runs
		result, err := NewSearcher(state, mover).BestMove()
		require.NoError(t, err)

		// Then: it finds the same value and the same move
		require.Equal(t, want, result.Score, "state %v", *state)
		require.Equal(t, wantMove, result.Move, "state %v", *state)
	}
}

func TestSearcher_NeverLoses(t *testing.T) {
	t.Run("Playing second", func(t *testing.T) {
		state := entity.NewGameState(x)
		exhaustOpponent(t, state, o)
	})

	t.Run("Playing first", func(t *testing.T) {
		state := entity.NewGameState(o)
		exhaustOpponent(t, state, o)
	})

	t.Run("Playing X second", func(t *testing.T) {
		state := entity.NewGameState(o)
		exhaustOpponent(t, state, x)
	})
}

func TestSearcher_EvaluateOnTerminalBoards(t *testing.T) {
	terminals := 0

	for _, state := range reachableStates() {
		if !state.IsTerminal() {
			continue
		}
		terminals++

		for _, maximizer := range []entity.Cell{x, o} {
			want := Draw
			switch {
			case hasLine(state.Board, maximizer):
				want = Win
			case hasLine(state.Board, maximizer.Opponent()):
				want = Loss
			}

			searcher := NewSearcher(state, maximizer)
			require.Equal(t, want, searcher.evaluate(), "board %v", state.Board)
			require.Equal(t, want, searcher.Value(), "board %v", state.Board)
		}
	}

	// 958 distinct terminal boards with X first, same count again with O first
	assert.Equal(t, 2*958, terminals)
}

func TestSearcher_PrunesTheTree(t *testing.T) {
	// Given: an empty board
	state := entity.NewGameState(x)

	// When: the opening is searched
	result, err := NewSearcher(state, x).BestMove()
	require.NoError(t, err)

	// Then: far fewer than the 549945 non-root nodes of the full tree were visited
	assert.Positive(t, result.Nodes)
	assert.Less(t, result.Nodes, 549945)
}

func TestParallelBestMove(t *testing.T) {
	t.Run("Agrees with the sequential search", func(t *testing.T) {
		for _, state := range reachableStates() {
			if state.IsTerminal() || state.Board.Count(e) < 6 {
				continue
			}

			before := *state

			want, err := NewSearcher(state, state.Turn).BestMove()
			require.NoError(t, err)

			got, err := ParallelBestMove(context.Background(), state, state.Turn)
			require.NoError(t, err)

			require.Equal(t, want.Move, got.Move)
			require.Equal(t, want.Score, got.Score)
			require.Equal(t, before, *state)
		}
	})

	t.Run("Cancelled context aborts the search", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ParallelBestMove(ctx, entity.NewGameState(o), o)

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Wrong side to move", func(t *testing.T) {
		_, err := ParallelBestMove(context.Background(), entity.NewGameState(x), o)

		require.ErrorIs(t, err, apperror.ErrIllegalTurn)
	})
}

// playOut - both sides follow BestMove until the game ends.
func playOut(t *testing.T, state *entity.GameState) entity.Outcome {
	t.Helper()

	for !state.IsTerminal() {
		result, err := NewSearcher(state, state.Turn).BestMove()
		require.NoError(t, err)
		require.NoError(t, state.ApplyMove(result.Move))
	}

	return state.Outcome()
}

// exhaustOpponent - tries every opponent move at every ply against the searcher's replies.
func exhaustOpponent(t *testing.T, state *entity.GameState, ai entity.Cell) {
	t.Helper()

	if state.IsTerminal() {
		require.NotEqual(t, entity.WinnerOutcome(ai.Opponent()), state.Outcome(), "board %v", state.Board)
		return
	}

	if state.Turn == ai {
		result, err := NewSearcher(state, ai).BestMove()
		require.NoError(t, err)
		require.NotEqual(t, Loss, result.Score, "board %v", state.Board)

		require.NoError(t, state.With(result.Move, func() {
			exhaustOpponent(t, state, ai)
		}))
		return
	}

	for _, move := range state.AvailableMoves() {
		require.NoError(t, state.With(move, func() {
			exhaustOpponent(t, state, ai)
		}))
	}
}

// plainMinimax - unpruned reference value for the maximizer.
func plainMinimax(state *entity.GameState, maximizer entity.Cell) Score {
	switch {
	case hasLine(state.Board, maximizer):
		return Win
	case hasLine(state.Board, maximizer.Opponent()):
		return Loss
	case state.IsFull():
		return Draw
	}

	maximizing := state.Turn == maximizer
	best := Win + 1
	if maximizing {
		best = Loss - 1
	}

	for _, move := range state.AvailableMoves() {
		_ = state.ApplyMove(move)
		value := plainMinimax(state, maximizer)
		_ = state.UndoMove(move)

		if maximizing {
			best = max(best, value)
		} else {
			best = min(best, value)
		}
	}

	return best
}

func hasLine(board entity.Board, mark entity.Cell) bool {
	for _, combo := range entity.WinCombos {
		if board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark {
			return true
		}
	}

	return false
}

// reachableStates - every distinct state reachable by legal play, with either side starting.
func reachableStates() []*entity.GameState {
	seen := make(map[entity.GameState]struct{})
	states := make([]*entity.GameState, 0, 11000)

	var walk func(state *entity.GameState)
	walk = func(state *entity.GameState) {
		if _, ok := seen[*state]; ok {
			return
		}
		seen[*state] = struct{}{}
		states = append(states, state.Clone())

		if state.IsTerminal() {
			return
		}

		for _, move := range state.AvailableMoves() {
			_ = state.With(move, func() { walk(state) })
		}
	}

	walk(entity.NewGameState(x))
	walk(entity.NewGameState(o))

	return states
}
