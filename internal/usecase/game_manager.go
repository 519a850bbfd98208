package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/search"
)

const instrumentationName = "github.com/rocketscienceinc/tictactoe-engine/internal/usecase"

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameController interface {
	NewGame() *entity.GameState
	AIMark() entity.Cell
	ApplyHumanMove(state *entity.GameState, move entity.Move) error
	PlayAIMove(ctx context.Context, state *entity.GameState) (search.Result, error)
}

type GameManager struct {
	logger     *slog.Logger
	gameRepo   gameRepo
	controller gameController

	tracer         trace.Tracer
	searchNodes    metric.Int64Counter
	searchDuration metric.Float64Histogram
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, controller gameController) (*GameManager, error) {
	meter := otel.Meter(instrumentationName)

	searchNodes, err := meter.Int64Counter("tictactoe.search.nodes",
		metric.WithDescription("Game states visited by the automated player's search"))
	if err != nil {
		return nil, fmt.Errorf("failed to create search nodes counter: %w", err)
	}

	searchDuration, err := meter.Float64Histogram("tictactoe.search.duration",
		metric.WithDescription("Time spent choosing the automated player's move"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create search duration histogram: %w", err)
	}

	return &GameManager{
		logger:     logger.With("component", "game_manager"),
		gameRepo:   gameRepo,
		controller: controller,

		tracer:         otel.Tracer(instrumentationName),
		searchNodes:    searchNodes,
		searchDuration: searchDuration,
	}, nil
}

// CreateGame - starts a new game. When the automated player opens, its first move is already played.
func (that *GameManager) CreateGame(ctx context.Context) (*entity.Game, error) {
	ctx, span := that.tracer.Start(ctx, "GameManager.CreateGame")
	defer span.End()

	game := entity.NewGame(uuid.NewString(), that.controller.NewGame(), that.controller.AIMark())
	span.SetAttributes(attribute.String("game.id", game.ID))

	if game.IsAITurn() {
		if err := that.playAIMove(ctx, game); err != nil {
			return nil, recordError(span, fmt.Errorf("failed to play opening move: %w", err))
		}
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, recordError(span, fmt.Errorf("failed to create game: %w", err))
	}

	that.logger.Info("game created", "game_id", game.ID, "human_mark", game.HumanMark, "ai_mark", game.AIMark)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	ctx, span := that.tracer.Start(ctx, "GameManager.GetGame", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to get game: %w", err))
	}

	return game, nil
}

// MakeTurn - applies the human move and, if the game goes on, the automated reply.
// A finished game is removed from the store and returned one last time.
func (that *GameManager) MakeTurn(ctx context.Context, id string, move entity.Move) (*entity.Game, error) {
	ctx, span := that.tracer.Start(ctx, "GameManager.MakeTurn", trace.WithAttributes(
		attribute.String("game.id", id),
		attribute.Int("game.move", int(move)),
	))
	defer span.End()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to get game: %w", err))
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return nil, recordError(span, err)
	}

	if err = that.controller.ApplyHumanMove(&game.State, move); err != nil {
		return nil, recordError(span, fmt.Errorf("failed to make turn: %w", err))
	}

	game.LastAIMove = nil
	game.UpdateGameState()

	if game.IsAITurn() {
		if err = that.playAIMove(ctx, game); err != nil {
			return nil, recordError(span, fmt.Errorf("failed to play automated move: %w", err))
		}
	}

	if game.IsFinished() {
		span.SetAttributes(attribute.String("game.outcome", game.Outcome.String()))
		that.deleteGame(ctx, game)

		return game, nil
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, recordError(span, fmt.Errorf("failed to update game: %w", err))
	}

	return game, nil
}

func (that *GameManager) playAIMove(ctx context.Context, game *entity.Game) error {
	ctx, span := that.tracer.Start(ctx, "GameManager.playAIMove")
	defer span.End()

	started := time.Now()

	result, err := that.controller.PlayAIMove(ctx, &game.State)
	if err != nil {
		return recordError(span, err)
	}

	elapsed := time.Since(started)
	that.searchNodes.Add(ctx, int64(result.Nodes))
	that.searchDuration.Record(ctx, elapsed.Seconds())

	span.SetAttributes(
		attribute.Int("search.move", int(result.Move)),
		attribute.Int("search.score", int(result.Score)),
		attribute.Int("search.nodes", result.Nodes),
	)

	that.logger.Debug("automated move played",
		"game_id", game.ID, "move", int(result.Move), "score", int(result.Score),
		"nodes", result.Nodes, "elapsed", elapsed)

	move := result.Move
	game.LastAIMove = &move
	game.UpdateGameState()

	return nil
}

func (that *GameManager) deleteGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "deleteGame", "game_id", game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
		log.Error("failed to delete game", "error", err)
		return
	}

	log.Info("game finished", "outcome", game.Outcome.String())
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}
