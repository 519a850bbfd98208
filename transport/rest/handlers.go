package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest/response"
)

var (
	errMoveRequired = errors.New("either cell or row and col must be set")
	errMixedMove    = errors.New("cell cannot be combined with row or col")
)

type gameUseCase interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeTurn(ctx context.Context, id string, move entity.Move) (*entity.Game, error)
}

// MoveRequest - a human move, addressed by cell index or by row and column.
type MoveRequest struct {
	Cell *int `json:"cell" binding:"omitempty,min=0,max=8"`
	Row  *int `json:"row" binding:"omitempty,min=0,max=2"`
	Col  *int `json:"col" binding:"omitempty,min=0,max=2"`
}

func (that *MoveRequest) toMove() (entity.Move, error) {
	if that.Cell != nil {
		if that.Row != nil || that.Col != nil {
			return entity.NoMove, errMixedMove
		}

		return entity.Move(*that.Cell), nil
	}

	if that.Row == nil || that.Col == nil {
		return entity.NoMove, errMoveRequired
	}

	return entity.MoveAt(*that.Row, *that.Col)
}

type GameHandler struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewGameHandler(logger *slog.Logger, games gameUseCase) *GameHandler {
	return &GameHandler{
		logger: logger.With("component", "game_handler"),
		games:  games,
	}
}

func (that *GameHandler) Create(c *gin.Context) {
	game, err := that.games.CreateGame(c.Request.Context())
	if err != nil {
		that.fail(c, "Create", err)
		return
	}

	response.Success(c, http.StatusCreated, game)
}

func (that *GameHandler) Get(c *gin.Context) {
	game, err := that.games.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "Get", err)
		return
	}

	response.Success(c, http.StatusOK, game)
}

func (that *GameHandler) Move(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	move, err := req.toMove()
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	game, err := that.games.MakeTurn(c.Request.Context(), c.Param("id"), move)
	if err != nil {
		that.fail(c, "Move", err)
		return
	}

	response.Success(c, http.StatusOK, game)
}

func (that *GameHandler) fail(c *gin.Context, method string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "game_id", c.Param("id"), "error", err)
		response.Error(c, code, http.StatusText(code))

		return
	}

	response.Error(c, code, err.Error())
}

// statusFor - occupied cells are checked before generic invalid moves since they wrap both.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrIllegalTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNoMoveAvailable):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrInvalidMove):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
