package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/telemetry"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	shutdownTelemetry, err := telemetry.Init(ctx, conf.Telemetry)
	if err != nil {
		return fmt.Errorf("could not init telemetry: %w", err)
	}

	defer func() {
		if err = shutdownTelemetry(context.Background()); err != nil {
			log.Error("could not shutdown telemetry", "error", err)
		}
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameController, err := newGameController(conf.Engine)
	if err != nil {
		return fmt.Errorf("could not create game controller: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage, conf.Redis.SessionTTL)

	gameUseCase, err := usecase.NewGameManager(logger, gameRepo, gameController)
	if err != nil {
		return fmt.Errorf("could not create game manager: %w", err)
	}

	router := rest.NewRouter(logger, rest.NewGameHandler(logger, gameUseCase))

	log.Info("Starting HTTP server", "port", conf.HTTPPort,
		"start_policy", conf.Engine.StartPolicy, "ai_mark", conf.Engine.AIMark)

	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newGameController(conf config.Engine) (*tictactoe.GameController, error) {
	aiMark, err := entity.ParseCell(conf.AIMark)
	if err != nil {
		return nil, fmt.Errorf("failed to parse automated player mark: %w", err)
	}

	seed := uint64(time.Now().UnixNano())
	rnd := rand.New(rand.NewPCG(seed, seed>>1))

	return tictactoe.NewGameController(tictactoe.Options{
		StartPolicy: tictactoe.StartPolicy(conf.StartPolicy),
		AIMark:      aiMark,
		Parallel:    conf.ParallelSearch,
	}, rnd)
}
