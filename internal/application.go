package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-ai/internal/config"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-ai/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-ai/transport/rest"
	"github.com/rocketscienceinc/tictactoe-ai/transport/websocket"
)

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

	defaults, err := DefaultSettings(conf.Game)
	if err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	playerRepo, closeRepo, err := newPlayerRepository(ctx, conf.Redis)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeRepo(); err != nil {
			log.Error("could not close player storage", "error", err)
		}
	}()

	gameManager := usecase.NewGameManager(logger, playerRepo, defaults, tictactoe.WithAiDelay(conf.Game.AiDelay))

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, defaults)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// DefaultSettings - setup for players seen for the first time.
func DefaultSettings(conf config.Game) (entity.Settings, error) {
	mark, err := entity.ParseMark(conf.DefaultHumanMark)
	if err != nil {
		return entity.Settings{}, fmt.Errorf("default human mark %q: %w", conf.DefaultHumanMark, err)
	}

	difficulty, err := entity.ParseDifficulty(conf.DefaultDifficulty)
	if err != nil {
		return entity.Settings{}, fmt.Errorf("default difficulty: %w", err)
	}

	return entity.Settings{
		HumanMark:  mark,
		Difficulty: difficulty,
	}, nil
}

func newPlayerRepository(ctx context.Context, conf config.Redis) (repository.PlayerRepository, func() error, error) {
	if !conf.Enabled {
		return repository.NewMemoryPlayerRepository(conf.SettingsTTL), func() error { return nil }, nil
	}

	redisStorage, err := storage.New(ctx, conf.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewPlayerRepository(redisStorage, conf.SettingsTTL), redisStorage.Close, nil
}
