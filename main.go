package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/tictactoe-ai/internal"
	"github.com/rocketscienceinc/tictactoe-ai/internal/config"
)

// configPathEnv overrides the config file location.
const configPathEnv = "CONFIG_PATH"

func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := config.MustLoad(configPath())

	logger := newLogger(conf.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting tic-tac-toe server",
		"http_port", conf.HTTPPort,
		"socket_port", conf.SocketPort,
		"redis", conf.Redis.Enabled,
	)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// configPath - CONFIG_PATH if set, otherwise config.yml in the working directory.
func configPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return filepath.Join(baseDir, "config.yml")
}

// newLogger - JSON logger; unknown levels fall back to info.
func newLogger(levelName string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
