package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Game       Game   `yaml:"game"`
	Redis      Redis  `yaml:"redis"`
}

type Game struct {
	AiDelay           time.Duration `yaml:"ai-delay" env:"GAME_AI_DELAY" env-default:"500ms"`
	DefaultDifficulty string        `yaml:"default-difficulty" env:"GAME_DEFAULT_DIFFICULTY" env-default:"impossible"`
	DefaultHumanMark  string        `yaml:"default-human-mark" env:"GAME_DEFAULT_HUMAN_MARK" env-default:"X"`
}

type Redis struct {
	Enabled     bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host        string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port        string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SettingsTTL time.Duration `yaml:"settings-ttl" env:"REDIS_SETTINGS_TTL" env-default:"720h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
