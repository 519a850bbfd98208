package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090" validate:"required,numeric"`
	Redis     Redis     `yaml:"redis"`
	Engine    Engine    `yaml:"engine"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost" validate:"required"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379" validate:"required,numeric"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"30m" validate:"gte=0"`
}

type Engine struct {
	StartPolicy    string `yaml:"start-policy" env:"ENGINE_START_POLICY" env-default:"x-first" validate:"oneof=x-first o-first random"`
	AIMark         string `yaml:"ai-mark" env:"ENGINE_AI_MARK" env-default:"O" validate:"oneof=X O"`
	ParallelSearch bool   `yaml:"parallel-search" env:"ENGINE_PARALLEL_SEARCH" env-default:"false"`
}

type Telemetry struct {
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tictactoe-engine" validate:"required"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the file, applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
