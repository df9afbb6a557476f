package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"superstore/internal/engine"
)

// EnvPrefix namespaces every environment override, e.g. SUPERSTORE_DATA_PATH.
const EnvPrefix = "SUPERSTORE"

// Config is the runtime configuration of the dashboard server.
type Config struct {
	DataPath    string   `yaml:"data_path" envconfig:"DATA_PATH" validate:"required"`
	Sheet       string   `yaml:"sheet" envconfig:"SHEET"`
	DateLayouts []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS" validate:"omitempty,dive,required"`
	TopN        int      `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=1000"`

	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		DataPath:    "train.csv",
		DateLayouts: slices.Clone(engine.DefaultDateLayouts),
		TopN:        10,
		Server: ServerConfig{
			Port:            8050,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if it
// exists), then SUPERSTORE_* environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
