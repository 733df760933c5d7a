package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; defaults live in the struct tags.
type Config struct {
	Env            string `env:"APP_ENV" envDefault:"dev"`       // application environment (dev/test/prod)
	Port           string `env:"APP_PORT" envDefault:"8080"`     // HTTP port to listen on
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`    // debug, info, warn or error
	JWTSecret      string `env:"JWT_SECRET,required,notEmpty"`   // secret used to sign JWTs
	AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"30"`
	RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"7"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`
	RabbitMQURL    string `env:"RABBITMQ_URL"` // empty disables notifications

	EmailTokenTTLMin int `env:"EMAIL_TOKEN_TTL_MIN" envDefault:"60"` // lifetime of an email change link

	DB DatabaseConfig
}

// DatabaseConfig selects and addresses the relational store.
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"mysql"` // mysql or sqlite
	User       string `env:"DB_USER" envDefault:"root"`
	Pass       string `env:"DB_PASS"`
	Host       string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port       string `env:"DB_PORT" envDefault:"3306"`
	Name       string `env:"DB_NAME" envDefault:"club_events"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"club_events.db"`
}

// Load reads an optional .env file and parses the environment into a
// Config. Variables already present in the environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch strings.ToLower(cfg.DB.Driver) {
	case "mysql", "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", cfg.DB.Driver)
	}
	if cfg.AccessTTLMin <= 0 || cfg.RefreshTTLDays <= 0 || cfg.EmailTokenTTLMin <= 0 {
		return Config{}, fmt.Errorf("token TTLs must be positive")
	}
	return cfg, nil
}

// MustLoad is Load for process entry points: it exits on error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	return cfg
}

// IsProduction reports whether the service runs with APP_ENV=prod.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger: JSON in production, text elsewhere.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
