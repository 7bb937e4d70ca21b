package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"war-game/internal/game"
	"war-game/internal/shared"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds everything the server and the console runner read from the
// environment.
type Config struct {
	Game game.Setup

	DBDriver    string // "sqlite3" or "pgx"
	DBDSN       string
	HTTPAddr    string
	NATSURL     string // empty disables publishing
	NATSSubject string
	LogLevel    zapcore.Level
}

// Load reads an optional .env file from the working directory and then the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (*Config, error) {
	c := &Config{
		Game:        game.DefaultSetup(),
		DBDriver:    getenv("DB_DRIVER", "sqlite3"),
		DBDSN:       getenv("DB_DSN", "./war.db"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		NATSURL:     os.Getenv("NATS_URL"),
		NATSSubject: getenv("NATS_SUBJECT", "war.results"),
	}

	var errs []error
	var err error
	if c.Game.Decks, err = intEnv("WAR_DECKS", c.Game.Decks); err != nil {
		errs = append(errs, err)
	}
	if c.Game.Jokers, err = shared.ParseJokerPolicy(getenv("WAR_JOKERS", "discard")); err != nil {
		errs = append(errs, fmt.Errorf("WAR_JOKERS: %w", err))
	}
	if c.Game.JokerRank, err = shared.ParseJokerRank(getenv("WAR_JOKER_RANK", "high")); err != nil {
		errs = append(errs, fmt.Errorf("WAR_JOKER_RANK: %w", err))
	}
	if v := os.Getenv("WAR_SEED"); v != "" {
		if c.Game.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			errs = append(errs, fmt.Errorf("WAR_SEED: %w", err))
		}
	}
	if c.Game.ShufflePasses, err = intEnv("WAR_SHUFFLE_PASSES", c.Game.ShufflePasses); err != nil {
		errs = append(errs, err)
	}
	if c.Game.Shuffle, err = game.ParseShuffleMode(getenv("WAR_SHUFFLE_MODE", "relink")); err != nil {
		errs = append(errs, fmt.Errorf("WAR_SHUFFLE_MODE: %w", err))
	}
	if c.Game.MaxCycles, err = intEnv("WAR_MAX_CYCLES", c.Game.MaxCycles); err != nil {
		errs = append(errs, err)
	}
	if c.LogLevel, err = zapcore.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.DBDriver != "sqlite3" && c.DBDriver != "pgx" {
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver))
	}
	if len(errs) == 0 {
		if err := c.Game.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// NewLogger builds the production JSON logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zc.Build()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
