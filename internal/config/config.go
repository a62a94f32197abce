// Package config reads runtime settings from CLIMBDIET_* environment
// variables, after loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const envPrefix = "CLIMBDIET_"

// Config holds the settings shared by every command. Flags override it.
type Config struct {
	DBPath      string
	FoodsPath   string `validate:"required"`
	RecipesPath string
	PolicyPath  string

	LogLevel    string `validate:"oneof=debug info warn error"`
	MetricsFile string

	TimeLimit time.Duration `validate:"gte=0"`
	NodeLimit int           `validate:"gte=0"`
	// NoHistory disables the run history database entirely.
	NoHistory bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DBPath:      defaultDBPath(),
		FoodsPath:   "data/foods.json",
		RecipesPath: "data/recipes.json",
		LogLevel:    "warn",
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".climbdiet", "climbdiet.db")
	}
	return filepath.Join(home, ".climbdiet", "climbdiet.db")
}

// Load reads envFile (or ./.env when empty) if it exists, then the
// environment. Malformed numbers and durations are errors rather than being
// silently replaced by defaults.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := DefaultConfig()
	cfg.DBPath = getEnv("DB", cfg.DBPath)
	cfg.FoodsPath = getEnv("FOODS", cfg.FoodsPath)
	cfg.RecipesPath = getEnv("RECIPES", cfg.RecipesPath)
	cfg.PolicyPath = getEnv("POLICY", cfg.PolicyPath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsFile = getEnv("METRICS_FILE", cfg.MetricsFile)

	var errs []error
	if v := getEnv("TIME_LIMIT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIME_LIMIT: %w", envPrefix, err))
		}
		cfg.TimeLimit = d
	}
	if v := getEnv("NODE_LIMIT", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sNODE_LIMIT: %w", envPrefix, err))
		}
		cfg.NodeLimit = n
	}
	if v := getEnv("NO_HISTORY", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sNO_HISTORY: %w", envPrefix, err))
		}
		cfg.NoHistory = b
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints, naming the offending field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("config %s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}
