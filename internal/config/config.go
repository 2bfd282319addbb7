// Package config loads the core's process-level configuration record, per
// spec §9's "Dynamic / reflective configuration" design note: every
// threshold named in spec §6 is a field of one explicit struct, built once
// at startup and never introspected at runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable threshold the core's operations consult.
// Defaults match spec §6.
type Config struct {
	MaxQuestions       int
	MinRange           int
	RegressionInterval int
	RegressionFactor   float64

	MasteryThresholdDays int
	MasterySeedDays      int

	DailyGoal int

	EFMin float64
	EFMax float64

	DefaultReviewLimit int
	DistractorCount    int
	DistractorBand     int

	// CatalogCacheSize bounds the in-process Word Catalog cache (§5:
	// "cached in-process with bounded memory").
	CatalogCacheSize int
	CatalogCacheTTL  time.Duration

	// SweepInterval is how often the background sweep (internal/background)
	// prunes abandoned placement sessions.
	SweepInterval time.Duration

	// DatabaseDriver selects "sqlite3" or "postgres"; DatabaseDSN is the
	// driver-specific connection string.
	DatabaseDriver string
	DatabaseDSN    string
}

// Default returns the spec §6 default configuration.
func Default() *Config {
	return &Config{
		MaxQuestions:         20,
		MinRange:             5,
		RegressionInterval:   5,
		RegressionFactor:     0.80,
		MasteryThresholdDays: 21,
		MasterySeedDays:      21,
		DailyGoal:            15,
		EFMin:                1.3,
		EFMax:                2.5,
		DefaultReviewLimit:   20,
		DistractorCount:      3,
		DistractorBand:       10,
		CatalogCacheSize:     1000,
		CatalogCacheTTL:      30 * time.Minute,
		SweepInterval:        1 * time.Hour,
		DatabaseDriver:       "sqlite3",
		DatabaseDSN:          "data/vocabadapt.db",
	}
}

// Load reads overrides from the environment (optionally via a local .env
// file, the teacher's own mechanism) on top of Default(). Unset variables
// keep their default; malformed ones are reported.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if err := overrideInt(&cfg.MaxQuestions, "VOCAB_MAX_QUESTIONS"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.MinRange, "VOCAB_MIN_RANGE"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.RegressionInterval, "VOCAB_REGRESSION_INTERVAL"); err != nil {
		return nil, err
	}
	if err := overrideFloat(&cfg.RegressionFactor, "VOCAB_REGRESSION_FACTOR"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.MasteryThresholdDays, "VOCAB_MASTERY_THRESHOLD_DAYS"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.MasterySeedDays, "VOCAB_MASTERY_SEED_DAYS"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.DailyGoal, "VOCAB_DAILY_GOAL"); err != nil {
		return nil, err
	}
	if err := overrideFloat(&cfg.EFMin, "VOCAB_EF_MIN"); err != nil {
		return nil, err
	}
	if err := overrideFloat(&cfg.EFMax, "VOCAB_EF_MAX"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.DefaultReviewLimit, "VOCAB_DEFAULT_REVIEW_LIMIT"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.DistractorCount, "VOCAB_DISTRACTOR_COUNT"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.DistractorBand, "VOCAB_DISTRACTOR_BAND"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.CatalogCacheSize, "VOCAB_CATALOG_CACHE_SIZE"); err != nil {
		return nil, err
	}
	if err := overrideDuration(&cfg.CatalogCacheTTL, "VOCAB_CATALOG_CACHE_TTL"); err != nil {
		return nil, err
	}
	if err := overrideDuration(&cfg.SweepInterval, "VOCAB_SWEEP_INTERVAL"); err != nil {
		return nil, err
	}

	if driver := os.Getenv("VOCAB_DB_DRIVER"); driver != "" {
		cfg.DatabaseDriver = driver
	}
	if dsn := os.Getenv("VOCAB_DB_DSN"); dsn != "" {
		cfg.DatabaseDSN = dsn
	}

	return cfg, nil
}

func overrideInt(dst *int, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = parsed
	return nil
}

func overrideFloat(dst *float64, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = parsed
	return nil
}

func overrideDuration(dst *time.Duration, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = parsed
	return nil
}
