package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bmcnally/sasadiff/internal/sasa"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Stored trees and reports
	TreeTTL         time.Duration
	CleanupInterval time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Comparison defaults
	DefaultEpsilon float64
	DefaultStop    string
	MaxBatch       int

	// Report webhook (optional)
	WebhookURL    string
	WebhookAPIKey string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("SASADIFF_API_KEY"),

		TreeTTL:         envDuration("TREE_TTL", 4*time.Hour),
		CleanupInterval: envDuration("CLEANUP_INTERVAL", 10*time.Minute),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 33554432), // 32MB

		DefaultEpsilon: envFloat("DEFAULT_EPSILON", 1e-4),
		DefaultStop:    envOr("DEFAULT_STOP_KIND", "atom"),
		MaxBatch:       envInt("MAX_BATCH", 32),

		WebhookURL:    os.Getenv("REPORT_WEBHOOK_URL"),
		WebhookAPIKey: os.Getenv("REPORT_WEBHOOK_API_KEY"),
	}

	if cfg.TreeTTL <= 0 {
		cfg.TreeTTL = 4 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 33554432
	}
	if cfg.DefaultEpsilon <= 0 {
		cfg.DefaultEpsilon = 1e-4
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 32
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("SASADIFF_API_KEY is required")
	}
	if _, err := sasa.ParseKind(c.DefaultStop); err != nil {
		return fmt.Errorf("DEFAULT_STOP_KIND: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
