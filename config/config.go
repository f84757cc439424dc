package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	Host          string
	DataDir       string
	Retention     time.Duration
	SweepInterval time.Duration
	MaxActiveJobs int
	CookiesData   string
}

func Load() (*Config, error) {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxFileAge, err := strconv.Atoi(getEnv("MAX_FILE_AGE", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILE_AGE: %w", err)
	}

	sweepInterval, err := strconv.Atoi(getEnv("SWEEP_INTERVAL", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}

	maxActiveJobs, err := strconv.Atoi(getEnv("MAX_ACTIVE_JOBS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_ACTIVE_JOBS: %w", err)
	}

	return &Config{
		Port:          port,
		Host:          getEnv("HOST", "0.0.0.0"),
		DataDir:       getEnv("DATA_DIR", "data"),
		Retention:     time.Duration(maxFileAge) * time.Second,
		SweepInterval: time.Duration(sweepInterval) * time.Second,
		MaxActiveJobs: maxActiveJobs,
		CookiesData:   os.Getenv("COOKIES_DATA"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
