package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver    string
	DBPath      string
	PostgresDSN string
	OutputDir   string

	ServeAddr     string
	CacheTTLSec   int
	WeekdayLocale string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBPath:      getEnv("DB_PATH", filepath.Join(cwd, "data", "concordance.db")),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		OutputDir:   getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		ServeAddr:     getEnv("SERVE_ADDR", ":8080"),
		CacheTTLSec:   getEnvInt("CACHE_TTL_SEC", 600),
		WeekdayLocale: getEnv("WEEKDAY_LOCALE", "fr"),
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" {
		if err := cfg.Require("POSTGRES_DSN", cfg.PostgresDSN); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
