package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

var defaultCORSOrigins = []string{
	"http://localhost",
	"http://localhost:8080",
	"http://localhost:8000",
}

type Config struct {
	Logs   LogConfig
	DB     PostgresConfig
	Engine EngineConfig
	HTTP   HTTPConfig
}

type LogConfig struct {
	Style string // "console" for human readable output, anything else is JSON
	Level string
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string // empty disables persistence
	Port     string
	Name     string
}

type EngineConfig struct {
	Path          string
	PoolSize      int
	Threads       int // per engine, 0 splits the CPUs across the pool
	HashMB        int
	SearchTimeout time.Duration // 0 means no limit
}

type HTTPConfig struct {
	Addr        string
	CORSOrigins []string
}

func LoadConfig() (*Config, error) {
	poolSize, err := envInt("ENGINE_POOL_SIZE", 1)
	if err != nil {
		return nil, err
	}
	threads, err := envInt("ENGINE_THREADS", 0)
	if err != nil {
		return nil, err
	}
	hashMB, err := envInt("ENGINE_HASH_MB", 0)
	if err != nil {
		return nil, err
	}

	var searchTimeout time.Duration
	if v := os.Getenv("SEARCH_TIMEOUT"); v != "" {
		searchTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse SEARCH_TIMEOUT: %w", err)
		}
	}

	origins := defaultCORSOrigins
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = splitList(v)
	}

	cfg := &Config{
		Logs: LogConfig{
			Style: os.Getenv("LOG_STYLE"),
			Level: os.Getenv("LOG_LEVEL"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     envString("POSTGRES_PORT", "5432"),
			Name:     os.Getenv("POSTGRES_DB"),
		},
		Engine: EngineConfig{
			Path:          envString("ENGINE_PATH", "stockfish"),
			PoolSize:      poolSize,
			Threads:       threads,
			HashMB:        hashMB,
			SearchTimeout: searchTimeout,
		},
		HTTP: HTTPConfig{
			Addr:        envString("HTTP_ADDR", "0.0.0.0:8080"),
			CORSOrigins: origins,
		},
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("error converting string to int: %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
