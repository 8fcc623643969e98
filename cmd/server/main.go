// Package main is the entry point for the genboard server. It reads
// configuration from the environment (with an optional .env file), builds a
// logger, and hands everything to the server package.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aminulbx/genboard/internal/server"
)

func main() {
	// .env is a local development convenience; absence is not an error.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded configuration from .env")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	dbPath := envString("DB_PATH", "data/genboard.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required; generate one with: openssl rand -hex 32")
		os.Exit(1)
	}

	cfg := server.Config{
		Port:      envInt("PORT", 8080),
		DBPath:    dbPath,
		JWTSecret: jwtSecret,

		RedisAddr:     os.Getenv("QUEUE_REDIS_ADDR"),
		QueueCapacity: envInt("QUEUE_CAPACITY", 100),

		WorkerCount:     envInt("WORKER_COUNT", 2),
		GenerateTimeout: envDuration("GENERATE_TIMEOUT", 2*time.Minute),

		AIBaseURL: os.Getenv("AI_BASE_URL"),
		AITimeout: envDuration("AI_TIMEOUT", 90*time.Second),
	}
	if cfg.AIBaseURL == "" {
		logger.Warn("AI_BASE_URL not set — using the stub generator")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring invalid integer env var", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("ignoring invalid duration env var", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return d
}
