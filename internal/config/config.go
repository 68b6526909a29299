package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	RPC     RPCConfig
	Monitor MonitorConfig
	Logger  LoggerConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
}

type StoreConfig struct {
	Path string
}

type RPCConfig struct {
	CallTimeout         time.Duration
	MaxConcurrentChecks int
}

type MonitorConfig struct {
	SweepSchedule string
	SweepTimeout  time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env file doesn't exist in production
	}

	serverPort, _ := strconv.Atoi(getEnv("SERVER_PORT", "4633"))
	maxChecks, _ := strconv.Atoi(getEnv("MAX_CONCURRENT_CHECKS", "10"))

	requestTimeout, _ := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "60s"))
	callTimeout, _ := time.ParseDuration(getEnv("RPC_CALL_TIMEOUT", "10s"))
	sweepTimeout, _ := time.ParseDuration(getEnv("STATUS_SWEEP_TIMEOUT", "5m"))

	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           serverPort,
			RequestTimeout: requestTimeout,
		},
		Store: StoreConfig{
			Path: getEnv("NODES_FILE", "data/nodes.json"),
		},
		RPC: RPCConfig{
			CallTimeout:         callTimeout,
			MaxConcurrentChecks: maxChecks,
		},
		Monitor: MonitorConfig{
			SweepSchedule: getEnv("STATUS_SWEEP_SCHEDULE", "*/5 * * * *"),
			SweepTimeout:  sweepTimeout,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
