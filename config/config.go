package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"go-restobook/database"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port              string
	GinMode           string
	LogLevel          string
	LogFormat         string
	RequestTimeout    time.Duration
	StoreDriver       string
	Mongo             database.Config
	CORSOrigins       []string
	AMQPURL           string
	AMQPExchange      string
	MetricsEnabled    bool
	ReconcileInterval time.Duration
}

// Load reads .env when one exists and then the environment. A missing
// .env is normal outside local development.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "error", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8000"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		Mongo: database.Config{
			URI:     getEnv("MONGODB_URL", "mongodb://localhost:27017"),
			Name:    getEnv("MONGODB_DATABASE", "restobook"),
			Timeout: time.Duration(getEnvInt("MONGODB_TIMEOUT_SEC", 10)) * time.Second,
		},
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:9000"}),
		AMQPURL:           getEnv("AMQP_URL", ""),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "restobook.events"),
		MetricsEnabled:    getEnv("METRICS_ENABLED", "true") == "true",
		ReconcileInterval: time.Duration(getEnvInt("RECONCILE_INTERVAL_MIN", 0)) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("ignoring non-numeric environment value", "key", key, "value", value)
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
