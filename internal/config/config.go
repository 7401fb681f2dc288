// Package config loads the service settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
)

// Config holds every setting of the atelier service
type Config struct {
	ServiceName    string
	Environment    string
	LogLevel       string
	HTTPPort       string
	JaegerEndpoint string
	RequestTimeout time.Duration

	Database database.Config

	KafkaBrokers []string
	KafkaGroupID string

	JWTSecret    string
	AuthRequired bool
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "atelier-service"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		Database: database.Config{
			Driver:     getEnv("DB_DRIVER", database.DriverPostgres),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "atelierdb"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "atelier.db"),
			LogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		},
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "atelier-stock-alerts"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		AuthRequired: getBool("AUTH_REQUIRED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
