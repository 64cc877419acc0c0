// Package config loads and validates application configuration from
// environment variables. Errors are collected across all variables and
// reported together, so a misconfigured deployment fails once with the full
// list instead of one variable at a time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by STORAGE_BACKEND and SESSION_BACKEND. The same
// service and handler code runs against either; the backend is a deployment
// choice, not a code path fork.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// DatabaseConfig holds connection settings for the relational store. Only
// consulted when the postgres storage backend is selected.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	PoolSize int
}

// SessionConfig holds settings for the session store collaborator.
type SessionConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	TTL           time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string
	Environment string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	StorageBackend string
	Database       *DatabaseConfig
	Session        *SessionConfig
	Server         *ServerConfig
}

// getRequiredEnv reads a variable that must be present, collecting an error
// when it is missing.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads a variable with a default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt reads an integer variable with a default, collecting an
// error when the value does not parse.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration reads a time.Duration variable ("24h", "90m") with a
// default, collecting an error when the value does not parse.
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the connection pool within sane bounds.
func clampPoolSize(size int) int {
	if size < 2 {
		return 2
	}
	if size > 100 {
		return 100
	}
	return size
}

// LoadConfig builds an AppConfig from the environment. Database settings are
// required only when the postgres backend is selected, and the Redis address
// only when the redis session backend is selected; an all-memory deployment
// needs no external services at all.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	storageBackend := getOptionalEnv("STORAGE_BACKEND", StorageMemory)
	if storageBackend != StoragePostgres && storageBackend != StorageMemory {
		errs = append(errs, fmt.Sprintf("invalid STORAGE_BACKEND %q: expected %q or %q", storageBackend, StoragePostgres, StorageMemory))
	}

	var dbConfig *DatabaseConfig
	if storageBackend == StoragePostgres {
		dbConfig = &DatabaseConfig{
			Host:     getOptionalEnv("DB_HOST", "localhost"),
			Port:     getOptionalEnvInt("DB_PORT", 5432, &errs),
			User:     getRequiredEnv("DB_USER", &errs),
			Password: getRequiredEnv("DB_PASSWORD", &errs),
			DBName:   getRequiredEnv("DB_NAME", &errs),
			PoolSize: clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs)),
		}
	}

	sessionBackend := getOptionalEnv("SESSION_BACKEND", SessionMemory)
	if sessionBackend != SessionRedis && sessionBackend != SessionMemory {
		errs = append(errs, fmt.Sprintf("invalid SESSION_BACKEND %q: expected %q or %q", sessionBackend, SessionRedis, SessionMemory))
	}

	sessionConfig := &SessionConfig{
		Backend:       sessionBackend,
		RedisPassword: getOptionalEnv("REDIS_PASSWORD", ""),
		// Sessions live for a fixed 24 hours; logout removes them earlier.
		TTL: getOptionalEnvDuration("SESSION_TTL", 24*time.Hour, &errs),
	}
	if sessionBackend == SessionRedis {
		sessionConfig.RedisAddr = getRequiredEnv("REDIS_ADDR", &errs)
	}

	serverConfig := &ServerConfig{
		Port:        getOptionalEnv("PORT", "3000"),
		Environment: getOptionalEnv("APP_ENV", "development"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		StorageBackend: storageBackend,
		Database:       dbConfig,
		Session:        sessionConfig,
		Server:         serverConfig,
	}, nil
}
