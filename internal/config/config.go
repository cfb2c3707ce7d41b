// Package config loads and validates application configuration from
// environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendWorkbook = "xlsx"
	BackendMongo    = "mongo"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Backend selects where trips and vehicles are stored: postgres, xlsx
	// or mongo. Defaults to postgres.
	Backend string

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string

	// WorkbookPath is the .xlsx file holding both sheets. Required for xlsx.
	WorkbookPath string

	// MongoURI and MongoDatabase locate the collections. MongoURI is
	// required for mongo; the database defaults to "fleet_ledger".
	MongoURI      string
	MongoDatabase string

	// AdminUsername and AdminPasswordHash (bcrypt) configure the single
	// admin account. Leaving either empty disables admin login.
	AdminUsername     string
	AdminPasswordHash string

	// JWTSecret signs admin tokens; required when an admin is configured.
	// JWTTTL is the token lifetime. Defaults to 12h.
	JWTSecret string
	JWTTTL    time.Duration

	// RequireContinuousOdometer makes a trip's start reading match the
	// vehicle's latest end reading. Defaults to false.
	RequireContinuousOdometer bool

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// CatalogFile is an optional YAML catalog replacing the built-in one.
	CatalogFile string
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then
// configuration from environment variables. Variables already set in the
// environment win over the file.
//
// Returns an error listing any required variables that are not set, or any
// that do not parse.
func Load() (Config, error) {
	if err := godotenv.Load(getEnv("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: env file: %w", err)
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Backend:           strings.ToLower(getEnv("STORAGE_BACKEND", BackendPostgres)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		WorkbookPath:      os.Getenv("WORKBOOK_PATH"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "fleet_ledger"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		CatalogFile:       os.Getenv("CATALOG_FILE"),
	}

	var missing, invalid []string

	switch cfg.Backend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendWorkbook:
		if cfg.WorkbookPath == "" {
			missing = append(missing, "WORKBOOK_PATH")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
	default:
		invalid = append(invalid, "STORAGE_BACKEND")
	}

	if cfg.AdminUsername != "" && cfg.AdminPasswordHash != "" && cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "12h")); err != nil || cfg.JWTTTL <= 0 {
		invalid = append(invalid, "JWT_TTL")
	}
	if cfg.RequireContinuousOdometer, err = strconv.ParseBool(getEnv("REQUIRE_CONTINUOUS_ODOMETER", "false")); err != nil {
		invalid = append(invalid, "REQUIRE_CONTINUOUS_ODOMETER")
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
