package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Env      string
	Host     string
	Port     string
	LogLevel string

	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig
	HTTP     HTTPConfig

	SeedSampleData bool
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

// AdminConfig is the account seeded on startup when it does not exist yet.
type AdminConfig struct {
	Email    string
	Password string
}

type HTTPConfig struct {
	CORSAllowOrigins string
	LoginRateLimit   float64
	LoginRateBurst   int
	ShutdownTimeout  time.Duration
}

const defaultJWTSecret = "jwt-secret-key-change-in-production"

// Load reads configuration from the environment. A .env file in the working
// directory is honoured when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:      getEnv("APP_ENV", "development"),
		Host:     getEnv("HOST", "0.0.0.0"),
		Port:     getEnv("PORT", "5000"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET_KEY", defaultJWTSecret),
			AccessTTL: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRES", 3600)) * time.Second,
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@orders.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
			LoginRateLimit:   getEnvAsFloat("LOGIN_RATE_LIMIT", 5),
			LoginRateBurst:   getEnvAsInt("LOGIN_RATE_BURST", 10),
			ShutdownTimeout:  getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		SeedSampleData: getEnvAsBool("SEED_SAMPLE_DATA", false),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects settings the server cannot safely run with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET_KEY must not be empty")
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT_SECRET_KEY must be set in production")
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_EXPIRES must be positive, got %s", c.JWT.AccessTTL)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
