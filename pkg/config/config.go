// Package config loads application configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the full application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Providers     ProvidersConfig
	LLM           LLMConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port               string
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type AuthConfig struct {
	JWTSecret string
}

// ProvidersConfig carries the external data-service credentials. A missing
// key disables the corresponding vendor client; the planner then runs on
// fallbacks.
type ProvidersConfig struct {
	GoogleMapsAPIKey  string
	OpenWeatherAPIKey string
	Language          string
	Region            string
}

type LLMConfig struct {
	GeminiAPIKey string
	Model        string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*Config, error) {
	// Missing .env is fine in containers; env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),
			AllowedOrigins:     []string{getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000")},
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "planner"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Providers: ProvidersConfig{
			GoogleMapsAPIKey:  os.Getenv("GOOGLE_MAPS_API_KEY"),
			OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
			Language:          getEnv("PROVIDERS_LANGUAGE", "es"),
			Region:            os.Getenv("PROVIDERS_REGION"),
		},
		LLM: LLMConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			Model:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
