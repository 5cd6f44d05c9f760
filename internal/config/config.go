// Package config loads application configuration from environment
// variables, after merging a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.
type Config struct {
	Env  string // dev, test, prod
	Port string

	DB DBConfig

	JWTSecret string
	AccessTTL time.Duration // lifetime of tokens minted by cmd/devtoken

	Redis RedisConfig

	RabbitMQURL   string
	BookingLogDir string // where the booking consumer appends booking.log

	SelectionTTL     time.Duration // idle lifetime of a stored selection
	ShowtimeCacheTTL time.Duration // lifetime of cached showtime details

	LogLevel string

	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// DBConfig holds MySQL connection settings.
type DBConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// Development reports whether the app runs in a local environment.
func (c Config) Development() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	}
	return false
}

// Load merges .env (if any) into the environment and builds a Config.
// Variables already set in the environment win over .env entries. All
// missing required variables are reported together.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// AuthConfig is the part of Config needed to sign access tokens.
type AuthConfig struct {
	JWTSecret string
	AccessTTL time.Duration
}

// LoadAuth is Load for token tooling: only JWT_SECRET is required, so it
// works without database or broker settings.
func LoadAuth() (AuthConfig, error) {
	if err := loadDotEnv(); err != nil {
		return AuthConfig{}, err
	}
	return AuthFromEnv()
}

// AuthFromEnv builds an AuthConfig from the current environment only.
func AuthFromEnv() (AuthConfig, error) {
	r := &reader{}
	a := AuthConfig{
		JWTSecret: r.must("JWT_SECRET"),
		AccessTTL: accessTTL(),
	}
	if err := r.err(); err != nil {
		return AuthConfig{}, err
	}
	return a, nil
}

func accessTTL() time.Duration {
	return time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	r := &reader{}
	cfg := Config{
		Env:  r.must("APP_ENV"),
		Port: r.must("APP_PORT"),
		DB: DBConfig{
			User: r.must("DB_USER"),
			Pass: os.Getenv("DB_PASS"),
			Host: r.must("DB_HOST"),
			Port: getenv("DB_PORT", "3306"),
			Name: r.must("DB_NAME"),
		},
		JWTSecret:        r.must("JWT_SECRET"),
		AccessTTL:        accessTTL(),
		Redis:            LoadRedisConfig(),
		RabbitMQURL:      firstEnv("RABBITMQ_URL", "AMQP_URL"),
		BookingLogDir:    getenv("BOOKING_LOG_DIR", "logs"),
		SelectionTTL:     envDur("SELECTION_TTL", 15*time.Minute),
		ShowtimeCacheTTL: envDur("SHOWTIME_CACHE_TTL", 10*time.Second),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		Cache:            LoadCacheConfig(),
		RateLimit:        LoadRateLimitConfig(),
	}
	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// reader collects missing required variables instead of failing on the first.
type reader struct {
	missing []string
}

func (r *reader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		r.missing = append(r.missing, key)
		return ""
	}
	return v
}

func (r *reader) err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(r.missing, ", "))
}

// ErrMissingEnv is returned by Load when required variables are unset.
var ErrMissingEnv = errors.New("missing required env vars")

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
