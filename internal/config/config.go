// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        // e.g. "8080"
	Env            string        // "development" | "production"
	ReadTimeout    time.Duration // default 10s
	WriteTimeout   time.Duration // default 10s
	AllowedOrigins string        // comma-separated origins; "" = allow all (dev)
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// JWTConfig holds JWT verification settings for the API surface.
type JWTConfig struct {
	Secret string // must be set in production
}

// AuctionConfig holds auction policy defaults.
type AuctionConfig struct {
	DefaultTimeoutMinutes int  // default 15
	MinOffersRequired     int  // default 2
	AutoComplete          bool // default true
}

// ProviderConfig holds partner endpoint call settings.
type ProviderConfig struct {
	FetchTimeout time.Duration // per-call timeout, default 10s
}

// RateLimitConfig bounds per-client request rates on the API surface.
// Auction starts fan out to every invited partner, so they get a much
// tighter allowance than plain reads.
type RateLimitConfig struct {
	StartRPS int // POST /api/auctions, default 5
	ReadRPS  int // read endpoints, default 30
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	Auction   AuctionConfig
	Provider  ProviderConfig
	RateLimit RateLimitConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns the first validation error encountered.
func (c *Config) Validate() error {
	var errs []error

	if c.IsProd() && c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}

	if c.Auction.DefaultTimeoutMinutes <= 0 {
		errs = append(errs, fmt.Errorf(
			"AUCTION_TIMEOUT_MINUTES must be positive, got %d", c.Auction.DefaultTimeoutMinutes))
	}
	if c.Auction.MinOffersRequired < 1 {
		errs = append(errs, fmt.Errorf(
			"AUCTION_MIN_OFFERS must be at least 1, got %d", c.Auction.MinOffersRequired))
	}
	if c.Provider.FetchTimeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_FETCH_TIMEOUT must be positive"))
	}
	if c.RateLimit.StartRPS < 1 || c.RateLimit.ReadRPS < 1 {
		errs = append(errs, fmt.Errorf(
			"rate limits must be at least 1 rps, got start=%d read=%d",
			c.RateLimit.StartRPS, c.RateLimit.ReadRPS))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	cfg.Server = ServerConfig{
		Port:           getEnv("SERVER_PORT", "8080"),
		Env:            getEnv("ENVIRONMENT", "development"),
		ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "lendora_auction"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// ── JWT ───────────────────────────────────────────────────────────────────
	cfg.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET", ""),
	}

	// ── Auction policy ────────────────────────────────────────────────────────
	timeoutMin, err := getInt("AUCTION_TIMEOUT_MINUTES", 15)
	if err != nil {
		return nil, fmt.Errorf("AUCTION_TIMEOUT_MINUTES: %w", err)
	}
	minOffers, err := getInt("AUCTION_MIN_OFFERS", 2)
	if err != nil {
		return nil, fmt.Errorf("AUCTION_MIN_OFFERS: %w", err)
	}

	cfg.Auction = AuctionConfig{
		DefaultTimeoutMinutes: timeoutMin,
		MinOffersRequired:     minOffers,
		AutoComplete:          getEnv("AUCTION_AUTO_COMPLETE", "true") != "false",
	}

	// ── Provider ──────────────────────────────────────────────────────────────
	cfg.Provider = ProviderConfig{
		FetchTimeout: getDuration("PROVIDER_FETCH_TIMEOUT", 10*time.Second),
	}

	// ── Rate limits ───────────────────────────────────────────────────────────
	startRPS, err := getInt("RATE_LIMIT_START_RPS", 5)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_START_RPS: %w", err)
	}
	readRPS, err := getInt("RATE_LIMIT_READ_RPS", 30)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_READ_RPS: %w", err)
	}
	cfg.RateLimit = RateLimitConfig{
		StartRPS: startRPS,
		ReadRPS:  readRPS,
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
