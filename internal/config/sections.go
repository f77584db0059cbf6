package config

import (
	"time"

	"cardhub/pkg/database"
	"cardhub/pkg/logging"
)

type DatabaseConfig struct {
	Path        string        `mapstructure:"path" validate:"required"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" validate:"min=0"`
}

func (c DatabaseConfig) Database() database.Config {
	return database.Config{Path: c.Path, BusyTimeout: c.BusyTimeout}
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret" validate:"required,min=8"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" validate:"required"`
	JWTDuration time.Duration `mapstructure:"jwt_duration" validate:"required"`
}

type CatalogsConfig struct {
	Primary   PrimaryCatalogConfig   `mapstructure:"primary"`
	Secondary SecondaryCatalogConfig `mapstructure:"secondary"`
}

// PrimaryCatalogConfig configures the paged, name-queried catalog.
type PrimaryCatalogConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	BaseURL   string          `mapstructure:"base_url" validate:"required,url"`
	APIKey    string          `mapstructure:"api_key"`
	Timeout   time.Duration   `mapstructure:"timeout" validate:"required"`
	PageSize  int             `mapstructure:"page_size" validate:"min=1,max=250"`
	MaxPages  int             `mapstructure:"max_pages" validate:"min=1,max=50"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// SecondaryCatalogConfig configures the per-language catalog. It lists
// everything at once, then fetches card detail.
type SecondaryCatalogConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	BaseURL   string          `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration   `mapstructure:"timeout" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// DetailConcurrency caps in-flight detail fetches during backfill.
	DetailConcurrency int `mapstructure:"detail_concurrency" validate:"min=1,max=64"`
}

type RateLimitConfig struct {
	Requests float64 `mapstructure:"requests" validate:"gt=0"`
	Burst    int     `mapstructure:"burst" validate:"min=1"`
}

type AggregatorConfig struct {
	// FallbackSpeciesIndex is used for characters missing from the roster.
	FallbackSpeciesIndex int           `mapstructure:"fallback_species_index" validate:"min=1"`
	SearchTimeout        time.Duration `mapstructure:"search_timeout" validate:"required"`
	AutoFavoriteOnOwn    bool          `mapstructure:"auto_favorite_on_own"`
}

type PrefetchConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required"`
	Language string `mapstructure:"language" validate:"required"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

func (c LoggingConfig) Logging() logging.Config {
	return logging.Config{Level: c.Level, Development: c.Development}
}

// CLIConfig identifies the local user the CLI acts as.
type CLIConfig struct {
	Email string `mapstructure:"email" validate:"required,email"`
}
