package config

import (
	"time"

	"github.com/spf13/viper"

	"cardhub/pkg/database"
)

func registerDefaults(v *viper.Viper) {
	db := database.DefaultConfig()
	v.SetDefault("database.path", db.Path)
	v.SetDefault("database.busy_timeout", db.BusyTimeout)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.trusted_proxies", []string{"127.0.0.1"})

	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.jwt_issuer", "cardhub")
	v.SetDefault("auth.jwt_duration", 24*time.Hour)

	v.SetDefault("catalogs.primary.enabled", true)
	v.SetDefault("catalogs.primary.base_url", "https://api.pokemontcg.io/v2")
	v.SetDefault("catalogs.primary.timeout", 20*time.Second)
	v.SetDefault("catalogs.primary.page_size", 250)
	v.SetDefault("catalogs.primary.max_pages", 4)
	v.SetDefault("catalogs.primary.rate_limit.requests", 5.0)
	v.SetDefault("catalogs.primary.rate_limit.burst", 5)

	v.SetDefault("catalogs.secondary.enabled", true)
	v.SetDefault("catalogs.secondary.base_url", "https://api.tcgdex.net/v2")
	v.SetDefault("catalogs.secondary.timeout", 15*time.Second)
	v.SetDefault("catalogs.secondary.rate_limit.requests", 20.0)
	v.SetDefault("catalogs.secondary.rate_limit.burst", 10)
	v.SetDefault("catalogs.secondary.detail_concurrency", 8)

	v.SetDefault("aggregator.fallback_species_index", 25)
	v.SetDefault("aggregator.search_timeout", 45*time.Second)
	v.SetDefault("aggregator.auto_favorite_on_own", true)

	v.SetDefault("prefetch.enabled", false)
	v.SetDefault("prefetch.schedule", "0 4 * * *")
	v.SetDefault("prefetch.language", "en")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetDefault("cli.email", "local@cardhub.dev")
}
