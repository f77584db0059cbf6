// Package app builds every component from configuration. Entry points own
// the App and close it on exit.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"cardhub/internal/aggregator"
	"cardhub/internal/auth"
	"cardhub/internal/cards"
	"cardhub/internal/catalog"
	"cardhub/internal/characters"
	"cardhub/internal/collection"
	"cardhub/internal/completion"
	"cardhub/internal/config"
	"cardhub/internal/favorites"
	"cardhub/internal/normalize"
	"cardhub/internal/prefetch"
	"cardhub/internal/sync"
	"cardhub/internal/tcgapi"
	"cardhub/internal/tcgdex"
	"cardhub/internal/wishlist"
	"cardhub/pkg/database"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sql.DB
	Events *database.Notifier
	Hub    *sync.Hub

	Tokens auth.TokenService
	Users  *auth.Repo

	Cards      *cards.Repo
	Characters *characters.Repo
	Collection *collection.Repo
	Favorites  *favorites.Repo
	Wishlist   *wishlist.Repo

	Aggregator *aggregator.Service
	Completion *completion.Service
	Prefetcher *prefetch.Prefetcher
}

// New opens and migrates the database, seeds the roster on first run and
// wires the catalog sources and services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.OpenAndMigrate(cfg.Database.Database())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Events: database.NewNotifier(),
		Hub:    sync.NewHub(logger),
		Tokens: auth.TokenService{
			Secret:   []byte(cfg.Auth.JWTSecret),
			Issuer:   cfg.Auth.JWTIssuer,
			Duration: cfg.Auth.JWTDuration,
		},
	}

	a.Users = auth.NewRepo(db, a.Events)
	a.Cards = cards.NewRepo(db, a.Events)
	a.Characters = characters.NewRepo(db, a.Events)
	a.Collection = collection.NewRepo(db, a.Cards, a.Events)
	a.Favorites = favorites.NewRepo(db, a.Events)
	a.Wishlist = wishlist.NewRepo(db, a.Cards, a.Events)

	seeded, err := a.Characters.SeedDefault(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed characters: %w", err)
	}
	if seeded > 0 {
		logger.Info("character roster seeded", zap.Int("characters", seeded))
	}

	sources, secondary := buildSources(cfg.Catalogs, logger)
	var counter completion.Counter
	if secondary != nil {
		counter = secondary
	}

	agg := cfg.Aggregator
	a.Aggregator = aggregator.NewService(sources, a.Cards, a.Characters, agg.FallbackSpeciesIndex, agg.SearchTimeout, logger)
	a.Completion = completion.NewService(db, a.Events, a.Favorites, a.Cards, a.Characters, counter, agg.FallbackSpeciesIndex, logger)
	a.Prefetcher = prefetch.New(a.Characters, a.Cards, a.Aggregator, cfg.Prefetch.Language, logger)

	return a, nil
}

// buildSources returns the enabled sources in merge order, primary first.
// secondary is nil when that catalog is disabled.
func buildSources(cfg config.CatalogsConfig, logger *zap.Logger) ([]catalog.Source, *catalog.SecondarySource) {
	normalizer := normalize.New(nil)
	var (
		sources   []catalog.Source
		secondary *catalog.SecondarySource
	)

	if p := cfg.Primary; p.Enabled {
		opts := []tcgapi.Option{tcgapi.WithRateLimit(p.RateLimit.Requests, p.RateLimit.Burst)}
		if p.APIKey != "" {
			opts = append(opts, tcgapi.WithAPIKey(p.APIKey))
		}
		client := tcgapi.NewClient(p.BaseURL, p.Timeout, opts...)
		sources = append(sources, catalog.NewPrimarySource(client, normalizer, p.PageSize, p.MaxPages, logger))
	}

	if s := cfg.Secondary; s.Enabled {
		client := tcgdex.NewClient(s.BaseURL, s.Timeout,
			tcgdex.WithRateLimit(s.RateLimit.Requests, s.RateLimit.Burst),
			tcgdex.WithDetailConcurrency(s.DetailConcurrency))
		secondary = catalog.NewSecondarySource(client, normalizer, logger)
		sources = append(sources, secondary)
	}

	return sources, secondary
}

func (a *App) AutoFavorite() *collection.AutoFavorite {
	return &collection.AutoFavorite{Cards: a.Cards, Characters: a.Characters, Favorites: a.Completion}
}

// LocalUser returns the user the CLI acts as, creating it on first use.
func (a *App) LocalUser(ctx context.Context) (string, error) {
	u, _, err := a.Users.GetOrCreateByEmail(ctx, a.Config.CLI.Email, "")
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
