// Package completion derives per-character and whole-collection completion
// from favorites and ownership. Totals are the snapshot cached on each
// favorite; owned counts are always live.
package completion

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"cardhub/internal/cards"
	"cardhub/internal/catalog"
	"cardhub/internal/characters"
	"cardhub/internal/favorites"
	"cardhub/pkg/database"
	"cardhub/pkg/models"
)

// TotalLanguage is the catalog language used for favorite total snapshots.
const TotalLanguage = "en"

// Counter reports how many cards a catalog lists for a query.
type Counter interface {
	Count(ctx context.Context, q catalog.Query) (int, error)
}

type Service struct {
	DB           *sql.DB
	Events       *database.Notifier
	FavoriteRepo *favorites.Repo
	Cards        *cards.Repo
	Characters   *characters.Repo
	Counter      Counter

	// FallbackSpeciesIndex is used for characters missing from the roster.
	FallbackSpeciesIndex int

	logger *zap.Logger
}

func NewService(db *sql.DB, events *database.Notifier, favs *favorites.Repo, cardRepo *cards.Repo,
	chars *characters.Repo, counter Counter, fallbackIndex int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		DB:                   db,
		Events:               events,
		FavoriteRepo:         favs,
		Cards:                cardRepo,
		Characters:           chars,
		Counter:              counter,
		FallbackSpeciesIndex: fallbackIndex,
		logger:               logger.Named("completion"),
	}
}

// AddFavorite favorites a character and snapshots its catalog total. It is
// a no-op returning false when the favorite already exists. A failed
// catalog count falls back to the number of locally stored cards.
func (s *Service) AddFavorite(ctx context.Context, userID, name string) (bool, error) {
	exists, err := s.FavoriteRepo.Exists(ctx, userID, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	total, err := s.countTotal(ctx, name)
	if err != nil {
		return false, err
	}
	return s.FavoriteRepo.Add(ctx, userID, name, total)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, name string) (bool, error) {
	return s.FavoriteRepo.Remove(ctx, userID, name)
}

func (s *Service) countTotal(ctx context.Context, name string) (int, error) {
	if s.Counter != nil {
		idx, fallback, err := s.Characters.IndexOrDefault(ctx, name, s.FallbackSpeciesIndex)
		if err != nil {
			return 0, err
		}
		if fallback {
			s.logger.Warn("species_index_fallback", zap.String("character", name), zap.Int("species_index", idx))
		}

		n, err := s.Counter.Count(ctx, catalog.Query{Character: name, Language: TotalLanguage, SpeciesIndex: idx})
		if err == nil {
			return n, nil
		}
		s.logger.Warn("catalog count failed, using local count",
			zap.String("character", name),
			zap.String("kind", string(catalog.Classify(err))),
			zap.Error(err))
	}

	n, err := s.Cards.CountByCharacter(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("local total for %s: %w", name, err)
	}
	return n, nil
}

// favoritesQuery computes every favorite's completion in one statement.
var favoritesQuery = `
	SELECT f.character_name, ch.species_index, ch.image_url, f.total_cards, COUNT(DISTINCT c.id)
	FROM favorites f
	LEFT JOIN characters ch ON ch.name = f.character_name
	LEFT JOIN ownership o ON o.user_id = f.user_id AND o.owned = 1
	LEFT JOIN cards c ON c.id = o.card_id AND ` + cards.NameMatchOn("c.name", "f.character_name") + `
	WHERE f.user_id = ?
	GROUP BY f.character_name, ch.species_index, ch.image_url, f.total_cards
	ORDER BY f.character_name`

// Favorites returns the user's favorites with cached totals and live owned
// counts.
func (s *Service) Favorites(ctx context.Context, userID string) ([]models.CharacterCompletion, error) {
	rows, err := s.DB.QueryContext(ctx, favoritesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("favorites completion: %w", err)
	}
	defer rows.Close()

	out := []models.CharacterCompletion{}
	for rows.Next() {
		var (
			cc    models.CharacterCompletion
			idx   sql.NullInt64
			image sql.NullString
		)
		if err := rows.Scan(&cc.Name, &idx, &image, &cc.TotalCards, &cc.OwnedCards); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		if idx.Valid {
			v := int(idx.Int64)
			cc.SpeciesIndex = &v
		}
		cc.ImageURL = image.String
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// WatchFavorites re-emits Favorites after any write that can change it.
func (s *Service) WatchFavorites(ctx context.Context, userID string) <-chan database.Snapshot[[]models.CharacterCompletion] {
	return database.Watch(ctx, s.Events, func(ctx context.Context) ([]models.CharacterCompletion, error) {
		return s.Favorites(ctx, userID)
	}, database.TableFavorites, database.TableOwnership, database.TableCards, database.TableCharacters)
}

// Collection mixes the cached favorite totals with the live count of owned
// cards across the whole collection.
func (s *Service) Collection(ctx context.Context, userID string) (models.CollectionCompletion, error) {
	total, err := s.FavoriteRepo.TotalCards(ctx, userID)
	if err != nil {
		return models.CollectionCompletion{}, err
	}

	var owned int
	err = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT card_id) FROM ownership WHERE user_id = ? AND owned = 1
	`, userID).Scan(&owned)
	if err != nil {
		return models.CollectionCompletion{}, fmt.Errorf("owned count: %w", err)
	}
	return models.CollectionCompletion{TotalCards: total, OwnedCards: owned}, nil
}
