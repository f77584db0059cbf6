package collection

import (
	"context"

	"cardhub/internal/cards"
)

// Favoriter adds a character to a user's favorites.
type Favoriter interface {
	AddFavorite(ctx context.Context, userID, name string) (bool, error)
}

// CharacterResolver maps a card name to its roster character.
type CharacterResolver interface {
	Resolve(ctx context.Context, cardName string) (string, bool, error)
}

// AutoFavorite favorites the character of a card that was just marked
// owned.
type AutoFavorite struct {
	Cards      *cards.Repo
	Characters CharacterResolver
	Favorites  Favoriter
}

// Apply favorites character, or the roster character the stored card
// resolves to when character is empty. It returns the name only when a new
// favorite was added.
func (a *AutoFavorite) Apply(ctx context.Context, userID, cardID, character string) (string, error) {
	if character == "" {
		name, err := a.resolve(ctx, cardID)
		if err != nil || name == "" {
			return "", err
		}
		character = name
	}

	added, err := a.Favorites.AddFavorite(ctx, userID, character)
	if err != nil || !added {
		return "", err
	}
	return character, nil
}

func (a *AutoFavorite) resolve(ctx context.Context, cardID string) (string, error) {
	if a.Cards == nil || a.Characters == nil {
		return "", nil
	}
	card, err := a.Cards.GetByID(ctx, cardID)
	if err != nil || card == nil {
		return "", err
	}
	name, ok, err := a.Characters.Resolve(ctx, card.Name)
	if err != nil || !ok {
		return "", err
	}
	return name, nil
}
