package models

import "time"

// FavoriteCharacter records that a user follows a character. TotalCards is
// the catalog size captured when the favorite was added.
type FavoriteCharacter struct {
	UserID        string    `json:"user_id"`
	CharacterName string    `json:"character_name"`
	TotalCards    int       `json:"total_cards"`
	CreatedAt     time.Time `json:"created_at"`
}

type WishlistRecord struct {
	UserID    string    `json:"user_id"`
	CardID    string    `json:"card_id"`
	CreatedAt time.Time `json:"created_at"`
	Card      *Card     `json:"card,omitempty"`
}
