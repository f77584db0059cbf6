package models

import (
	"strings"
	"time"
)

type Condition string

const (
	ConditionPristine         Condition = "pristine"
	ConditionNearMint         Condition = "near_mint"
	ConditionLightlyPlayed    Condition = "lightly_played"
	ConditionModeratelyPlayed Condition = "moderately_played"
	ConditionHeavilyPlayed    Condition = "heavily_played"
	ConditionDamaged          Condition = "damaged"
	ConditionUnknown          Condition = "unknown"
)

// ParseCondition accepts the stored value or a human label ("Near Mint").
// Unrecognised input maps to ConditionUnknown.
func ParseCondition(s string) Condition {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch Condition(key) {
	case ConditionPristine, ConditionNearMint, ConditionLightlyPlayed,
		ConditionModeratelyPlayed, ConditionHeavilyPlayed, ConditionDamaged:
		return Condition(key)
	case "mint":
		return ConditionPristine
	default:
		return ConditionUnknown
	}
}

// OwnershipRecord is a user's relationship to one card. At most one exists
// per (UserID, CardID).
type OwnershipRecord struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	CardID         string    `json:"card_id"`
	Owned          bool      `json:"owned"`
	Condition      Condition `json:"condition"`
	Graded         bool      `json:"graded"`
	GradingCompany string    `json:"grading_company,omitempty"`
	Grade          string    `json:"grade,omitempty"`
	PurchasePrice  *float64  `json:"purchase_price,omitempty"`
	CurrentPrice   *float64  `json:"current_price,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CollectionEntry pairs an ownership record with its card, when the card is
// stored locally.
type CollectionEntry struct {
	OwnershipRecord
	Card *Card `json:"card,omitempty"`
}
