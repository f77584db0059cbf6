package cards_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cardhub/internal/cards"
	"cardhub/pkg/models"
)

func ids(cs []models.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func priced(id string, market float64) models.Card {
	return models.Card{ID: id, Pricing: &models.Pricing{Prices: map[string]models.PriceTier{"normal": {Market: &market}}}}
}

func TestSortByPrice(t *testing.T) {
	cs := []models.Card{priced("mid", 5), {ID: "none"}, priced("cheap", 1), priced("dear", 9)}

	cards.Sort(cs, cards.SortPriceLow)
	assert.Equal(t, []string{"cheap", "mid", "dear", "none"}, ids(cs))

	cards.Sort(cs, cards.SortPriceHigh)
	assert.Equal(t, []string{"dear", "mid", "cheap", "none"}, ids(cs))
}

func TestSortByNumberIsNumeric(t *testing.T) {
	cs := []models.Card{{ID: "a", Number: "10"}, {ID: "b", Number: "2"}, {ID: "c", Number: "TG05"}}

	cards.Sort(cs, cards.SortNumber)

	assert.Equal(t, []string{"b", "a", "c"}, ids(cs))
}

func TestSortByRarity(t *testing.T) {
	cs := []models.Card{{ID: "x", Rarity: "Rare Secret"}, {ID: "y", Rarity: "Common"}, {ID: "z", Rarity: "Mystery"}}

	cards.Sort(cs, cards.SortRarity)

	assert.Equal(t, []string{"y", "x", "z"}, ids(cs))
}

func TestParseSortOrder(t *testing.T) {
	o, ok := cards.ParseSortOrder("Price_High")
	assert.True(t, ok)
	assert.Equal(t, cards.SortPriceHigh, o)

	_, ok = cards.ParseSortOrder("alphabet")
	assert.False(t, ok)
}
