package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/normalize"
	"cardhub/internal/tcgapi"
	"cardhub/internal/tcgdex"
	"cardhub/pkg/models"
)

func TestSecondaryImageURLs(t *testing.T) {
	n := normalize.New(nil)

	card, ok := n.FromSecondary(tcgdex.Card{
		ID:    "abc-1",
		Name:  "Pikachu",
		Image: "https://assets.example/en/abc/1/front",
	}, "en")

	require.True(t, ok)
	assert.Equal(t, "https://assets.example/en/abc/1/front/low.webp", card.Images.Small)
	assert.Equal(t, "https://assets.example/en/abc/1/front/high.webp", card.Images.Large)
}

func TestSecondaryWithoutImageLeavesBothEmpty(t *testing.T) {
	card, ok := normalize.New(nil).FromSecondary(tcgdex.Card{ID: "x-1", Name: "Eevee"}, "en")

	require.True(t, ok)
	assert.Empty(t, card.Images.Small)
	assert.Empty(t, card.Images.Large)
}

func TestMissingSetMapsToSentinel(t *testing.T) {
	n := normalize.New(nil)

	fromSecondary, ok := n.FromSecondary(tcgdex.Card{ID: "x-1", Name: "Eevee"}, "en")
	require.True(t, ok)
	assert.Equal(t, models.UnknownSet(), fromSecondary.Set)

	fromPrimary, ok := n.FromPrimary(tcgapi.Card{ID: "p-1", Name: "Eevee"})
	require.True(t, ok)
	assert.Equal(t, "Unknown Set", fromPrimary.Set.Name)
	assert.Empty(t, fromPrimary.Set.Series)
	assert.Zero(t, fromPrimary.Set.Total)
	assert.Zero(t, fromPrimary.Set.PrintedTotal)
}

func TestBatchSkipsRecordsWithoutName(t *testing.T) {
	var skipped []string
	raw := []tcgdex.Card{
		{ID: "a-1", Name: "Mew"},
		{ID: "a-2", Name: "   "},
		{ID: "a-3", Name: "Mewtwo"},
	}

	cards := normalize.New(nil).SecondaryCards(raw, "ja", func(source, id, reason string) {
		skipped = append(skipped, source+":"+id+":"+reason)
	})

	require.Len(t, cards, 2)
	assert.Equal(t, "Mew", cards[0].Name)
	assert.Equal(t, "Mewtwo", cards[1].Name)
	assert.Equal(t, []string{"tcgdex:a-2:missing name"}, skipped)
	assert.Equal(t, "ja", cards[0].Language)
	assert.True(t, cards[0].Set.Japanese)
}

func TestFromPrimaryMapsAllFields(t *testing.T) {
	market := 350.0
	raw := tcgapi.Card{
		ID:                     "base1-4",
		Name:                   "Charizard",
		Supertype:              "Pokémon",
		HP:                     "120",
		Types:                  []string{"Fire"},
		NationalPokedexNumbers: []int{6},
		Rarity:                 "Rare Holo",
		Number:                 "4",
		Artist:                 "Mitsuhiro Arita",
		Set: &tcgapi.Set{
			ID: "base1", Name: "Base", Series: "Base",
			PrintedTotal: 102, Total: 102, PtcgoCode: "BS", ReleaseDate: "1999/01/09",
		},
		Images: tcgapi.Images{Small: "s.png", Large: "l.png"},
		TCGPlayer: &tcgapi.TCGPlayer{
			URL:    "https://prices.example/base1-4",
			Prices: map[string]tcgapi.Price{"holofoil": {Market: &market}},
		},
	}

	card, ok := normalize.New(nil).FromPrimary(raw)

	require.True(t, ok)
	assert.Equal(t, "Pokémon", card.Category)
	assert.Equal(t, "BS", card.Set.Code)
	assert.False(t, card.Set.Japanese)
	assert.Equal(t, "en", card.Language)
	assert.Equal(t, normalize.SourcePrimary, card.Source)
	require.NotNil(t, card.SpeciesIndex)
	assert.Equal(t, 6, *card.SpeciesIndex)
	price, ok := card.MarketPrice()
	assert.True(t, ok)
	assert.Equal(t, 350.0, price)
}

func TestFromSecondaryDetailSet(t *testing.T) {
	hp := 60
	card, ok := normalize.New(nil).FromSecondary(tcgdex.Card{
		ID: "sv1-1", LocalID: "1", Name: "Pikachu", HP: &hp, DexID: []int{25},
		Set: &tcgdex.Set{
			ID: "sv1", Name: "Scarlet & Violet",
			Serie:     &tcgdex.Serie{ID: "sv", Name: "Scarlet & Violet"},
			CardCount: &tcgdex.CardCount{Official: 198, Total: 258},
		},
	}, "en")

	require.True(t, ok)
	assert.Equal(t, "60", card.HP)
	assert.Equal(t, "1", card.Number)
	assert.Equal(t, 258, card.Set.Total)
	assert.Equal(t, 198, card.Set.PrintedTotal)
	assert.Equal(t, "Scarlet & Violet", card.Set.Series)
}

func TestFromSecondaryJapaneseListingWithoutSet(t *testing.T) {
	n := normalize.New(nil)

	ja, ok := n.FromSecondary(tcgdex.Card{ID: "SV1a-25", Name: "ピカチュウ"}, "ja")
	require.True(t, ok)
	assert.True(t, ja.Set.Japanese)
	assert.Equal(t, models.UnknownSetName, ja.Set.Name)

	en, ok := n.FromSecondary(tcgdex.Card{ID: "sv1-63", Name: "Pikachu"}, "en")
	require.True(t, ok)
	assert.False(t, en.Set.Japanese)
}
