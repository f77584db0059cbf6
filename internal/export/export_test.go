package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/export"
	"cardhub/pkg/models"
)

func ptr(f float64) *float64 { return &f }

func TestCardsCSVWritesMarketPrice(t *testing.T) {
	cs := []models.Card{{
		ID: "base1-58", Name: "Pikachu", Types: []string{"Lightning"},
		Set:      models.CardSet{ID: "base1", Name: "Base", Total: 102},
		Language: "en", Source: "tcgapi",
		Pricing: &models.Pricing{Prices: map[string]models.PriceTier{
			"holofoil": {Market: ptr(3.5)},
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, export.CardsCSV(&buf, cs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "Pikachu", rows[1][1])
	assert.Equal(t, "Lightning", rows[1][4])
	assert.Equal(t, "102", rows[1][9])
	assert.Equal(t, "3.50", rows[1][len(rows[1])-1])
}

func TestCollectionCSVReadsBack(t *testing.T) {
	entries := []models.CollectionEntry{
		{
			OwnershipRecord: models.OwnershipRecord{
				CardID: "base1-58", Owned: true, Condition: models.ConditionNearMint,
				Graded: true, GradingCompany: "PSA", Grade: "10", PurchasePrice: ptr(12),
			},
			Card: &models.Card{Name: "Pikachu"},
		},
		{OwnershipRecord: models.OwnershipRecord{CardID: "sv1-3", Owned: false, Condition: models.ConditionUnknown}},
	}

	var buf bytes.Buffer
	require.NoError(t, export.CollectionCSV(&buf, entries))

	got, err := export.ReadCollectionCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "base1-58", got[0].CardID)
	assert.True(t, got[0].Owned)
	assert.Equal(t, models.ConditionNearMint, got[0].Condition)
	assert.Equal(t, "PSA", got[0].GradingCompany)
	require.NotNil(t, got[0].PurchasePrice)
	assert.Equal(t, 12.0, *got[0].PurchasePrice)
	assert.Nil(t, got[0].CurrentPrice)

	assert.False(t, got[1].Owned)
}

func TestReadCollectionCSVDefaultsAndErrors(t *testing.T) {
	got, err := export.ReadCollectionCSV(strings.NewReader("card_id,condition\nswsh1-1,Near Mint\n,\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Owned)
	assert.Equal(t, models.ConditionNearMint, got[0].Condition)

	_, err = export.ReadCollectionCSV(strings.NewReader("name\nPikachu\n"))
	assert.Error(t, err)

	_, err = export.ReadCollectionCSV(strings.NewReader("card_id,owned\nx,maybe\n"))
	assert.Error(t, err)
}

func TestCardsJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cards.json")
	cs := []models.Card{{ID: "a", Name: "Mew", Set: models.UnknownSet(), Language: "en", Source: "tcgdex"}}

	err := export.ToFile(path, func(w io.Writer) error { return export.CardsJSON(w, cs) })
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var back []models.Card
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 1)
	assert.Equal(t, "Unknown Set", back[0].Set.Name)
}
