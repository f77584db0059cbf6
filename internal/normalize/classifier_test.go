package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/normalize"
	"cardhub/internal/tcgapi"
	"cardhub/pkg/models"
)

func TestDefaultClassifier(t *testing.T) {
	c := normalize.DefaultClassifier

	tests := []struct {
		name string
		set  models.CardSet
		want bool
	}{
		{"legacy era id", models.CardSet{ID: "sm12a", Name: "Tag All Stars"}, true},
		{"xy subset", models.CardSet{ID: "xy8b", Name: "Blue Shock"}, true},
		{"platinum subset", models.CardSet{ID: "pt4a", Name: "Advent of Arceus"}, true},
		{"english platinum", models.CardSet{ID: "pl4", Name: "Arceus"}, false},
		{"katakana name", models.CardSet{ID: "s4", Name: "仰天のボルテッカー"}, true},
		{"hiragana series", models.CardSet{ID: "x", Name: "Promo", Series: "ぽけもん"}, true},
		{"english set", models.CardSet{ID: "sv3pt5", Name: "151", Series: "Scarlet & Violet"}, false},
		{"plain era id", models.CardSet{ID: "sm12", Name: "Cosmic Eclipse"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsJapanese(tt.set))
		})
	}
}

func TestWithPatternsAddsEraCodes(t *testing.T) {
	base, err := normalize.NewScriptClassifier(normalize.LegacyEraPatterns...)
	require.NoError(t, err)
	assert.False(t, base.IsJapanese(models.CardSet{ID: "s12a"}))

	extended, err := base.WithPatterns(`^s\d+[a-z]$`)
	require.NoError(t, err)
	assert.True(t, extended.IsJapanese(models.CardSet{ID: "s12a"}))
	assert.False(t, base.IsJapanese(models.CardSet{ID: "s12a"}))
}

func TestWithPatternsRejectsBadRegex(t *testing.T) {
	_, err := normalize.NewScriptClassifier(`^(`)
	assert.Error(t, err)
}

func TestNormalizerUsesPluggedClassifier(t *testing.T) {
	always := normalize.ClassifierFunc(func(models.CardSet) bool { return true })
	n := normalize.New(always)

	card, ok := n.FromPrimary(tcgapi.Card{ID: "base1-1", Name: "Alakazam"})
	require.True(t, ok)
	assert.True(t, card.Set.Japanese)
}

func TestForLanguage(t *testing.T) {
	english := models.CardSet{ID: "sv1", Name: "Scarlet & Violet"}
	never := normalize.ClassifierFunc(func(models.CardSet) bool { return false })

	assert.True(t, normalize.ForLanguage("ja", never).IsJapanese(english))
	assert.True(t, normalize.ForLanguage(" JA ", never).IsJapanese(english))
	assert.False(t, normalize.ForLanguage("en", never).IsJapanese(english))
	assert.True(t, normalize.ForLanguage("en", normalize.DefaultClassifier).IsJapanese(models.CardSet{ID: "sm12a"}))
}
