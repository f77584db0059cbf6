// Package normalize maps catalog-specific card records onto models.Card.
// Nothing here touches the network or storage.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"cardhub/internal/tcgapi"
	"cardhub/internal/tcgdex"
	"cardhub/pkg/models"
)

const (
	SourcePrimary   = "tcgapi"
	SourceSecondary = "tcgdex"

	// ImageExtension is the file type the secondary catalog serves for
	// <base>/low.<ext> and <base>/high.<ext>.
	ImageExtension = "webp"

	// PrimaryLanguage tags primary catalog cards, which carry no language.
	PrimaryLanguage = "en"
)

// SkipFunc is told about each record that could not be normalized.
type SkipFunc func(source, id, reason string)

type Normalizer struct {
	classifier SetClassifier
	now        func() time.Time
}

// New returns a Normalizer. A nil classifier selects DefaultClassifier.
func New(classifier SetClassifier) *Normalizer {
	if classifier == nil {
		classifier = DefaultClassifier
	}
	return &Normalizer{classifier: classifier, now: time.Now}
}

// FromPrimary converts one primary catalog record. ok is false when the
// record has no id or display name.
func (n *Normalizer) FromPrimary(c tcgapi.Card) (models.Card, bool) {
	name := strings.TrimSpace(c.Name)
	if c.ID == "" || name == "" {
		return models.Card{}, false
	}

	set := models.UnknownSet()
	if c.Set != nil {
		set = models.CardSet{
			ID:           c.Set.ID,
			Name:         orUnknown(c.Set.Name),
			Series:       c.Set.Series,
			Total:        c.Set.Total,
			PrintedTotal: c.Set.PrintedTotal,
			Code:         c.Set.PtcgoCode,
			ReleaseDate:  c.Set.ReleaseDate,
		}
	}
	set.Japanese = n.classifier.IsJapanese(set)

	return models.Card{
		ID:           c.ID,
		Name:         name,
		Category:     c.Supertype,
		HP:           c.HP,
		Types:        c.Types,
		Rarity:       c.Rarity,
		Set:          set,
		Images:       models.CardImages{Small: c.Images.Small, Large: c.Images.Large},
		Number:       c.Number,
		Artist:       c.Artist,
		Pricing:      primaryPricing(c.TCGPlayer),
		Language:     PrimaryLanguage,
		Source:       SourcePrimary,
		SpeciesIndex: firstIndex(c.NationalPokedexNumbers),
		UpdatedAt:    n.now().UTC(),
	}, true
}

// FromSecondary converts one secondary catalog record, compact or detailed.
func (n *Normalizer) FromSecondary(c tcgdex.Card, lang string) (models.Card, bool) {
	name := strings.TrimSpace(c.Name)
	if c.ID == "" || name == "" {
		return models.Card{}, false
	}

	set := models.UnknownSet()
	if c.Set != nil {
		set.ID = c.Set.ID
		set.Name = orUnknown(c.Set.Name)
		set.ReleaseDate = c.Set.ReleaseDate
		if c.Set.Serie != nil {
			set.Series = c.Set.Serie.Name
		}
		if c.Set.CardCount != nil {
			set.Total = c.Set.CardCount.Total
			set.PrintedTotal = c.Set.CardCount.Official
		}
	}
	set.Japanese = ForLanguage(lang, n.classifier).IsJapanese(set)

	var hp string
	if c.HP != nil {
		hp = strconv.Itoa(*c.HP)
	}

	return models.Card{
		ID:           c.ID,
		Name:         name,
		Category:     c.Category,
		HP:           hp,
		Types:        c.Types,
		Rarity:       c.Rarity,
		Set:          set,
		Images:       SecondaryImages(c.Image),
		Number:       c.LocalID,
		Artist:       c.Illustrator,
		Language:     lang,
		Source:       SourceSecondary,
		SpeciesIndex: firstIndex(c.DexID),
		UpdatedAt:    n.now().UTC(),
	}, true
}

// PrimaryCards converts a batch, skipping records that fail.
func (n *Normalizer) PrimaryCards(raw []tcgapi.Card, skip SkipFunc) []models.Card {
	out := make([]models.Card, 0, len(raw))
	for _, rc := range raw {
		c, ok := n.FromPrimary(rc)
		if !ok {
			if skip != nil {
				skip(SourcePrimary, rc.ID, missingReason(rc.ID))
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

func (n *Normalizer) SecondaryCards(raw []tcgdex.Card, lang string, skip SkipFunc) []models.Card {
	out := make([]models.Card, 0, len(raw))
	for _, rc := range raw {
		c, ok := n.FromSecondary(rc, lang)
		if !ok {
			if skip != nil {
				skip(SourceSecondary, rc.ID, missingReason(rc.ID))
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// SecondaryImages derives preview and full image URLs from a base path.
func SecondaryImages(base string) models.CardImages {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return models.CardImages{}
	}
	return models.CardImages{
		Small: base + "/low." + ImageExtension,
		Large: base + "/high." + ImageExtension,
	}
}

func primaryPricing(tp *tcgapi.TCGPlayer) *models.Pricing {
	if tp == nil {
		return nil
	}
	p := &models.Pricing{URL: tp.URL, UpdatedAt: tp.UpdatedAt}
	if len(tp.Prices) > 0 {
		p.Prices = make(map[string]models.PriceTier, len(tp.Prices))
		for variant, pr := range tp.Prices {
			p.Prices[variant] = models.PriceTier{
				Low:       pr.Low,
				Mid:       pr.Mid,
				High:      pr.High,
				Market:    pr.Market,
				DirectLow: pr.DirectLow,
			}
		}
	}
	return p
}

func firstIndex(indexes []int) *int {
	if len(indexes) == 0 {
		return nil
	}
	v := indexes[0]
	return &v
}

func orUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return models.UnknownSetName
	}
	return name
}

func missingReason(id string) string {
	if id == "" {
		return "missing id"
	}
	return "missing name"
}
