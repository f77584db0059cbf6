package models

// CharacterCompletion is a favorite character with its owned and total counts.
type CharacterCompletion struct {
	Name         string `json:"name"`
	SpeciesIndex *int   `json:"species_index,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	TotalCards   int    `json:"total_cards"`
	OwnedCards   int    `json:"owned_cards"`
}

func (c CharacterCompletion) Percentage() float64 {
	return percentage(c.OwnedCards, c.TotalCards)
}

// CollectionCompletion sums cached favorite totals against live owned counts.
type CollectionCompletion struct {
	TotalCards int `json:"total_cards"`
	OwnedCards int `json:"owned_cards"`
}

func (c CollectionCompletion) Percentage() float64 {
	return percentage(c.OwnedCards, c.TotalCards)
}

func percentage(owned, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(owned) * 100 / float64(total)
}
