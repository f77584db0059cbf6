package models

import "time"

// Card is the unified form of a catalog card entry. Every catalog client
// output is mapped into this structure before it reaches storage.
type Card struct {
	ID           string     `json:"id"`                      // catalog-issued id, unique per catalog
	Name         string     `json:"name"`                    // display name, never empty
	Category     string     `json:"category,omitempty"`      // supertype: Pokémon, Trainer, Energy
	HP           string     `json:"hp,omitempty"`            // hit points kept as text
	Types        []string   `json:"types,omitempty"`
	Rarity       string     `json:"rarity,omitempty"`
	Set          CardSet    `json:"set"`
	Images       CardImages `json:"images"`
	Number       string     `json:"number,omitempty"`
	Artist       string     `json:"artist,omitempty"`
	Pricing      *Pricing   `json:"pricing,omitempty"`
	Language     string     `json:"language"`
	Source       string     `json:"source"`
	SpeciesIndex *int       `json:"species_index,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CardSet struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Series       string `json:"series,omitempty"`
	Total        int    `json:"total"`
	PrintedTotal int    `json:"printed_total"`
	Code         string `json:"code,omitempty"`
	ReleaseDate  string `json:"release_date,omitempty"`
	Japanese     bool   `json:"japanese"`
}

// UnknownSetName labels cards whose source record carried no set.
const UnknownSetName = "Unknown Set"

// UnknownSet is the sentinel set for cards without set information.
func UnknownSet() CardSet {
	return CardSet{Name: UnknownSetName}
}

type CardImages struct {
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

// Pricing holds market prices keyed by print variant (normal, holofoil, ...).
type Pricing struct {
	URL       string               `json:"url,omitempty"`
	UpdatedAt string               `json:"updated_at,omitempty"`
	Prices    map[string]PriceTier `json:"prices,omitempty"`
}

type PriceTier struct {
	Low       *float64 `json:"low,omitempty"`
	Mid       *float64 `json:"mid,omitempty"`
	High      *float64 `json:"high,omitempty"`
	Market    *float64 `json:"market,omitempty"`
	DirectLow *float64 `json:"direct_low,omitempty"`
}

// MarketPrice returns the market price of the "normal" variant, falling back
// to "holofoil". ok is false when neither is known.
func (c Card) MarketPrice() (price float64, ok bool) {
	if c.Pricing == nil {
		return 0, false
	}
	for _, variant := range []string{"normal", "holofoil"} {
		if tier, found := c.Pricing.Prices[variant]; found && tier.Market != nil {
			return *tier.Market, true
		}
	}
	return 0, false
}
