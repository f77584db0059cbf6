package models

// Character is a roster entry a user can search for and favorite.
// Owned and Total are filled at read time and never stored.
type Character struct {
	Name         string `json:"name"`
	SpeciesIndex *int   `json:"species_index,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Favorite     bool   `json:"favorite"`
	Owned        int    `json:"owned,omitempty"`
	Total        int    `json:"total,omitempty"`
}
