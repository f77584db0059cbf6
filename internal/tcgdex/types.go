package tcgdex

// Card is the secondary catalog's card shape. List endpoints return a
// compact form, mostly without set detail; the per-card endpoint returns the
// same shape fully populated.
type Card struct {
	ID          string   `json:"id"`
	LocalID     string   `json:"localId"`
	Name        string   `json:"name"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	HP          *int     `json:"hp"`
	Types       []string `json:"types"`
	EvolveFrom  string   `json:"evolveFrom"`
	Level       string   `json:"level"`
	DexID       []int    `json:"dexId"`
	Rarity      string   `json:"rarity"`
	Illustrator string   `json:"illustrator"`
	Set         *Set     `json:"set"`
}

type Set struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Logo        string     `json:"logo"`
	Symbol      string     `json:"symbol"`
	ReleaseDate string     `json:"releaseDate"`
	Serie       *Serie     `json:"serie"`
	CardCount   *CardCount `json:"cardCount"`
}

type Serie struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CardCount struct {
	Official int `json:"official"`
	Total    int `json:"total"`
}

// HasSetDetail reports whether the record already carries set metadata
// beyond an id.
func (c Card) HasSetDetail() bool {
	return c.Set != nil && c.Set.Name != "" && c.Set.CardCount != nil
}
