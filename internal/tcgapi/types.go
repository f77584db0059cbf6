package tcgapi

// Card is a card record as returned by the primary catalog.
type Card struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Supertype              string     `json:"supertype"`
	Subtypes               []string   `json:"subtypes"`
	HP                     string     `json:"hp"`
	Types                  []string   `json:"types"`
	NationalPokedexNumbers []int      `json:"nationalPokedexNumbers"`
	Rarity                 string     `json:"rarity"`
	Number                 string     `json:"number"`
	Artist                 string     `json:"artist"`
	Set                    *Set       `json:"set"`
	Images                 Images     `json:"images"`
	TCGPlayer              *TCGPlayer `json:"tcgplayer"`
}

type Set struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series"`
	PrintedTotal int    `json:"printedTotal"`
	Total        int    `json:"total"`
	PtcgoCode    string `json:"ptcgoCode"`
	ReleaseDate  string `json:"releaseDate"`
}

type Images struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type TCGPlayer struct {
	URL       string           `json:"url"`
	UpdatedAt string           `json:"updatedAt"`
	Prices    map[string]Price `json:"prices"`
}

type Price struct {
	Low       *float64 `json:"low"`
	Mid       *float64 `json:"mid"`
	High      *float64 `json:"high"`
	Market    *float64 `json:"market"`
	DirectLow *float64 `json:"directLow"`
}

// CardPage is one page of search results.
type CardPage struct {
	Data       []Card `json:"data"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Count      int    `json:"count"`
	TotalCount int    `json:"totalCount"`
}

// HasMore reports whether later pages exist.
func (p CardPage) HasMore() bool {
	if p.PageSize <= 0 {
		return false
	}
	return p.Page*p.PageSize < p.TotalCount
}

type cardEnvelope struct {
	Data Card `json:"data"`
}
