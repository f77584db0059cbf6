package cards

import (
	"sort"
	"strconv"
	"strings"

	"cardhub/pkg/models"
)

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortSet       SortOrder = "set"
	SortPriceLow  SortOrder = "price_low"
	SortPriceHigh SortOrder = "price_high"
	SortRarity    SortOrder = "rarity"
	SortNumber    SortOrder = "number"
)

// ParseSortOrder returns ok=false for unknown values.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortSet, SortPriceLow, SortPriceHigh, SortRarity, SortNumber:
		return o, true
	default:
		return SortNone, false
	}
}

// rarityRank orders rarities from most to least common. Unlisted rarities
// sort last.
var rarityRank = map[string]int{
	"common":                    0,
	"uncommon":                  1,
	"rare":                      2,
	"rare holo":                 3,
	"double rare":               4,
	"rare holo ex":              4,
	"rare holo gx":              4,
	"rare holo v":               4,
	"rare holo vmax":            5,
	"rare ultra":                6,
	"ultra rare":                6,
	"illustration rare":         7,
	"special illustration rare": 8,
	"rare secret":               9,
	"hyper rare":                10,
	"rare rainbow":              10,
	"promo":                     11,
}

// Sort orders cards in place. Cards without a price sort after priced ones
// in both price orders.
func Sort(cs []models.Card, order SortOrder) {
	switch order {
	case SortSet:
		sort.SliceStable(cs, func(i, j int) bool {
			if cs[i].Set.Name != cs[j].Set.Name {
				return cs[i].Set.Name < cs[j].Set.Name
			}
			return numberLess(cs[i].Number, cs[j].Number)
		})
	case SortPriceLow, SortPriceHigh:
		sort.SliceStable(cs, func(i, j int) bool {
			pi, iok := cs[i].MarketPrice()
			pj, jok := cs[j].MarketPrice()
			if iok != jok {
				return iok
			}
			if order == SortPriceLow {
				return pi < pj
			}
			return pi > pj
		})
	case SortRarity:
		sort.SliceStable(cs, func(i, j int) bool {
			return rank(cs[i].Rarity) < rank(cs[j].Rarity)
		})
	case SortNumber:
		sort.SliceStable(cs, func(i, j int) bool {
			return numberLess(cs[i].Number, cs[j].Number)
		})
	}
}

func rank(rarity string) int {
	if r, ok := rarityRank[strings.ToLower(strings.TrimSpace(rarity))]; ok {
		return r
	}
	return len(rarityRank)
}

// numberLess compares in-set numbers numerically when both parse, so "2"
// sorts before "10"; otherwise lexically.
func numberLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	if (errA == nil) != (errB == nil) {
		return errA == nil
	}
	return a < b
}
