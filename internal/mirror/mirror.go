// Package mirror serves a fixture file in the wire shapes of both card
// catalogs, for local development and offline demos.
package mirror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cardhub/internal/tcgapi"
	"cardhub/internal/tcgdex"
)

// Fixture is the on-disk layout: primary records, and secondary records
// keyed by language.
type Fixture struct {
	Primary   []tcgapi.Card            `json:"primary"`
	Secondary map[string][]tcgdex.Card `json:"secondary"`
}

func Load(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("fixture %s: invalid json: %w", path, err)
	}
	return &f, nil
}

type Server struct {
	Fixture *Fixture
}

// RegisterRoutes mounts the primary catalog under /primary and the
// secondary one under /secondary.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	p := r.Group("/primary")
	p.GET("/cards", s.primarySearch)
	p.GET("/cards/:id", s.primaryCard)

	sec := r.Group("/secondary")
	sec.GET("/:lang/cards", s.secondaryList)
	sec.GET("/:lang/cards/:id", s.secondaryCard)
}

var (
	nameTerm = regexp.MustCompile(`name:"((?:[^"\\]|\\.)*)"`)
	setTerm  = regexp.MustCompile(`set\.id:(\S+)`)
)

type primaryQuery struct {
	name   string
	prefix bool
	setID  string
}

func parsePrimaryQuery(q string) primaryQuery {
	var pq primaryQuery
	if m := nameTerm.FindStringSubmatch(q); m != nil {
		pq.name = strings.ReplaceAll(m[1], `\"`, `"`)
		if strings.HasSuffix(pq.name, "*") {
			pq.prefix = true
			pq.name = strings.TrimSuffix(pq.name, "*")
		}
	}
	if m := setTerm.FindStringSubmatch(q); m != nil {
		pq.setID = m[1]
	}
	return pq
}

func (pq primaryQuery) match(c tcgapi.Card) bool {
	if pq.setID != "" && (c.Set == nil || c.Set.ID != pq.setID) {
		return false
	}
	if pq.prefix {
		return strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(pq.name))
	}
	return strings.EqualFold(c.Name, pq.name)
}

func (s *Server) primarySearch(c *gin.Context) {
	pq := parsePrimaryQuery(c.Query("q"))
	page := atoiDefault(c.Query("page"), 1)
	size := atoiDefault(c.Query("pageSize"), tcgapi.DefaultPageSize)

	var hits []tcgapi.Card
	for _, card := range s.Fixture.Primary {
		if pq.match(card) {
			hits = append(hits, card)
		}
	}

	start := (page - 1) * size
	if start > len(hits) {
		start = len(hits)
	}
	end := start + size
	if end > len(hits) {
		end = len(hits)
	}
	data := hits[start:end]
	if data == nil {
		data = []tcgapi.Card{}
	}

	c.JSON(http.StatusOK, tcgapi.CardPage{
		Data:       data,
		Page:       page,
		PageSize:   size,
		Count:      len(data),
		TotalCount: len(hits),
	})
}

func (s *Server) primaryCard(c *gin.Context) {
	id := c.Param("id")
	for _, card := range s.Fixture.Primary {
		if card.ID == id {
			c.JSON(http.StatusOK, gin.H{"data": card})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

// secondaryList returns compact records: set detail is stripped so clients
// exercise their detail backfill.
func (s *Server) secondaryList(c *gin.Context) {
	all := s.Fixture.Secondary[c.Param("lang")]
	dexID, hasDex := c.GetQuery("dexId")
	name := c.Query("name")

	out := []tcgdex.Card{}
	for _, card := range all {
		switch {
		case hasDex:
			if !containsInt(card.DexID, atoiDefault(dexID, -1)) {
				continue
			}
		case name != "":
			if !strings.Contains(strings.ToLower(card.Name), strings.ToLower(name)) {
				continue
			}
		}
		compact := tcgdex.Card{ID: card.ID, LocalID: card.LocalID, Name: card.Name, Image: card.Image}
		out = append(out, compact)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) secondaryCard(c *gin.Context) {
	id := c.Param("id")
	for _, card := range s.Fixture.Secondary[c.Param("lang")] {
		if card.ID == id {
			c.JSON(http.StatusOK, card)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
