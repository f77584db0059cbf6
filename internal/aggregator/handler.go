package aggregator

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardhub/internal/auth"
	"cardhub/internal/cards"
	"cardhub/internal/sync"
)

type Handler struct {
	Service *Service
	Hub     *sync.Hub
}

func NewHandler(svc *Service, hub *sync.Hub) *Handler {
	return &Handler{Service: svc, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cards/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	order, ok := cards.ParseSortOrder(c.Query("sort"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort order"})
		return
	}

	page := 0
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = n
	}

	req := Request{
		Character: name,
		Language:  c.DefaultQuery("lang", "en"),
		SetID:     strings.TrimSpace(c.Query("set")),
		Session:   c.Query("session"),
		Page:      page,
	}
	if claims := auth.MustGetClaims(c); claims != nil && req.Session == "" {
		req.Session = claims.SessionID()
	}

	rep, err := h.Service.Search(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.JSON(http.StatusConflict, gin.H{"error": "search superseded"})
			return
		}
		h.Service.logger.Error("search failed", zap.String("character", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	if rep.Degraded {
		if len(rep.Cached) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "card catalogs unavailable",
				"kind":      rep.FailureKind,
				"retryable": true,
			})
			return
		}
		cards.Sort(rep.Cached, order)
		c.JSON(http.StatusOK, gin.H{
			"character": rep.Character,
			"total":     len(rep.Cached),
			"items":     rep.Cached,
			"degraded":  true,
			"kind":      rep.FailureKind,
			"outcomes":  rep.Outcomes,
		})
		return
	}

	cards.Sort(rep.Cards, order)

	ev := sync.NewEvent(sync.EventCardsRefreshed, "")
	ev.Character = rep.Character
	ev.Count = len(rep.Cards)
	go h.Hub.Publish(ev)

	c.JSON(http.StatusOK, gin.H{
		"character":     rep.Character,
		"species_index": rep.SpeciesIndex,
		"total":         len(rep.Cards),
		"has_more":      rep.HasMore,
		"next_page":     rep.NextPage,
		"items":         rep.Cards,
		"outcomes":      rep.Outcomes,
	})
}
