package cards

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardhub/internal/sync"
	"cardhub/pkg/models"
)

type Handler struct {
	Repo   *Repo
	Logger *zap.Logger
}

func NewHandler(repo *Repo, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Repo: repo, Logger: logger.Named("cards")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cards", h.list)
	rg.GET("/cards/stream", h.stream)
	rg.GET("/cards/:id", h.getOne)
}

// list serves stored cards for a character without touching the catalogs.
func (h *Handler) list(c *gin.Context) {
	character := c.Query("character")
	if character == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "character required"})
		return
	}
	order, ok := ParseSortOrder(c.Query("sort"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort order"})
		return
	}

	items, err := h.Repo.ListByCharacter(c.Request.Context(), character, c.Query("set"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	Sort(items, order)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) getOne(c *gin.Context) {
	card, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

type streamMessage struct {
	Items []models.Card `json:"items"`
	Error string        `json:"error,omitempty"`
}

// stream pushes a character's stored cards every time a search or prefetch
// writes new ones.
func (h *Handler) stream(c *gin.Context) {
	character := c.Query("character")
	if character == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "character required"})
		return
	}

	sync.Stream(c, h.Logger, func(ctx context.Context) <-chan streamMessage {
		out := make(chan streamMessage)
		go func() {
			defer close(out)
			for snap := range h.Repo.Watch(ctx, character) {
				msg := streamMessage{Items: snap.Value}
				if snap.Err != nil {
					msg = streamMessage{Error: "cards unavailable"}
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	})
}
