package completion

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardhub/internal/auth"
	"cardhub/internal/sync"
	"cardhub/pkg/models"
)

type Handler struct {
	Service *Service
	Hub     *sync.Hub
}

func NewHandler(svc *Service, hub *sync.Hub) *Handler {
	return &Handler{Service: svc, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/favorites", h.list)
	rg.POST("/favorites", h.add)
	rg.DELETE("/favorites/:name", h.remove)
	rg.GET("/favorites/stream", h.stream)
	rg.GET("/collection/completion", h.collection)
}

type characterView struct {
	models.CharacterCompletion
	Percentage float64 `json:"percentage"`
}

type streamMessage struct {
	Items []characterView `json:"items,omitempty"`
	Error string          `json:"error,omitempty"`
}

func views(items []models.CharacterCompletion) []characterView {
	out := make([]characterView, len(items))
	for i, it := range items {
		out[i] = characterView{CharacterCompletion: it, Percentage: it.Percentage()}
	}
	return out
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Service.Favorites(c.Request.Context(), claims.UserID)
	if err != nil {
		h.Service.logger.Error("favorites completion", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": views(items)})
}

type addReq struct {
	Name string `json:"name"`
}

func (h *Handler) add(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	added, err := h.Service.AddFavorite(c.Request.Context(), claims.UserID, name)
	if err != nil {
		h.Service.logger.Error("add favorite", zap.String("character", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	if added {
		ev := sync.NewEvent(sync.EventFavoriteAdd, claims.UserID)
		ev.Character = name
		go h.Hub.Publish(ev)
	}

	c.JSON(http.StatusOK, gin.H{"name": name, "favorite": true, "added": added})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	name := c.Param("name")

	ok, err := h.Service.RemoveFavorite(c.Request.Context(), claims.UserID, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	ev := sync.NewEvent(sync.EventFavoriteRemove, claims.UserID)
	ev.Character = name
	go h.Hub.Publish(ev)

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// stream pushes the favorites list over a websocket every time it changes.
func (h *Handler) stream(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sync.Stream(c, h.Service.logger, func(ctx context.Context) <-chan streamMessage {
		out := make(chan streamMessage)
		go func() {
			defer close(out)
			for snap := range h.Service.WatchFavorites(ctx, claims.UserID) {
				msg := streamMessage{Items: views(snap.Value)}
				if snap.Err != nil {
					msg = streamMessage{Error: "completion unavailable"}
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

func (h *Handler) collection(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cc, err := h.Service.Collection(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "completion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_cards": cc.TotalCards,
		"owned_cards": cc.OwnedCards,
		"percentage":  cc.Percentage(),
	})
}
