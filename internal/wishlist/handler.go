package wishlist

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cardhub/internal/auth"
	"cardhub/internal/sync"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/wishlist", h.list)
	rg.POST("/wishlist", h.add)
	rg.DELETE("/wishlist/:card_id", h.remove)
}

type addReq struct {
	CardID string `json:"card_id"`
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Repo.ListWithCards(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
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
	cardID := strings.TrimSpace(req.CardID)
	if cardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_id required"})
		return
	}

	if err := h.Repo.Add(c.Request.Context(), claims.UserID, cardID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	ev := sync.NewEvent(sync.EventWishlistAdd, claims.UserID)
	ev.CardID = cardID
	go h.Hub.Publish(ev)

	c.JSON(http.StatusOK, gin.H{"card_id": cardID, "wishlisted": true})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cardID := c.Param("card_id")

	ok, err := h.Repo.Remove(c.Request.Context(), claims.UserID, cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	ev := sync.NewEvent(sync.EventWishlistRemove, claims.UserID)
	ev.CardID = cardID
	go h.Hub.Publish(ev)

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
