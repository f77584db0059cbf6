package collection

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardhub/internal/auth"
	"cardhub/internal/sync"
	"cardhub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
	// AutoFavorite, when set, runs after every successful mark-owned.
	AutoFavorite *AutoFavorite
	Logger       *zap.Logger
}

func NewHandler(repo *Repo, hub *sync.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Repo: repo, Hub: hub, Logger: logger.Named("collection")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/collection", h.list)
	rg.POST("/collection", h.upsert)
	rg.GET("/collection/stream", h.stream)
	rg.GET("/collection/:card_id", h.getOne)
	rg.DELETE("/collection/:card_id", h.remove)
	rg.PUT("/collection/:card_id/owned", h.markOwned)
	rg.DELETE("/collection/:card_id/owned", h.markMissing)
}

type upsertReq struct {
	CardID         string   `json:"card_id"`
	Owned          *bool    `json:"owned"`
	Condition      string   `json:"condition"`
	Graded         bool     `json:"graded"`
	GradingCompany string   `json:"grading_company"`
	Grade          string   `json:"grade"`
	PurchasePrice  *float64 `json:"purchase_price"`
	CurrentPrice   *float64 `json:"current_price"`
}

func (h *Handler) upsert(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cardID := strings.TrimSpace(req.CardID)
	if cardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_id required"})
		return
	}
	if (req.PurchasePrice != nil && *req.PurchasePrice < 0) || (req.CurrentPrice != nil && *req.CurrentPrice < 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prices must be >= 0"})
		return
	}

	owned := true
	if req.Owned != nil {
		owned = *req.Owned
	}
	rec := models.OwnershipRecord{
		UserID:         claims.UserID,
		CardID:         cardID,
		Owned:          owned,
		Condition:      models.ParseCondition(req.Condition),
		Graded:         req.Graded,
		GradingCompany: strings.TrimSpace(req.GradingCompany),
		Grade:          strings.TrimSpace(req.Grade),
		PurchasePrice:  req.PurchasePrice,
		CurrentPrice:   req.CurrentPrice,
	}
	if !rec.Graded {
		rec.GradingCompany, rec.Grade = "", ""
	}

	if err := h.Repo.Upsert(c.Request.Context(), rec); err != nil {
		h.Logger.Error("upsert ownership", zap.String("card_id", cardID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	h.respondSaved(c, claims.UserID, cardID, sync.EventCollectionUpdate)
}

type markOwnedReq struct {
	Character string `json:"character"`
}

func (h *Handler) markOwned(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cardID := strings.TrimSpace(c.Param("card_id"))

	var req markOwnedReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}

	ctx := c.Request.Context()
	if err := h.Repo.MarkOwned(ctx, claims.UserID, cardID); err != nil {
		h.Logger.Error("mark owned", zap.String("card_id", cardID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	if h.AutoFavorite != nil {
		h.autoFavorite(ctx, claims.UserID, cardID, strings.TrimSpace(req.Character))
	}
	h.respondSaved(c, claims.UserID, cardID, sync.EventCollectionOwned)
}

func (h *Handler) markMissing(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cardID := strings.TrimSpace(c.Param("card_id"))

	if err := h.Repo.MarkMissing(c.Request.Context(), claims.UserID, cardID); err != nil {
		h.Logger.Error("mark missing", zap.String("card_id", cardID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	h.respondSaved(c, claims.UserID, cardID, sync.EventCollectionMissing)
}

// autoFavorite failures are logged only; the ownership write already
// succeeded.
func (h *Handler) autoFavorite(ctx context.Context, userID, cardID, character string) {
	name, err := h.AutoFavorite.Apply(ctx, userID, cardID, character)
	if err != nil {
		h.Logger.Warn("auto favorite failed", zap.String("card_id", cardID), zap.Error(err))
		return
	}
	if name != "" {
		ev := sync.NewEvent(sync.EventFavoriteAdd, userID)
		ev.Character = name
		h.Hub.Publish(ev)
	}
}

func (h *Handler) respondSaved(c *gin.Context, userID, cardID, eventType string) {
	saved, err := h.Repo.Get(c.Request.Context(), userID, cardID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	ev := sync.NewEvent(eventType, userID)
	ev.CardID = cardID
	ev.Owned = &saved.Owned
	go h.Hub.Publish(ev)

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p := ListParams{
		Limit:  parseInt(c.Query("limit"), 50),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if v := strings.TrimSpace(c.Query("owned")); v != "" {
		owned, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owned must be true or false"})
			return
		}
		p.Owned = &owned
	}

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, p)
	if err != nil {
		h.Logger.Error("list collection", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"limit":    p.Limit,
		"offset":   p.Offset,
		"has_more": p.Offset+len(items) < total,
		"items":    items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rec, err := h.Repo.Get(c.Request.Context(), claims.UserID, c.Param("card_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cardID := c.Param("card_id")

	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	ev := sync.NewEvent(sync.EventCollectionDelete, claims.UserID)
	ev.CardID = cardID
	go h.Hub.Publish(ev)

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

type streamMessage struct {
	Items []models.CollectionEntry `json:"items"`
	Error string                   `json:"error,omitempty"`
}

// stream pushes the owned entries over a websocket every time they change.
func (h *Handler) stream(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sync.Stream(c, h.Logger, func(ctx context.Context) <-chan streamMessage {
		out := make(chan streamMessage)
		go func() {
			defer close(out)
			for snap := range h.Repo.Watch(ctx, claims.UserID) {
				msg := streamMessage{Items: snap.Value}
				if snap.Err != nil {
					msg = streamMessage{Error: "collection unavailable"}
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
