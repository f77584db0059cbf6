package characters

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cardhub/internal/auth"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes mounts the public roster listing and the per-user listing
// that carries favorite flags.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/characters", h.list)
	public.GET("/characters/:name", h.getOne)
	protected.GET("/characters", h.list)
}

func (h *Handler) list(c *gin.Context) {
	p := SearchParams{Query: c.Query("q")}
	if claims := auth.MustGetClaims(c); claims != nil {
		p.UserID = claims.UserID
		p.FavoritesOnly = strings.EqualFold(c.Query("favorites"), "true")
	}

	items, err := h.Repo.List(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) getOne(c *gin.Context) {
	ch, err := h.Repo.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, ch)
}
