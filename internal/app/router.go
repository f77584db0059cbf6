package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cardhub/internal/aggregator"
	"cardhub/internal/auth"
	"cardhub/internal/cards"
	"cardhub/internal/characters"
	"cardhub/internal/collection"
	"cardhub/internal/completion"
	"cardhub/internal/sync"
	"cardhub/internal/wishlist"
)

// Router mounts every HTTP route on a new gin engine.
func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies(a.Config.HTTP.TrustedProxies)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", a.ready)

	public := router.Group("/")
	public.Use(auth.OptionalAuth(a.Tokens))
	public.GET("/ws", sync.WSHandler(a.Hub))

	authHandler := auth.NewHandler(a.Users, a.Tokens)
	authHandler.RegisterRoutes(router.Group("/auth"))

	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(a.Tokens, a.Users))
	authHandler.RegisterUserRoutes(protected)

	characters.NewHandler(a.Characters).RegisterRoutes(public, protected)
	cards.NewHandler(a.Cards, a.Logger).RegisterRoutes(public)
	aggregator.NewHandler(a.Aggregator, a.Hub).RegisterRoutes(public)

	collHandler := collection.NewHandler(a.Collection, a.Hub, a.Logger)
	if a.Config.Aggregator.AutoFavoriteOnOwn {
		collHandler.AutoFavorite = a.AutoFavorite()
	}
	collHandler.RegisterRoutes(protected)

	completion.NewHandler(a.Completion, a.Hub).RegisterRoutes(protected)
	wishlist.NewHandler(a.Wishlist, a.Hub).RegisterRoutes(protected)

	return router
}

func (a *App) ready(c *gin.Context) {
	stats := a.Hub.Stats()
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := a.DB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"db_error":   err.Error(),
			"ws_clients": stats.WSClients,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"db":         "ok",
		"ws_clients": stats.WSClients,
	})
}
