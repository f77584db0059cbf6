package main

import (
	"flag"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardhub/internal/mirror"
	"cardhub/pkg/logging"
)

// Serves data/mirror.json as both catalogs. Point the api-server at it with
// catalogs.primary.base_url=http://localhost:9000/primary and
// catalogs.secondary.base_url=http://localhost:9000/secondary.
func main() {
	addr := flag.String("addr", ":9000", "listen address")
	dataPath := flag.String("data", "data/mirror.json", "fixture file")
	flag.Parse()

	logger := logging.MustNew(logging.Config{Level: "info", Development: true})
	defer func() { _ = logger.Sync() }()

	fx, err := mirror.Load(*dataPath)
	if err != nil {
		logger.Fatal("load fixture", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	(&mirror.Server{Fixture: fx}).RegisterRoutes(r)

	logger.Info("mirror-server listening",
		zap.String("addr", *addr),
		zap.Int("primary_cards", len(fx.Primary)),
		zap.Int("secondary_languages", len(fx.Secondary)))
	if err := r.Run(*addr); err != nil {
		logger.Fatal("mirror-server stopped", zap.Error(err))
	}
}
