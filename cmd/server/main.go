package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/router"
	"github.com/streamtube/backend/pkg/config"
	"github.com/streamtube/backend/pkg/media"
)

func main() {
	log := logrus.New()

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repositories.EnsureIndexes(ctx, db.Database); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	mediaService, err := media.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryKey, cfg.CloudinarySecret)
	if err != nil {
		log.Fatalf("Failed to initialize media service: %v", err)
	}

	e := echo.New()
	e.HideBanner = true

	router.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, db, mediaService, cfg)

	log.WithField("port", cfg.Port).Info("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
