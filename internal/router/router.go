package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/streamtube/backend/internal/auth"
	"github.com/streamtube/backend/internal/handlers"
	"github.com/streamtube/backend/internal/middleware"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/response"
	"github.com/streamtube/backend/pkg/config"
	"github.com/streamtube/backend/pkg/media"
)

// SetupMiddleware configures global Echo middleware and the error boundary.
func SetupMiddleware(e *echo.Echo, cfg *config.Config, log *logrus.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(log)
}

// SetupRoutes wires repositories, handlers and middleware onto the Echo
// instance.
func SetupRoutes(e *echo.Echo, db *config.DB, mediaService media.Service, cfg *config.Config) {
	tokens := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userRepo := repositories.NewMongoUserRepository(db.Database)
	videoRepo := repositories.NewMongoVideoRepository(db.Database)
	commentRepo := repositories.NewMongoCommentRepository(db.Database)
	likeRepo := repositories.NewMongoLikeRepository(db.Database)
	tweetRepo := repositories.NewMongoTweetRepository(db.Database)
	subscriptionRepo := repositories.NewMongoSubscriptionRepository(db.Database)
	playlistRepo := repositories.NewMongoPlaylistRepository(db.Database)

	e.GET("/healthcheck", handlers.HealthCheck)

	userHandler := handlers.NewUserHandler(userRepo, tokens, mediaService)

	// Session-less routes.
	public := e.Group("/api/v1/users")
	userHandler.RegisterPublicRoutes(public)

	// Everything else requires a session.
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuth(tokens, userRepo))

	userHandler.RegisterProtectedRoutes(api.Group("/users"))

	videoHandler := handlers.NewVideoHandler(videoRepo, userRepo, commentRepo, likeRepo, mediaService)
	videoHandler.RegisterVideoRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, videoRepo, likeRepo)
	commentHandler.RegisterCommentRoutes(api)

	likeHandler := handlers.NewLikeHandler(likeRepo, videoRepo, commentRepo, tweetRepo)
	likeHandler.RegisterLikeRoutes(api)

	tweetHandler := handlers.NewTweetHandler(tweetRepo)
	tweetHandler.RegisterTweetRoutes(api)

	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionRepo, userRepo)
	subscriptionHandler.RegisterSubscriptionRoutes(api)

	playlistHandler := handlers.NewPlaylistHandler(playlistRepo, videoRepo)
	playlistHandler.RegisterPlaylistRoutes(api)
}
