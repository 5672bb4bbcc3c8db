package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/streamtube/backend/internal/middleware"
	"github.com/streamtube/backend/internal/models"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/response"
)

// TweetHandler handles HTTP requests related to tweets.
type TweetHandler struct {
	tweetRepository repositories.TweetRepository
}

func NewTweetHandler(tweetRepo repositories.TweetRepository) *TweetHandler {
	return &TweetHandler{tweetRepository: tweetRepo}
}

func (h *TweetHandler) RegisterTweetRoutes(g *echo.Group) {
	g.POST("/tweets", h.CreateTweet)
	g.GET("/tweets/user/:userId", h.ListUserTweets)
	g.PATCH("/tweets/:tweetId", h.UpdateTweet)
	g.DELETE("/tweets/:tweetId", h.DeleteTweet)
}

// CreateTweet creates a tweet owned by the acting user.
func (h *TweetHandler) CreateTweet(c echo.Context) error {
	user := middleware.ActingUser(c)

	var req models.TweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tweet := &models.Tweet{
		Content: req.Content,
		Owner:   user.ID,
	}

	if err := h.tweetRepository.CreateTweet(c.Request().Context(), tweet); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create tweet").SetInternal(err)
	}

	return response.JSON(c, http.StatusCreated, tweet, "Tweet created successfully")
}

// ListUserTweets returns a user's tweets with owner details and like counts.
func (h *TweetHandler) ListUserTweets(c echo.Context) error {
	userID, err := objectIDParam(c, "userId")
	if err != nil {
		return err
	}

	tweets, err := h.tweetRepository.ListTweetsByOwner(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch tweets").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, tweets, "Tweets fetched successfully")
}

// UpdateTweet changes a tweet's content and returns the updated document.
func (h *TweetHandler) UpdateTweet(c echo.Context) error {
	user := middleware.ActingUser(c)

	tweetID, err := objectIDParam(c, "tweetId")
	if err != nil {
		return err
	}

	var req models.TweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tweet, err := h.tweetRepository.GetTweetByID(c.Request().Context(), tweetID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Tweet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch tweet").SetInternal(err)
	}

	if tweet.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this tweet")
	}

	updated, err := h.tweetRepository.UpdateTweetContent(c.Request().Context(), tweetID, req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update tweet").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, updated, "Tweet updated successfully")
}

// DeleteTweet removes a tweet owned by the acting user.
func (h *TweetHandler) DeleteTweet(c echo.Context) error {
	user := middleware.ActingUser(c)

	tweetID, err := objectIDParam(c, "tweetId")
	if err != nil {
		return err
	}

	tweet, err := h.tweetRepository.GetTweetByID(c.Request().Context(), tweetID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Tweet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch tweet").SetInternal(err)
	}

	if tweet.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this tweet")
	}

	if err := h.tweetRepository.DeleteTweet(c.Request().Context(), tweetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete tweet").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, echo.Map{}, "Tweet deleted successfully")
}
