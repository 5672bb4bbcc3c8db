package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/streamtube/backend/internal/middleware"
	"github.com/streamtube/backend/internal/models"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/response"
)

// LikeHandler handles HTTP requests related to likes.
type LikeHandler struct {
	likeRepository    repositories.LikeRepository
	videoRepository   repositories.VideoRepository
	commentRepository repositories.CommentRepository
	tweetRepository   repositories.TweetRepository
}

func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	videoRepo repositories.VideoRepository,
	commentRepo repositories.CommentRepository,
	tweetRepo repositories.TweetRepository,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:    likeRepo,
		videoRepository:   videoRepo,
		commentRepository: commentRepo,
		tweetRepository:   tweetRepo,
	}
}

func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes/toggle/v/:videoId", h.ToggleVideoLike)
	g.POST("/likes/toggle/c/:commentId", h.ToggleCommentLike)
	g.POST("/likes/toggle/t/:tweetId", h.ToggleTweetLike)
	g.GET("/likes/videos", h.ListLikedVideos)
}

// ToggleVideoLike flips the acting user's like on a video.
func (h *LikeHandler) ToggleVideoLike(c echo.Context) error {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		return err
	}
	if _, err := h.videoRepository.GetVideoByID(c.Request().Context(), videoID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch video").SetInternal(err)
	}
	return h.toggle(c, models.LikeTargetVideo, videoID)
}

// ToggleCommentLike flips the acting user's like on a comment.
func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	commentID, err := objectIDParam(c, "commentId")
	if err != nil {
		return err
	}
	if _, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comment").SetInternal(err)
	}
	return h.toggle(c, models.LikeTargetComment, commentID)
}

// ToggleTweetLike flips the acting user's like on a tweet.
func (h *LikeHandler) ToggleTweetLike(c echo.Context) error {
	tweetID, err := objectIDParam(c, "tweetId")
	if err != nil {
		return err
	}
	if _, err := h.tweetRepository.GetTweetByID(c.Request().Context(), tweetID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Tweet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch tweet").SetInternal(err)
	}
	return h.toggle(c, models.LikeTargetTweet, tweetID)
}

// ListLikedVideos returns the videos the acting user has liked.
func (h *LikeHandler) ListLikedVideos(c echo.Context) error {
	user := middleware.ActingUser(c)

	videos, err := h.likeRepository.ListLikedVideos(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch liked videos").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, videos, "Liked videos fetched successfully")
}

func (h *LikeHandler) toggle(c echo.Context, target models.LikeTarget, targetID primitive.ObjectID) error {
	user := middleware.ActingUser(c)

	liked, err := h.likeRepository.Toggle(c.Request().Context(), target, targetID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle like").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, echo.Map{"isLiked": liked}, "Like toggled successfully")
}
