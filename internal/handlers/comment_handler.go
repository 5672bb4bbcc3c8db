package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/streamtube/backend/internal/middleware"
	"github.com/streamtube/backend/internal/models"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/response"
)

// CommentHandler handles HTTP requests related to comments.
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	videoRepository   repositories.VideoRepository
	likeRepository    repositories.LikeRepository
}

func NewCommentHandler(commentRepo repositories.CommentRepository, videoRepo repositories.VideoRepository, likeRepo repositories.LikeRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		videoRepository:   videoRepo,
		likeRepository:    likeRepo,
	}
}

func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/comments/:videoId", h.ListComments)
	g.POST("/comments/:videoId", h.AddComment)
	g.PATCH("/comments/c/:commentId", h.UpdateComment)
	g.DELETE("/comments/c/:commentId", h.DeleteComment)
}

// ListComments returns the paginated comments of a video with like counts
// and the viewer's like state.
func (h *CommentHandler) ListComments(c echo.Context) error {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		return err
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	viewer := middleware.ActingUser(c)
	comments, err := h.commentRepository.ListCommentsByVideo(c.Request().Context(), videoID, viewer.ID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comments").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, comments, "Comments fetched successfully")
}

// AddComment creates a comment on an existing video.
func (h *CommentHandler) AddComment(c echo.Context) error {
	user := middleware.ActingUser(c)

	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		return err
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.videoRepository.GetVideoByID(c.Request().Context(), videoID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch video").SetInternal(err)
	}

	comment := &models.Comment{
		Content: req.Content,
		Video:   videoID,
		Owner:   user.ID,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add comment").SetInternal(err)
	}

	return response.JSON(c, http.StatusCreated, comment, "Comment added successfully")
}

// UpdateComment changes a comment's content and returns the updated document.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	user := middleware.ActingUser(c)

	commentID, err := objectIDParam(c, "commentId")
	if err != nil {
		return err
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comment").SetInternal(err)
	}

	if comment.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	updated, err := h.commentRepository.UpdateCommentContent(c.Request().Context(), commentID, req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update comment").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, updated, "Comment updated successfully")
}

// DeleteComment removes a comment and the acting user's own like on it.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user := middleware.ActingUser(c)

	commentID, err := objectIDParam(c, "commentId")
	if err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comment").SetInternal(err)
	}

	if comment.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(c.Request().Context(), commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete comment").SetInternal(err)
	}

	if err := h.likeRepository.DeleteOwnLikeOnComment(c.Request().Context(), commentID, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete comment like").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, echo.Map{"deleted": commentID}, "Comment deleted successfully")
}
