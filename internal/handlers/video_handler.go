package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/streamtube/backend/internal/middleware"
	"github.com/streamtube/backend/internal/models"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/response"
	"github.com/streamtube/backend/pkg/media"
)

// VideoHandler handles HTTP requests related to videos.
type VideoHandler struct {
	videoRepository   repositories.VideoRepository
	userRepository    repositories.UserRepository
	commentRepository repositories.CommentRepository
	likeRepository    repositories.LikeRepository
	media             media.Service
}

func NewVideoHandler(
	videoRepo repositories.VideoRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	likeRepo repositories.LikeRepository,
	mediaService media.Service,
) *VideoHandler {
	return &VideoHandler{
		videoRepository:   videoRepo,
		userRepository:    userRepo,
		commentRepository: commentRepo,
		likeRepository:    likeRepo,
		media:             mediaService,
	}
}

func (h *VideoHandler) RegisterVideoRoutes(g *echo.Group) {
	g.GET("/videos", h.ListVideos)
	g.POST("/videos", h.PublishVideo, middleware.StageUploads("videoFile", "thumbnail"))
	g.GET("/videos/:videoId", h.GetVideo)
	g.PATCH("/videos/:videoId", h.UpdateVideo, middleware.StageUploads("thumbnail"))
	g.DELETE("/videos/:videoId", h.DeleteVideo)
	g.PATCH("/videos/toggle/publish/:videoId", h.TogglePublish)
}

// ListVideos returns published videos, optionally filtered by search query
// and owner, sorted and paginated.
func (h *VideoHandler) ListVideos(c echo.Context) error {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	opts := repositories.ListVideosOptions{
		Query:     c.QueryParam("query"),
		SortBy:    c.QueryParam("sortBy"),
		Ascending: c.QueryParam("sortType") == "asc",
		Page:      page,
		Limit:     limit,
	}

	if userID := c.QueryParam("userId"); userID != "" {
		owner, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid userId")
		}
		opts.Owner = &owner
	}

	videos, err := h.videoRepository.ListVideos(c.Request().Context(), opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch videos").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, videos, "Videos fetched successfully")
}

// PublishVideo uploads the video file and thumbnail and creates the video
// document, published by default.
func (h *VideoHandler) PublishVideo(c echo.Context) error {
	user := middleware.ActingUser(c)

	var req models.PublishVideoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	videoPath := middleware.StagedFile(c, "videoFile")
	if videoPath == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Video file is required")
	}
	thumbnailPath := middleware.StagedFile(c, "thumbnail")
	if thumbnailPath == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Thumbnail is required")
	}

	videoFile, err := h.media.Upload(c.Request().Context(), videoPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload video").SetInternal(err)
	}
	thumbnail, err := h.media.Upload(c.Request().Context(), thumbnailPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload thumbnail").SetInternal(err)
	}

	video := &models.Video{
		Title:       req.Title,
		Description: req.Description,
		VideoFile:   models.MediaAsset{URL: videoFile.URL, PublicID: videoFile.PublicID},
		Thumbnail:   models.MediaAsset{URL: thumbnail.URL, PublicID: thumbnail.PublicID},
		Duration:    videoFile.Duration,
		IsPublished: true,
		Owner:       user.ID,
	}

	if err := h.videoRepository.CreateVideo(c.Request().Context(), video); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save video").SetInternal(err)
	}

	return response.JSON(c, http.StatusCreated, video, "Video published successfully")
}

// GetVideo increments the view count, then returns the video with its owner
// joined and records it in the viewer's watch history. The bump comes first
// so the response carries the fresh count.
func (h *VideoHandler) GetVideo(c echo.Context) error {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		return err
	}

	if err := h.videoRepository.IncrementViews(c.Request().Context(), videoID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record view").SetInternal(err)
	}

	video, err := h.videoRepository.GetVideoWithOwner(c.Request().Context(), videoID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch video").SetInternal(err)
	}

	user := middleware.ActingUser(c)
	if err := h.userRepository.AddToWatchHistory(c.Request().Context(), user.ID, videoID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record watch history").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, video, "Video fetched successfully")
}

// UpdateVideo changes title and description, with an optional replacement
// thumbnail. The old thumbnail asset is destroyed only after the document
// write succeeded.
func (h *VideoHandler) UpdateVideo(c echo.Context) error {
	user := middleware.ActingUser(c)

	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		return err
	}

	var req models.UpdateVideoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	video, err := h.videoRepository.GetVideoByID(c.Request().Context(), videoID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch video").SetInternal(err)
	}

	if video.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this video")
	}

	fields := bson.M{
		"title":       req.Title,
		"description": req.Description,
	}

	oldThumbnailID := ""
	if thumbnailPath := middleware.StagedFile(c, "thumbnail"); thumbnailPath != "" {
		thumbnail, err := h.media.Upload(c.Request().Context(), thumbnailPath)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload thumbnail").SetInternal(err)
		}
		fields["thumbnail"] = models.MediaAsset{URL: thumbnail.URL, PublicID: thumbnail.PublicID}
		oldThumbnailID = video.Thumbnail.PublicID
	}

	updated, err := h.videoRepository.UpdateVideoFields(c.Request().Context(), videoID, fields)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update video").SetInternal(err)
	}

	if oldThumbnailID != "" {
		if err := h.media.Delete(c.Request().Context(), oldThumbnailID, media.ResourceImage); err != nil {
			c.Logger().Errorf("failed to delete replaced thumbnail asset: %v", err)
		}
	}

	return response.JSON(c, http.StatusOK, updated, "Video details updated successfully")
}

// DeleteVideo removes the video document, both hosted assets and every like
// and comment referencing the video.
func (h *VideoHandler) DeleteVideo(c echo.Context) error {
	user := middleware.ActingUser(c)

	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		return err
	}

	video, err := h.videoRepository.GetVideoByID(c.Request().Context(), videoID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch video").SetInternal(err)
	}

	if video.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this video")
	}

	if err := h.videoRepository.DeleteVideo(c.Request().Context(), videoID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete video").SetInternal(err)
	}

	// Thumbnail defaults to image; the video file must pass its type.
	if err := h.media.Delete(c.Request().Context(), video.Thumbnail.PublicID, media.ResourceImage); err != nil {
		c.Logger().Errorf("failed to delete thumbnail asset: %v", err)
	}
	if err := h.media.Delete(c.Request().Context(), video.VideoFile.PublicID, media.ResourceVideo); err != nil {
		c.Logger().Errorf("failed to delete video asset: %v", err)
	}

	if err := h.likeRepository.DeleteLikesByVideo(c.Request().Context(), videoID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete video likes").SetInternal(err)
	}
	if err := h.commentRepository.DeleteCommentsByVideo(c.Request().Context(), videoID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete video comments").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, echo.Map{}, "Video deleted successfully")
}

// TogglePublish flips the publish flag.
func (h *VideoHandler) TogglePublish(c echo.Context) error {
	user := middleware.ActingUser(c)

	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		return err
	}

	video, err := h.videoRepository.GetVideoByID(c.Request().Context(), videoID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch video").SetInternal(err)
	}

	if video.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to change this video")
	}

	updated, err := h.videoRepository.UpdateVideoFields(c.Request().Context(), videoID, bson.M{
		"isPublished": !video.IsPublished,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update publish status").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, echo.Map{"isPublished": updated.IsPublished}, "Publish status updated successfully")
}
