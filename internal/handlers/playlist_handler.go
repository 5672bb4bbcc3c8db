package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/streamtube/backend/internal/middleware"
	"github.com/streamtube/backend/internal/models"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/response"
)

// PlaylistHandler handles HTTP requests related to playlists.
type PlaylistHandler struct {
	playlistRepository repositories.PlaylistRepository
	videoRepository    repositories.VideoRepository
}

func NewPlaylistHandler(playlistRepo repositories.PlaylistRepository, videoRepo repositories.VideoRepository) *PlaylistHandler {
	return &PlaylistHandler{
		playlistRepository: playlistRepo,
		videoRepository:    videoRepo,
	}
}

func (h *PlaylistHandler) RegisterPlaylistRoutes(g *echo.Group) {
	g.POST("/playlists", h.CreatePlaylist)
	g.GET("/playlists/user/:userId", h.ListUserPlaylists)
	g.GET("/playlists/:playlistId", h.GetPlaylist)
	g.PATCH("/playlists/:playlistId", h.UpdatePlaylist)
	g.DELETE("/playlists/:playlistId", h.DeletePlaylist)
	g.PATCH("/playlists/add/:videoId/:playlistId", h.AddVideo)
	g.PATCH("/playlists/remove/:videoId/:playlistId", h.RemoveVideo)
}

// CreatePlaylist creates an empty playlist owned by the acting user.
func (h *PlaylistHandler) CreatePlaylist(c echo.Context) error {
	user := middleware.ActingUser(c)

	var req models.PlaylistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	playlist := &models.Playlist{
		Name:        req.Name,
		Description: req.Description,
		Owner:       user.ID,
	}

	if err := h.playlistRepository.CreatePlaylist(c.Request().Context(), playlist); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create playlist").SetInternal(err)
	}

	return response.JSON(c, http.StatusCreated, playlist, "Playlist created successfully")
}

// ListUserPlaylists returns a user's playlists with video counts.
func (h *PlaylistHandler) ListUserPlaylists(c echo.Context) error {
	userID, err := objectIDParam(c, "userId")
	if err != nil {
		return err
	}

	playlists, err := h.playlistRepository.ListPlaylistsByOwner(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch playlists").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, playlists, "Playlists fetched successfully")
}

// GetPlaylist returns the detailed playlist view with owner and videos
// joined.
func (h *PlaylistHandler) GetPlaylist(c echo.Context) error {
	playlistID, err := objectIDParam(c, "playlistId")
	if err != nil {
		return err
	}

	playlist, err := h.playlistRepository.GetPlaylistDetailed(c.Request().Context(), playlistID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Playlist not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch playlist").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, playlist, "Playlist fetched successfully")
}

// UpdatePlaylist changes name and description.
func (h *PlaylistHandler) UpdatePlaylist(c echo.Context) error {
	playlistID, err := objectIDParam(c, "playlistId")
	if err != nil {
		return err
	}

	var req models.PlaylistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authorizeOwner(c, playlistID); err != nil {
		return err
	}

	updated, err := h.playlistRepository.UpdatePlaylist(c.Request().Context(), playlistID, req.Name, req.Description)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update playlist").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, updated, "Playlist updated successfully")
}

// DeletePlaylist removes a playlist owned by the acting user.
func (h *PlaylistHandler) DeletePlaylist(c echo.Context) error {
	playlistID, err := objectIDParam(c, "playlistId")
	if err != nil {
		return err
	}

	if err := h.authorizeOwner(c, playlistID); err != nil {
		return err
	}

	if err := h.playlistRepository.DeletePlaylist(c.Request().Context(), playlistID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete playlist").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, echo.Map{}, "Playlist deleted successfully")
}

// AddVideo appends an existing video to the playlist; already-present videos
// are not duplicated.
func (h *PlaylistHandler) AddVideo(c echo.Context) error {
	playlistID, videoID, err := h.playlistAndVideo(c)
	if err != nil {
		return err
	}

	if _, err := h.videoRepository.GetVideoByID(c.Request().Context(), videoID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch video").SetInternal(err)
	}

	if err := h.authorizeOwner(c, playlistID); err != nil {
		return err
	}

	updated, err := h.playlistRepository.AddVideo(c.Request().Context(), playlistID, videoID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add video to playlist").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, updated, "Video added to playlist successfully")
}

// RemoveVideo pulls a video from the playlist, leaving the order of the
// remaining entries intact.
func (h *PlaylistHandler) RemoveVideo(c echo.Context) error {
	playlistID, videoID, err := h.playlistAndVideo(c)
	if err != nil {
		return err
	}

	if err := h.authorizeOwner(c, playlistID); err != nil {
		return err
	}

	updated, err := h.playlistRepository.RemoveVideo(c.Request().Context(), playlistID, videoID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove video from playlist").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, updated, "Video removed from playlist successfully")
}

func (h *PlaylistHandler) playlistAndVideo(c echo.Context) (primitive.ObjectID, primitive.ObjectID, error) {
	playlistID, err := objectIDParam(c, "playlistId")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return playlistID, videoID, nil
}

func (h *PlaylistHandler) authorizeOwner(c echo.Context, playlistID primitive.ObjectID) error {
	user := middleware.ActingUser(c)

	playlist, err := h.playlistRepository.GetPlaylistByID(c.Request().Context(), playlistID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Playlist not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch playlist").SetInternal(err)
	}

	if playlist.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this playlist")
	}
	return nil
}
