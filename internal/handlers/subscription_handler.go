package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/streamtube/backend/internal/middleware"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/response"
)

// SubscriptionHandler handles HTTP requests related to subscriptions.
type SubscriptionHandler struct {
	subscriptionRepository repositories.SubscriptionRepository
	userRepository         repositories.UserRepository
}

func NewSubscriptionHandler(subscriptionRepo repositories.SubscriptionRepository, userRepo repositories.UserRepository) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionRepository: subscriptionRepo,
		userRepository:         userRepo,
	}
}

func (h *SubscriptionHandler) RegisterSubscriptionRoutes(g *echo.Group) {
	g.POST("/subscriptions/c/:channelId", h.ToggleSubscription)
	g.GET("/subscriptions/c/:channelId", h.ChannelSubscribers)
	g.GET("/subscriptions/u/:subscriberId", h.SubscribedChannels)
}

// ToggleSubscription flips the acting user's subscription to a channel.
func (h *SubscriptionHandler) ToggleSubscription(c echo.Context) error {
	user := middleware.ActingUser(c)

	channelID, err := objectIDParam(c, "channelId")
	if err != nil {
		return err
	}

	if _, err := h.userRepository.GetUserByID(c.Request().Context(), channelID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch channel").SetInternal(err)
	}

	subscribed, err := h.subscriptionRepository.Toggle(c.Request().Context(), user.ID, channelID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle subscription").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, echo.Map{"subscribed": subscribed}, "Subscription toggled successfully")
}

// ChannelSubscribers returns the subscriber list of the acting user's own
// channel.
func (h *SubscriptionHandler) ChannelSubscribers(c echo.Context) error {
	user := middleware.ActingUser(c)

	channelID, err := objectIDParam(c, "channelId")
	if err != nil {
		return err
	}
	if channelID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to view this subscriber list")
	}

	subscribers, err := h.subscriptionRepository.GetChannelSubscribers(c.Request().Context(), channelID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch subscribers").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, subscribers, "Subscribers fetched successfully")
}

// SubscribedChannels returns the channels the acting user subscribes to.
func (h *SubscriptionHandler) SubscribedChannels(c echo.Context) error {
	user := middleware.ActingUser(c)

	subscriberID, err := objectIDParam(c, "subscriberId")
	if err != nil {
		return err
	}
	if subscriberID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to view this channel list")
	}

	channels, err := h.subscriptionRepository.GetSubscribedChannels(c.Request().Context(), subscriberID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch subscribed channels").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, channels, "Subscribed channels fetched successfully")
}
