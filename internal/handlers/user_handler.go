package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamtube/backend/internal/auth"
	"github.com/streamtube/backend/internal/middleware"
	"github.com/streamtube/backend/internal/models"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/internal/response"
	"github.com/streamtube/backend/pkg/media"
)

// UserHandler handles account and session HTTP requests.
type UserHandler struct {
	userRepository repositories.UserRepository
	tokens         *auth.TokenManager
	media          media.Service
}

func NewUserHandler(userRepo repositories.UserRepository, tokens *auth.TokenManager, mediaService media.Service) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		tokens:         tokens,
		media:          mediaService,
	}
}

// RegisterPublicRoutes registers the routes that do not require a session.
func (h *UserHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/register", h.Register, middleware.StageUploads("avatar", "coverImage"))
	g.POST("/login", h.Login)
	g.POST("/refresh-token", h.RefreshToken)
}

// RegisterProtectedRoutes registers the routes behind the auth middleware.
func (h *UserHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.POST("/logout", h.Logout)
	g.GET("/current-user", h.CurrentUser)
	g.POST("/change-password", h.ChangePassword)
	g.PATCH("/update-account", h.UpdateAccount)
	g.PATCH("/avatar", h.UpdateAvatar, middleware.StageUploads("avatar"))
	g.PATCH("/cover-image", h.UpdateCoverImage, middleware.StageUploads("coverImage"))
	g.GET("/channel/:username", h.ChannelProfile)
	g.GET("/history", h.WatchHistory)
}

// Register creates a new account. Avatar is a required file field, cover
// image optional; both are staged by the upload middleware.
func (h *UserHandler) Register(c echo.Context) error {
	var req models.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	username := strings.ToLower(req.Username)
	if _, err := h.userRepository.GetUserByUsernameOrEmail(c.Request().Context(), username, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username or email already exists")
	} else if err != repositories.ErrNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}

	avatarPath := middleware.StagedFile(c, "avatar")
	if avatarPath == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Avatar is required")
	}

	avatar, err := h.media.Upload(c.Request().Context(), avatarPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload avatar").SetInternal(err)
	}

	var coverImage models.MediaAsset
	if coverPath := middleware.StagedFile(c, "coverImage"); coverPath != "" {
		cover, err := h.media.Upload(c.Request().Context(), coverPath)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload cover image").SetInternal(err)
		}
		coverImage = models.MediaAsset{URL: cover.URL, PublicID: cover.PublicID}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password").SetInternal(err)
	}

	user := &models.User{
		Username:   username,
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   string(hashedPassword),
		Avatar:     models.MediaAsset{URL: avatar.URL, PublicID: avatar.PublicID},
		CoverImage: coverImage,
	}

	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		if err == repositories.ErrDuplicate {
			return echo.NewHTTPError(http.StatusConflict, "Username or email already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user").SetInternal(err)
	}

	return response.JSON(c, http.StatusCreated, user, "User registered successfully")
}

// Login authenticates by username or email and issues the session tokens as
// httpOnly cookies and in the body.
func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" && req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username or email is required")
	}

	user, err := h.userRepository.GetUserByUsernameOrEmail(c.Request().Context(), strings.ToLower(req.Username), req.Email)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password")
	}

	accessToken, refreshToken, err := h.issueTokens(c, user)
	if err != nil {
		return err
	}

	return response.JSON(c, http.StatusOK, echo.Map{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "User logged in successfully")
}

// Logout clears the persisted refresh token and the session cookies.
func (h *UserHandler) Logout(c echo.Context) error {
	user := middleware.ActingUser(c)

	if err := h.userRepository.ClearRefreshToken(c.Request().Context(), user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to log out").SetInternal(err)
	}

	clearAuthCookies(c)
	return response.JSON(c, http.StatusOK, echo.Map{}, "User logged out successfully")
}

// RefreshToken rotates the session: the incoming refresh token must verify
// and match the persisted value exactly.
func (h *UserHandler) RefreshToken(c echo.Context) error {
	tokenString := refreshTokenFrom(c)
	if tokenString == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token is required")
	}

	claims, err := h.tokens.ParseRefreshToken(tokenString)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	// Covers logout elsewhere and rotation races.
	if user.RefreshToken == "" || user.RefreshToken != tokenString {
		return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token is expired or already used")
	}

	accessToken, refreshToken, err := h.issueTokens(c, user)
	if err != nil {
		return err
	}

	return response.JSON(c, http.StatusOK, echo.Map{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "Access token refreshed successfully")
}

// CurrentUser returns the acting user.
func (h *UserHandler) CurrentUser(c echo.Context) error {
	return response.JSON(c, http.StatusOK, middleware.ActingUser(c), "Current user fetched successfully")
}

// ChangePassword verifies the old password before storing a new hash.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	user := middleware.ActingUser(c)

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Old password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password").SetInternal(err)
	}

	if _, err := h.userRepository.UpdateUserFields(c.Request().Context(), user.ID, bson.M{"password": string(hashedPassword)}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to change password").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, echo.Map{}, "Password changed successfully")
}

// UpdateAccount changes full name and email.
func (h *UserHandler) UpdateAccount(c echo.Context) error {
	user := middleware.ActingUser(c)

	var req models.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.userRepository.UpdateUserFields(c.Request().Context(), user.ID, bson.M{
		"fullName": req.FullName,
		"email":    req.Email,
	})
	if err != nil {
		if err == repositories.ErrDuplicate {
			return echo.NewHTTPError(http.StatusConflict, "Email already in use")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update account").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, updated, "Account details updated successfully")
}

// UpdateAvatar replaces the avatar. The old asset is destroyed only after the
// new one is persisted.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, "avatar", "Avatar")
}

// UpdateCoverImage replaces the cover image, same ordering as UpdateAvatar.
func (h *UserHandler) UpdateCoverImage(c echo.Context) error {
	return h.updateImage(c, "coverImage", "Cover image")
}

func (h *UserHandler) updateImage(c echo.Context, field, label string) error {
	user := middleware.ActingUser(c)

	path := middleware.StagedFile(c, field)
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, label+" file is required")
	}

	uploaded, err := h.media.Upload(c.Request().Context(), path)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload "+strings.ToLower(label)).SetInternal(err)
	}

	oldPublicID := user.Avatar.PublicID
	if field == "coverImage" {
		oldPublicID = user.CoverImage.PublicID
	}

	updated, err := h.userRepository.UpdateUserFields(c.Request().Context(), user.ID, bson.M{
		field: models.MediaAsset{URL: uploaded.URL, PublicID: uploaded.PublicID},
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update "+strings.ToLower(label)).SetInternal(err)
	}

	// Old asset goes away only after the document write succeeded.
	if err := h.media.Delete(c.Request().Context(), oldPublicID, media.ResourceImage); err != nil {
		c.Logger().Errorf("failed to delete replaced %s asset: %v", field, err)
	}

	return response.JSON(c, http.StatusOK, updated, label+" updated successfully")
}

// ChannelProfile returns the channel view of a user by username.
func (h *UserHandler) ChannelProfile(c echo.Context) error {
	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username is required")
	}

	viewer := middleware.ActingUser(c)
	channel, err := h.userRepository.GetChannelProfile(c.Request().Context(), username, viewer.ID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch channel").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, channel, "Channel profile fetched successfully")
}

// WatchHistory returns the acting user's watched videos.
func (h *UserHandler) WatchHistory(c echo.Context) error {
	user := middleware.ActingUser(c)

	history, err := h.userRepository.GetWatchHistory(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch watch history").SetInternal(err)
	}

	return response.JSON(c, http.StatusOK, history, "Watch history fetched successfully")
}

// issueTokens mints a fresh access/refresh pair, persists the refresh token
// (rotating out the previous one) and sets both cookies.
func (h *UserHandler) issueTokens(c echo.Context, user *models.User) (string, string, error) {
	accessToken, err := h.tokens.MintAccessToken(user)
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate access token").SetInternal(err)
	}
	refreshToken, err := h.tokens.MintRefreshToken(user)
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate refresh token").SetInternal(err)
	}

	if err := h.userRepository.SetRefreshToken(c.Request().Context(), user.ID, refreshToken); err != nil {
		return "", "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist session").SetInternal(err)
	}

	setAuthCookies(c, accessToken, refreshToken)
	return accessToken, refreshToken, nil
}

func refreshTokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(sessionCookie("accessToken", accessToken, 0))
	c.SetCookie(sessionCookie("refreshToken", refreshToken, 0))
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(sessionCookie("accessToken", "", -1))
	c.SetCookie(sessionCookie("refreshToken", "", -1))
}

func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
	}
}
