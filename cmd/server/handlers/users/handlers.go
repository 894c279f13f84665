package users

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"vid-pulse/cmd/server/ctxkeys"
	"vid-pulse/cmd/server/handlers/handlerutil"
	"vid-pulse/cmd/server/handlers/httperr"
	"vid-pulse/internal/logger"
	"vid-pulse/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserService defines the interface for the users service
type UserService interface {
	Register(ctx context.Context, req users.RegisterRequest, avatar, cover *users.FileUpload) (*users.User, error)
	Login(ctx context.Context, req users.LoginRequest) (*users.AuthResponse, error)
	Logout(ctx context.Context, userID bson.ObjectID) error
	Refresh(ctx context.Context, rawRefreshToken string) (*users.AuthResponse, error)
	ChangePassword(ctx context.Context, userID bson.ObjectID, req users.ChangePasswordRequest) error
	UpdateAccount(ctx context.Context, userID bson.ObjectID, req users.UpdateAccountRequest) (*users.User, error)
	UpdateAvatar(ctx context.Context, userID bson.ObjectID, file *users.FileUpload) (*users.User, error)
	UpdateCoverImage(ctx context.Context, userID bson.ObjectID, file *users.FileUpload) (*users.User, error)
	ChannelProfile(ctx context.Context, username string, viewerID bson.ObjectID) (*users.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID bson.ObjectID) ([]users.WatchHistoryVideo, error)
}

// Handlers contains the users HTTP handlers
type Handlers struct {
	service      UserService
	validator    *validator.Validate
	cookieSecure bool
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

// NewHandlers creates new users handlers
func NewHandlers(service UserService, v *validator.Validate, cookieSecure bool, accessTTL, refreshTTL time.Duration) *Handlers {
	return &Handlers{
		service:      service,
		validator:    v,
		cookieSecure: cookieSecure,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

// RefreshRequest reads a refresh token from the request body; the cookie
// takes precedence when both are present.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// failFrom maps service sentinels to the wire error taxonomy.
func failFrom(err error) error {
	switch {
	case errors.Is(err, users.ErrFieldsRequired),
		errors.Is(err, users.ErrAvatarRequired),
		errors.Is(err, users.ErrFileRequired),
		errors.Is(err, users.ErrUpload):
		return httperr.Fail(httperr.BadRequest(err.Error()))
	case errors.Is(err, users.ErrUserExists):
		return httperr.Fail(httperr.Conflict(err.Error()))
	case errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, users.ErrChannelNotFound):
		return httperr.Fail(httperr.NotFound(err.Error()))
	case errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, users.ErrInvalidRefreshToken),
		errors.Is(err, users.ErrTokenExpired),
		errors.Is(err, users.ErrTokenInvalid):
		// Expired vs forged vs rotated is deliberately not distinguished
		// on the wire.
		return httperr.Fail(httperr.ErrUnauthorized)
	default:
		return httperr.Fail(httperr.ErrInternal)
	}
}

// fileFromForm converts a multipart file field into a service FileUpload.
// Returns (nil, nil, nil) when the field is absent. The caller must invoke
// the returned closer after the service call.
func fileFromForm(c *fiber.Ctx, field string) (*users.FileUpload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return nil, func() {}, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &users.FileUpload{
		FileName:    fh.Filename,
		ContentType: fileContentType(fh),
		Size:        fh.Size,
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}

func fileContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get(fiber.HeaderContentType); ct != "" {
		return ct
	}
	return fiber.MIMEOctetStream
}

// setAuthCookies attaches the token pair as httpOnly cookies.
func (h *Handlers) setAuthCookies(c *fiber.Ctx, resp *users.AuthResponse) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name:     ctxkeys.AccessTokenCookie,
		Value:    resp.AccessToken,
		Expires:  now.Add(h.accessTTL),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     ctxkeys.RefreshTokenCookie,
		Value:    resp.RefreshToken,
		Expires:  now.Add(h.refreshTTL),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// clearAuthCookies expires both auth cookies.
func (h *Handlers) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{ctxkeys.AccessTokenCookie, ctxkeys.RefreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  expired,
			HTTPOnly: true,
			Secure:   h.cookieSecure,
			SameSite: fiber.CookieSameSiteStrictMode,
		})
	}
}

// Register handles user registration (multipart: fields + avatar/coverPhoto files)
// @Summary Register a new user
// @Tags users
// @Accept mpfd
// @Produce json
// @Success 201 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /users/register [post]
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req users.RegisterRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Register"); err != nil {
		return err
	}

	avatar, closeAvatar, err := fileFromForm(c, "avatar")
	if err != nil {
		logger.L().Warn("failed to open avatar upload", "handler", "Register", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}
	defer closeAvatar()

	cover, closeCover, err := fileFromForm(c, "coverPhoto")
	if err != nil {
		logger.L().Warn("failed to open cover upload", "handler", "Register", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}
	defer closeCover()

	user, err := h.service.Register(c.Context(), req, avatar, cover)
	if err != nil {
		logger.L().Warn("register failed", "handler", "Register", "username", req.Username, "error", err)
		return failFrom(err)
	}

	return handlerutil.JSON(c, fiber.StatusCreated, "user registered successfully", user)
}

// Login authenticates by username or email
// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /users/login [post]
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req users.LoginRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Login"); err != nil {
		return err
	}

	resp, err := h.service.Login(c.Context(), req)
	if err != nil {
		logger.L().Warn("login failed", "handler", "Login", "error", err)
		return failFrom(err)
	}

	h.setAuthCookies(c, resp)
	return handlerutil.JSON(c, fiber.StatusOK, "logged in successfully", resp)
}

// Logout clears the session
// @Summary Log out
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} handlerutil.Envelope
// @Failure 401 {object} httperr.E
// @Router /users/logout [post]
func (h *Handlers) Logout(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Logout(c.Context(), userID); err != nil {
		logger.L().Error("logout failed", "handler", "Logout", "userID", userID.Hex(), "error", err)
		return failFrom(err)
	}

	h.clearAuthCookies(c)
	return handlerutil.JSON(c, fiber.StatusOK, "logged out successfully", nil)
}

// Refresh rotates the token pair
// @Summary Refresh the access token
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} handlerutil.Envelope
// @Failure 401 {object} httperr.E
// @Router /users/refresh-token [post]
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(ctxkeys.RefreshTokenCookie)
	if raw == "" {
		var req RefreshRequest
		// Body is optional here; the cookie is the primary carrier.
		_ = c.BodyParser(&req)
		raw = req.RefreshToken
	}
	if raw == "" {
		return httperr.Fail(httperr.ErrUnauthorized)
	}

	resp, err := h.service.Refresh(c.Context(), raw)
	if err != nil {
		logger.L().Info("refresh rejected", "handler", "Refresh", "remote", c.IP(), "error", err)
		return failFrom(err)
	}

	h.setAuthCookies(c, resp)
	return handlerutil.JSON(c, fiber.StatusOK, "token refreshed successfully", resp)
}

// ChangePassword verifies the old password and stores a new one
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /users/change-password [post]
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req users.ChangePasswordRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "ChangePassword"); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.Context(), userID, req); err != nil {
		logger.L().Warn("change password failed", "handler", "ChangePassword", "userID", userID.Hex(), "error", err)
		return failFrom(err)
	}

	return handlerutil.JSON(c, fiber.StatusOK, "password changed successfully", nil)
}

// Me returns the authenticated user resolved by the auth middleware
// @Summary Get current user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} handlerutil.Envelope
// @Router /users/me [get]
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := handlerutil.GetCurrentUser(c)
	if err != nil {
		return err
	}
	return handlerutil.JSON(c, fiber.StatusOK, "current user fetched successfully", user)
}

// UpdateAccount updates fullName and email
// @Summary Update account details
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /users/update-account [patch]
func (h *Handlers) UpdateAccount(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req users.UpdateAccountRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateAccount"); err != nil {
		return err
	}

	user, err := h.service.UpdateAccount(c.Context(), userID, req)
	if err != nil {
		logger.L().Warn("update account failed", "handler", "UpdateAccount", "userID", userID.Hex(), "error", err)
		return failFrom(err)
	}

	return handlerutil.JSON(c, fiber.StatusOK, "account details updated successfully", user)
}

// UpdateAvatar replaces the avatar image
// @Summary Update avatar
// @Tags users
// @Accept mpfd
// @Produce json
// @Security Bearer
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Router /users/avatar [patch]
func (h *Handlers) UpdateAvatar(c *fiber.Ctx) error {
	return h.updateImage(c, "avatar", h.service.UpdateAvatar)
}

// UpdateCoverImage replaces the cover image
// @Summary Update cover image
// @Tags users
// @Accept mpfd
// @Produce json
// @Security Bearer
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Router /users/cover-image [patch]
func (h *Handlers) UpdateCoverImage(c *fiber.Ctx) error {
	return h.updateImage(c, "coverPhoto", h.service.UpdateCoverImage)
}

func (h *Handlers) updateImage(
	c *fiber.Ctx,
	field string,
	update func(context.Context, bson.ObjectID, *users.FileUpload) (*users.User, error),
) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	file, closeFile, err := fileFromForm(c, field)
	if err != nil {
		logger.L().Warn("failed to open image upload", "field", field, "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}
	defer closeFile()

	user, err := update(c.Context(), userID, file)
	if err != nil {
		logger.L().Warn("image update failed", "field", field, "userID", userID.Hex(), "error", err)
		return failFrom(err)
	}

	return handlerutil.JSON(c, fiber.StatusOK, field+" updated successfully", user)
}

// ChannelProfile returns a channel's profile with subscriber counts
// @Summary Get channel profile
// @Tags users
// @Produce json
// @Security Bearer
// @Param username path string true "Channel username"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /users/channel/{username} [get]
func (h *Handlers) ChannelProfile(c *fiber.Ctx) error {
	viewerID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	username := c.Params("username")
	profile, err := h.service.ChannelProfile(c.Context(), username, viewerID)
	if err != nil {
		logger.L().Info("channel profile lookup failed", "handler", "ChannelProfile", "username", username, "error", err)
		return failFrom(err)
	}

	return handlerutil.JSON(c, fiber.StatusOK, "channel profile fetched successfully", profile)
}

// WatchHistory returns the user's watch history in stored order
// @Summary Get watch history
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} handlerutil.Envelope
// @Router /users/watch-history [get]
func (h *Handlers) WatchHistory(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	history, err := h.service.WatchHistory(c.Context(), userID)
	if err != nil {
		logger.L().Error("watch history failed", "handler", "WatchHistory", "userID", userID.Hex(), "error", err)
		return failFrom(err)
	}

	return handlerutil.JSON(c, fiber.StatusOK, "watch history fetched successfully", history)
}
