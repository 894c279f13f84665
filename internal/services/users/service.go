package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"vid-pulse/internal/config"
	"vid-pulse/internal/utils/crypto"
	"vid-pulse/internal/utils/sanitize"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles session and profile business logic
type Service struct {
	repo   UsersRepo
	media  MediaStore
	config config.Config
	log    *slog.Logger
}

// NewService creates a new users service
func NewService(repo UsersRepo, media MediaStore, cfg config.Config, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		media:  media,
		config: cfg,
		log:    log,
	}
}

// RegisterRequest represents a user registration request. The avatar and
// cover files arrive separately as multipart uploads.
type RegisterRequest struct {
	FullName string `json:"fullName" form:"fullName" validate:"required" example:"Jane Doe"`
	Username string `json:"username" form:"username" validate:"required,min=3,max=30" example:"janedoe"`
	Email    string `json:"email" form:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" form:"password" validate:"required,password" example:"Password123"`
}

// LoginRequest represents a login request; at least one of username/email
// must be supplied alongside the password.
type LoginRequest struct {
	Username string `json:"username" form:"username" example:"janedoe"`
	Email    string `json:"email" form:"email" validate:"omitempty,email" example:"jane@example.com"`
	Password string `json:"password" form:"password" validate:"required" example:"Password123"`
}

// ChangePasswordRequest carries an authenticated password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

// UpdateAccountRequest updates the editable account details.
type UpdateAccountRequest struct {
	FullName string `json:"fullName" validate:"required" example:"Jane Doe"`
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
}

// AuthResponse is returned by Login and Refresh. Both tokens also travel as
// httpOnly cookies; the body copy serves non-browser clients.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// FileUpload is a multipart file handed down from the HTTP layer.
type FileUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Register creates a new account. The avatar upload is mandatory, the cover
// image optional; a failed cover upload is non-fatal.
func (s *Service) Register(ctx context.Context, req RegisterRequest, avatar, cover *FileUpload) (*User, error) {
	fullName := sanitize.Clean(req.FullName)
	username := normalize(req.Username)
	email := normalize(req.Email)
	password := strings.TrimSpace(req.Password)

	if fullName == "" || username == "" || email == "" || password == "" {
		return nil, ErrFieldsRequired
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil && existing != nil {
		return nil, ErrUserExists
	}

	if avatar == nil {
		return nil, ErrAvatarRequired
	}

	avatarURL, err := s.uploadMedia(ctx, "avatars", avatar)
	if err != nil {
		s.log.Error("avatar upload failed", "username", username, "error", err)
		return nil, ErrUpload
	}

	var coverURL string
	if cover != nil {
		coverURL, err = s.uploadMedia(ctx, "covers", cover)
		if err != nil {
			// Cover image is optional; a failed upload degrades to none.
			s.log.Warn("cover image upload failed", "username", username, "error", err)
			coverURL = ""
		}
	}

	hash, err := crypto.HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, errors.New("failed to process password")
	}

	now := time.Now().UTC()
	user := &User{
		ID:            bson.NewObjectID(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrUserExists
		}
		s.log.Error("failed to create user", "username", username, "error", err)
		return nil, errors.New("failed to create user")
	}

	return user.Sanitized(), nil
}

// Login authenticates by username or email and issues a fresh token pair.
// The new refresh token unconditionally overwrites any previously stored
// one, invalidating the prior session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	username := normalize(req.Username)
	email := normalize(req.Email)
	password := strings.TrimSpace(req.Password)

	if (username == "" && email == "") || password == "" {
		return nil, ErrFieldsRequired
	}

	user, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		// Infrastructure failure, not a missing user; let it surface as 500.
		s.log.Error("failed to find user", "error", err)
		return nil, err
	}

	if err := crypto.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, user, "")
}

// Logout clears the stored refresh token. Idempotent: logging out twice
// leaves the same end state. Already-issued access tokens stay valid until
// their own expiry; only the refresh path is cut off.
func (s *Service) Logout(ctx context.Context, userID bson.ObjectID) error {
	if err := s.repo.ClearRefreshToken(ctx, userID); err != nil {
		s.log.Error("failed to clear refresh token", "user_id", userID.Hex(), "error", err)
		return err
	}
	return nil
}

// Refresh exchanges a valid, currently-stored refresh token for a new
// access+refresh pair. Rotation is compare-and-set on the stored token, so
// presenting a stale or already-rotated token fails even when it is
// cryptographically valid and unexpired.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*AuthResponse, error) {
	if rawToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := ParseToken(rawToken, s.config.RefreshTokenSecret, TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.issueTokenPair(ctx, user, rawToken)
}

// issueTokenPair generates both tokens and persists the refresh token.
// With presented == "" the stored token is overwritten unconditionally
// (login); otherwise the swap is a compare-and-set against presented
// (refresh rotation).
func (s *Service) issueTokenPair(ctx context.Context, user *User, presented string) (*AuthResponse, error) {
	accessToken, err := s.GenerateAccessToken(user)
	if err != nil {
		s.log.Error("failed to generate access token", "user_id", user.ID.Hex(), "error", err)
		return nil, ErrGenToken
	}

	refreshToken, err := s.GenerateRefreshToken(user)
	if err != nil {
		s.log.Error("failed to generate refresh token", "user_id", user.ID.Hex(), "error", err)
		return nil, ErrGenToken
	}

	if presented == "" {
		err = s.repo.SetRefreshToken(ctx, user.ID, refreshToken)
	} else {
		err = s.repo.RotateRefreshToken(ctx, user.ID, presented, refreshToken)
	}
	if err != nil {
		if errors.Is(err, ErrRefreshTokenMismatch) {
			s.log.Info("refresh token reuse detected", "user_id", user.ID.Hex())
			return nil, ErrInvalidRefreshToken
		}
		s.log.Error("failed to persist refresh token", "user_id", user.ID.Hex(), "error", err)
		return nil, err
	}

	return &AuthResponse{
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ChangePassword verifies the old password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID bson.ObjectID, req ChangePasswordRequest) error {
	oldPassword := strings.TrimSpace(req.OldPassword)
	newPassword := strings.TrimSpace(req.NewPassword)
	if oldPassword == "" || newPassword == "" {
		return ErrFieldsRequired
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := crypto.CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := crypto.HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return errors.New("failed to process password")
	}

	return s.repo.UpdatePasswordHash(ctx, userID, hash)
}

// UpdateAccount updates fullName and email and returns the sanitized record.
func (s *Service) UpdateAccount(ctx context.Context, userID bson.ObjectID, req UpdateAccountRequest) (*User, error) {
	fullName := sanitize.Clean(req.FullName)
	email := normalize(req.Email)
	if fullName == "" || email == "" {
		return nil, ErrFieldsRequired
	}

	user, err := s.repo.UpdateDetails(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user.Sanitized(), nil
}

// UpdateAvatar uploads a replacement avatar and stores its URL.
func (s *Service) UpdateAvatar(ctx context.Context, userID bson.ObjectID, file *FileUpload) (*User, error) {
	return s.updateImage(ctx, userID, file, "avatars", s.repo.UpdateAvatarURL)
}

// UpdateCoverImage uploads a replacement cover image and stores its URL.
func (s *Service) UpdateCoverImage(ctx context.Context, userID bson.ObjectID, file *FileUpload) (*User, error) {
	return s.updateImage(ctx, userID, file, "covers", s.repo.UpdateCoverImageURL)
}

func (s *Service) updateImage(
	ctx context.Context,
	userID bson.ObjectID,
	file *FileUpload,
	prefix string,
	persist func(context.Context, bson.ObjectID, string) (*User, error),
) (*User, error) {
	if file == nil {
		return nil, ErrFileRequired
	}

	url, err := s.uploadMedia(ctx, prefix, file)
	if err != nil {
		s.log.Error("media upload failed", "user_id", userID.Hex(), "prefix", prefix, "error", err)
		return nil, ErrUpload
	}

	user, err := persist(ctx, userID, url)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// ChannelProfile resolves a channel by username for the given viewer.
func (s *Service) ChannelProfile(ctx context.Context, username string, viewerID bson.ObjectID) (*ChannelProfile, error) {
	username = normalize(username)
	if username == "" {
		return nil, ErrFieldsRequired
	}

	profile, err := s.repo.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			return nil, ErrChannelNotFound
		}
		s.log.Error("channel profile aggregation failed", "username", username, "error", err)
		return nil, err
	}
	return profile, nil
}

// WatchHistory returns the user's watch history in stored order, each video
// enriched with its owner summary.
func (s *Service) WatchHistory(ctx context.Context, userID bson.ObjectID) ([]WatchHistoryVideo, error) {
	videos, err := s.repo.WatchHistory(ctx, userID)
	if err != nil {
		s.log.Error("watch history aggregation failed", "user_id", userID.Hex(), "error", err)
		return nil, err
	}
	return videos, nil
}

// uploadMedia pushes a file to the media store under a fresh object key.
// Uploads are bounded by their own timeout so a stalled storage backend
// cannot hold the request hostage.
func (s *Service) uploadMedia(ctx context.Context, prefix string, file *FileUpload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.config.MediaUploadTimeout)*time.Second)
	defer cancel()

	key := fmt.Sprintf("%s/%s%s", prefix, ulid.Make().String(), strings.ToLower(path.Ext(file.FileName)))
	url, err := s.media.Upload(ctx, key, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", ErrUpload
	}
	return url, nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
