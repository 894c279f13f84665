package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"vid-pulse/internal/config"
	"vid-pulse/internal/utils/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() config.Config {
	return config.Config{
		BcryptCost:         10,
		AccessTokenSecret:  "super-secret-access-key-at-least-32-chars",
		RefreshTokenSecret: "super-secret-refresh-key-at-least-32-char",
		AccessTokenMinutes: 15,
		RefreshTokenDays:   10,
		MediaUploadTimeout: 5,
	}
}

// MockUsersRepo is a mock implementation of UsersRepo
type MockUsersRepo struct {
	mock.Mock
}

func (m *MockUsersRepo) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersRepo) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) FindSanitizedByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUsersRepo) RotateRefreshToken(ctx context.Context, id bson.ObjectID, presented, next string) error {
	args := m.Called(ctx, id, presented, next)
	return args.Error(0)
}

func (m *MockUsersRepo) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsersRepo) UpdatePasswordHash(ctx context.Context, id bson.ObjectID, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUsersRepo) UpdateDetails(ctx context.Context, id bson.ObjectID, fullName, email string) (*User, error) {
	args := m.Called(ctx, id, fullName, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) UpdateAvatarURL(ctx context.Context, id bson.ObjectID, url string) (*User, error) {
	args := m.Called(ctx, id, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) UpdateCoverImageURL(ctx context.Context, id bson.ObjectID, url string) (*User, error) {
	args := m.Called(ctx, id, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) ChannelProfile(ctx context.Context, username string, viewerID bson.ObjectID) (*ChannelProfile, error) {
	args := m.Called(ctx, username, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChannelProfile), args.Error(1)
}

func (m *MockUsersRepo) WatchHistory(ctx context.Context, id bson.ObjectID) ([]WatchHistoryVideo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WatchHistoryVideo), args.Error(1)
}

// MockMediaStore is a mock implementation of MediaStore
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, objectName, r, size, contentType)
	return args.String(0), args.Error(1)
}

func testFile(name string) *FileUpload {
	return &FileUpload{
		FileName:    name,
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("data"),
	}
}

func TestService_Register(t *testing.T) {
	cfg := testConfig()

	validReq := RegisterRequest{
		FullName: "Jane Doe",
		Username: "JaneDoe",
		Email:    "Jane@Example.com",
		Password: "Password123",
	}

	tests := []struct {
		name    string
		req     RegisterRequest
		avatar  *FileUpload
		cover   *FileUpload
		setup   func(*MockUsersRepo, *MockMediaStore)
		wantErr error
	}{
		{
			name:   "successful registration normalizes identifiers",
			req:    validReq,
			avatar: testFile("me.PNG"),
			setup: func(repo *MockUsersRepo, media *MockMediaStore) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "jane@example.com").
					Return(nil, ErrUserNotFound)
				media.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "avatars/") && strings.HasSuffix(key, ".png")
				}), mock.Anything, int64(4), "image/png").Return("https://cdn/avatars/x.png", nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).Return(nil)
			},
		},
		{
			name: "blank fields rejected",
			req: RegisterRequest{
				FullName: "   ",
				Username: "janedoe",
				Email:    "jane@example.com",
				Password: "Password123",
			},
			avatar:  testFile("me.png"),
			setup:   func(repo *MockUsersRepo, media *MockMediaStore) {},
			wantErr: ErrFieldsRequired,
		},
		{
			name:   "existing username or email",
			req:    validReq,
			avatar: testFile("me.png"),
			setup: func(repo *MockUsersRepo, media *MockMediaStore) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "jane@example.com").
					Return(&User{ID: bson.NewObjectID()}, nil)
			},
			wantErr: ErrUserExists,
		},
		{
			name: "missing avatar",
			req:  validReq,
			setup: func(repo *MockUsersRepo, media *MockMediaStore) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "jane@example.com").
					Return(nil, ErrUserNotFound)
			},
			wantErr: ErrAvatarRequired,
		},
		{
			name:   "avatar upload failure is fatal",
			req:    validReq,
			avatar: testFile("me.png"),
			setup: func(repo *MockUsersRepo, media *MockMediaStore) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "jane@example.com").
					Return(nil, ErrUserNotFound)
				media.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return("", errors.New("minio down"))
			},
			wantErr: ErrUpload,
		},
		{
			name:   "cover upload failure is non-fatal",
			req:    validReq,
			avatar: testFile("me.png"),
			cover:  testFile("cover.jpg"),
			setup: func(repo *MockUsersRepo, media *MockMediaStore) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "jane@example.com").
					Return(nil, ErrUserNotFound)
				media.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "avatars/")
				}), mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/avatars/x.png", nil)
				media.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "covers/")
				}), mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("minio down"))
				repo.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).Return(nil)
			},
		},
		{
			name:   "duplicate key on insert",
			req:    validReq,
			avatar: testFile("me.png"),
			setup: func(repo *MockUsersRepo, media *MockMediaStore) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "jane@example.com").
					Return(nil, ErrUserNotFound)
				media.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return("https://cdn/avatars/x.png", nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).Return(ErrDuplicate)
			},
			wantErr: ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUsersRepo)
			media := new(MockMediaStore)
			tt.setup(repo, media)

			service := NewService(repo, media, cfg, silentLogger)
			user, err := service.Register(context.Background(), tt.req, tt.avatar, tt.cover)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, "janedoe", user.Username)
				assert.Equal(t, "jane@example.com", user.Email)
				assert.Empty(t, user.PasswordHash, "sanitized user must not carry the hash")
				assert.Empty(t, user.RefreshToken)
			}

			repo.AssertExpectations(t)
			media.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	cfg := testConfig()

	password := "Password123"
	hash, err := crypto.HashPassword(password, 10)
	require.NoError(t, err)

	userID := bson.NewObjectID()
	storedUser := func() *User {
		return &User{
			ID:           userID,
			Username:     "janedoe",
			Email:        "jane@example.com",
			PasswordHash: hash,
		}
	}

	tests := []struct {
		name    string
		req     LoginRequest
		setup   func(*MockUsersRepo)
		wantErr error
	}{
		{
			name: "login by username",
			req:  LoginRequest{Username: "JaneDoe", Password: password},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "").
					Return(storedUser(), nil)
				repo.On("SetRefreshToken", mock.Anything, userID, mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name: "login by email",
			req:  LoginRequest{Email: "jane@example.com", Password: password},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "", "jane@example.com").
					Return(storedUser(), nil)
				repo.On("SetRefreshToken", mock.Anything, userID, mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name:    "missing identifier",
			req:     LoginRequest{Password: password},
			setup:   func(repo *MockUsersRepo) {},
			wantErr: ErrFieldsRequired,
		},
		{
			name: "unknown user",
			req:  LoginRequest{Username: "ghost", Password: password},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "ghost", "").
					Return(nil, ErrUserNotFound)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name: "wrong password",
			req:  LoginRequest{Username: "janedoe", Password: "WrongPassword123"},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "").
					Return(storedUser(), nil)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUsersRepo)
			tt.setup(repo)

			service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
			resp, err := service.Login(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.NotEmpty(t, resp.AccessToken)
				assert.NotEmpty(t, resp.RefreshToken)
				assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
				assert.Empty(t, resp.User.PasswordHash)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login_RepoFailure(t *testing.T) {
	cfg := testConfig()

	repo := new(MockUsersRepo)
	repo.On("FindByUsernameOrEmail", mock.Anything, "janedoe", "").
		Return(nil, errors.New("server selection timeout"))

	service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
	resp, err := service.Login(context.Background(), LoginRequest{
		Username: "janedoe",
		Password: "Password123",
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound,
		"infrastructure failures must not masquerade as missing users")
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
}

func TestService_Refresh(t *testing.T) {
	cfg := testConfig()
	userID := bson.NewObjectID()

	makeService := func(repo *MockUsersRepo) *Service {
		return NewService(repo, new(MockMediaStore), cfg, silentLogger)
	}

	// A real refresh token signed the same way the service signs them.
	issueRefresh := func(t *testing.T) string {
		t.Helper()
		svc := makeService(new(MockUsersRepo))
		token, err := svc.GenerateRefreshToken(&User{ID: userID})
		require.NoError(t, err)
		return token
	}

	t.Run("successful rotation", func(t *testing.T) {
		raw := issueRefresh(t)
		repo := new(MockUsersRepo)
		repo.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, Username: "janedoe"}, nil)
		repo.On("RotateRefreshToken", mock.Anything, userID, raw, mock.AnythingOfType("string")).Return(nil)

		resp, err := makeService(repo).Refresh(context.Background(), raw)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)

		repo.AssertExpectations(t)
	})

	t.Run("stale token loses the rotation race", func(t *testing.T) {
		raw := issueRefresh(t)
		repo := new(MockUsersRepo)
		repo.On("FindByID", mock.Anything, userID).Return(&User{ID: userID}, nil)
		repo.On("RotateRefreshToken", mock.Anything, userID, raw, mock.AnythingOfType("string")).
			Return(ErrRefreshTokenMismatch)

		resp, err := makeService(repo).Refresh(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		assert.Nil(t, resp)

		repo.AssertExpectations(t)
	})

	t.Run("empty token", func(t *testing.T) {
		resp, err := makeService(new(MockUsersRepo)).Refresh(context.Background(), "")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		assert.Nil(t, resp)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		svc := makeService(new(MockUsersRepo))
		access, err := svc.GenerateAccessToken(&User{ID: userID})
		require.NoError(t, err)

		resp, err := svc.Refresh(context.Background(), access)
		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.Nil(t, resp)
	})

	t.Run("deleted user", func(t *testing.T) {
		raw := issueRefresh(t)
		repo := new(MockUsersRepo)
		repo.On("FindByID", mock.Anything, userID).Return(nil, ErrUserNotFound)

		resp, err := makeService(repo).Refresh(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		assert.Nil(t, resp)

		repo.AssertExpectations(t)
	})
}

func TestService_Logout(t *testing.T) {
	cfg := testConfig()
	userID := bson.NewObjectID()

	t.Run("clears the stored token", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("ClearRefreshToken", mock.Anything, userID).Return(nil)

		service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
		assert.NoError(t, service.Logout(context.Background(), userID))
		repo.AssertExpectations(t)
	})

	t.Run("propagates repo errors", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("ClearRefreshToken", mock.Anything, userID).Return(errors.New("write failed"))

		service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
		assert.Error(t, service.Logout(context.Background(), userID))
		repo.AssertExpectations(t)
	})
}

func TestService_ChangePassword(t *testing.T) {
	cfg := testConfig()
	userID := bson.NewObjectID()

	oldPassword := "OldPassword123"
	hash, err := crypto.HashPassword(oldPassword, 10)
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     ChangePasswordRequest
		setup   func(*MockUsersRepo)
		wantErr error
	}{
		{
			name: "successful change",
			req:  ChangePasswordRequest{OldPassword: oldPassword, NewPassword: "NewPassword456"},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByID", mock.Anything, userID).
					Return(&User{ID: userID, PasswordHash: hash}, nil)
				repo.On("UpdatePasswordHash", mock.Anything, userID, mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name:    "blank passwords",
			req:     ChangePasswordRequest{OldPassword: " ", NewPassword: ""},
			setup:   func(repo *MockUsersRepo) {},
			wantErr: ErrFieldsRequired,
		},
		{
			name: "wrong old password",
			req:  ChangePasswordRequest{OldPassword: "NotTheOldOne1", NewPassword: "NewPassword456"},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByID", mock.Anything, userID).
					Return(&User{ID: userID, PasswordHash: hash}, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUsersRepo)
			tt.setup(repo)

			service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
			err := service.ChangePassword(context.Background(), userID, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateAccount(t *testing.T) {
	cfg := testConfig()
	userID := bson.NewObjectID()

	t.Run("sanitizes and normalizes", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("UpdateDetails", mock.Anything, userID, "Jane Doe", "jane@example.com").
			Return(&User{ID: userID, FullName: "Jane Doe", Email: "jane@example.com"}, nil)

		service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
		user, err := service.UpdateAccount(context.Background(), userID, UpdateAccountRequest{
			FullName: "  Jane   Doe  ",
			Email:    " Jane@Example.com ",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", user.FullName)
		repo.AssertExpectations(t)
	})

	t.Run("email taken by another account", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("UpdateDetails", mock.Anything, userID, "Jane Doe", "taken@example.com").
			Return(nil, ErrDuplicate)

		service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
		user, err := service.UpdateAccount(context.Background(), userID, UpdateAccountRequest{
			FullName: "Jane Doe",
			Email:    "taken@example.com",
		})
		assert.ErrorIs(t, err, ErrUserExists)
		assert.Nil(t, user)
		repo.AssertExpectations(t)
	})

	t.Run("blank fields", func(t *testing.T) {
		service := NewService(new(MockUsersRepo), new(MockMediaStore), cfg, silentLogger)
		_, err := service.UpdateAccount(context.Background(), userID, UpdateAccountRequest{})
		assert.ErrorIs(t, err, ErrFieldsRequired)
	})
}

func TestService_UpdateImages(t *testing.T) {
	cfg := testConfig()
	userID := bson.NewObjectID()

	t.Run("avatar replacement", func(t *testing.T) {
		repo := new(MockUsersRepo)
		media := new(MockMediaStore)
		media.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "avatars/")
		}), mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/avatars/new.png", nil)
		repo.On("UpdateAvatarURL", mock.Anything, userID, "https://cdn/avatars/new.png").
			Return(&User{ID: userID, AvatarURL: "https://cdn/avatars/new.png"}, nil)

		service := NewService(repo, media, cfg, silentLogger)
		user, err := service.UpdateAvatar(context.Background(), userID, testFile("new.png"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/avatars/new.png", user.AvatarURL)

		repo.AssertExpectations(t)
		media.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		service := NewService(new(MockUsersRepo), new(MockMediaStore), cfg, silentLogger)
		_, err := service.UpdateCoverImage(context.Background(), userID, nil)
		assert.ErrorIs(t, err, ErrFileRequired)
	})

	t.Run("upload failure", func(t *testing.T) {
		media := new(MockMediaStore)
		media.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("minio down"))

		service := NewService(new(MockUsersRepo), media, cfg, silentLogger)
		_, err := service.UpdateCoverImage(context.Background(), userID, testFile("cover.jpg"))
		assert.ErrorIs(t, err, ErrUpload)
		media.AssertExpectations(t)
	})
}

func TestService_ChannelProfile(t *testing.T) {
	cfg := testConfig()
	viewerID := bson.NewObjectID()

	t.Run("found", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("ChannelProfile", mock.Anything, "janedoe", viewerID).
			Return(&ChannelProfile{Username: "janedoe", SubscribersCount: 3, IsSubscribed: true}, nil)

		service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
		profile, err := service.ChannelProfile(context.Background(), " JaneDoe ", viewerID)
		require.NoError(t, err)
		assert.True(t, profile.IsSubscribed)
		assert.EqualValues(t, 3, profile.SubscribersCount)
		repo.AssertExpectations(t)
	})

	t.Run("blank username", func(t *testing.T) {
		service := NewService(new(MockUsersRepo), new(MockMediaStore), cfg, silentLogger)
		_, err := service.ChannelProfile(context.Background(), "  ", viewerID)
		assert.ErrorIs(t, err, ErrFieldsRequired)
	})

	t.Run("unknown channel", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("ChannelProfile", mock.Anything, "ghost", viewerID).
			Return(nil, ErrChannelNotFound)

		service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
		_, err := service.ChannelProfile(context.Background(), "ghost", viewerID)
		assert.ErrorIs(t, err, ErrChannelNotFound)
		repo.AssertExpectations(t)
	})
}

func TestService_WatchHistory(t *testing.T) {
	cfg := testConfig()
	userID := bson.NewObjectID()

	now := time.Now().UTC()
	repo := new(MockUsersRepo)
	repo.On("WatchHistory", mock.Anything, userID).Return([]WatchHistoryVideo{
		{Video: Video{Title: "second watched", CreatedAt: now, UpdatedAt: now}, Owner: VideoOwner{Username: "bob"}},
		{Video: Video{Title: "first watched", CreatedAt: now, UpdatedAt: now}, Owner: VideoOwner{Username: "alice"}},
	}, nil)

	service := NewService(repo, new(MockMediaStore), cfg, silentLogger)
	history, err := service.WatchHistory(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "bob", history[0].Owner.Username)
	assert.Equal(t, now, history[0].UpdatedAt)
	repo.AssertExpectations(t)
}
