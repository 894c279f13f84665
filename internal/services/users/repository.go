package users

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UsersRepo defines the persistence operations the service depends on.
// Implementations translate storage-level errors to the package sentinels
// (ErrDuplicate, ErrUserNotFound, ErrChannelNotFound, ErrRefreshTokenMismatch).
type UsersRepo interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	// FindSanitizedByID loads a user with password hash and refresh token
	// excluded from the projection (auth middleware path).
	FindSanitizedByID(ctx context.Context, id bson.ObjectID) (*User, error)
	// FindByUsernameOrEmail matches either identifier; both arguments are
	// expected lower-cased. Empty strings never match.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	// RotateRefreshToken atomically replaces the stored refresh token with
	// next, but only when the stored value equals presented (compare-and-set).
	// Returns ErrRefreshTokenMismatch when no document matched.
	RotateRefreshToken(ctx context.Context, id bson.ObjectID, presented, next string) error
	ClearRefreshToken(ctx context.Context, id bson.ObjectID) error

	UpdatePasswordHash(ctx context.Context, id bson.ObjectID, hash string) error
	UpdateDetails(ctx context.Context, id bson.ObjectID, fullName, email string) (*User, error)
	UpdateAvatarURL(ctx context.Context, id bson.ObjectID, url string) (*User, error)
	UpdateCoverImageURL(ctx context.Context, id bson.ObjectID, url string) (*User, error)

	ChannelProfile(ctx context.Context, username string, viewerID bson.ObjectID) (*ChannelProfile, error)
	WatchHistory(ctx context.Context, id bson.ObjectID) ([]WatchHistoryVideo, error)
}

// MediaStore uploads user media to external object storage and returns the
// public URL of the stored object.
type MediaStore interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}
