package users

import "errors"

var (
	// ErrFieldsRequired - a required field was missing or blank after trimming
	ErrFieldsRequired = errors.New("all fields are required")
	// ErrUserExists - username or email already taken (case-insensitive)
	ErrUserExists = errors.New("user already exists with this username or email")
	// ErrUserNotFound - no user matches the given identifier
	ErrUserNotFound = errors.New("user not found")
	// ErrChannelNotFound - channel aggregation matched zero rows
	ErrChannelNotFound = errors.New("channel not found")
	// ErrInvalidCredentials - password mismatch
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAvatarRequired - registration without the mandatory avatar file
	ErrAvatarRequired = errors.New("avatar file is required")
	// ErrFileRequired - avatar/cover update without a file
	ErrFileRequired = errors.New("file is required")
	// ErrUpload - external media storage rejected or failed the upload
	ErrUpload = errors.New("media upload failed")
	// ErrInvalidRefreshToken - refresh token missing, expired, forged, or
	// already rotated; callers report all of these uniformly as unauthorized
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrTokenExpired - signature fine, expiry in the past
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid - malformed token, bad signature, or wrong token kind
	ErrTokenInvalid = errors.New("token invalid")
	// ErrGenToken - token signing failed
	ErrGenToken = errors.New("failed to generate token")
	// ErrDuplicate is returned by the repository on unique index violations
	ErrDuplicate = errors.New("duplicate username or email")
	// ErrRefreshTokenMismatch is returned by the repository when the
	// compare-and-set rotation matched no document
	ErrRefreshTokenMismatch = errors.New("stored refresh token mismatch")
)
