package ctxkeys

// Locals keys set by the auth middleware for downstream handlers.
const (
	// UserIDKey holds the authenticated user's id as a hex string.
	UserIDKey = "userID"
	// CurrentUserKey holds the resolved *users.User (credentials excluded).
	CurrentUserKey = "currentUser"
)

// Cookie names carrying the token pair. Both cookies are httpOnly and,
// outside local development, secure.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)
