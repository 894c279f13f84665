package users

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Token kinds carried in the token_type claim. Access and refresh tokens are
// additionally signed with different secrets, so a token of one kind can
// never verify as the other.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// GenerateAccessToken signs a short-lived access token for the user.
func (s *Service) GenerateAccessToken(user *User) (string, error) {
	ttl := time.Duration(s.config.AccessTokenMinutes) * time.Minute
	return signToken(user.ID.Hex(), TokenKindAccess, s.config.AccessTokenSecret, ttl)
}

// GenerateRefreshToken signs a long-lived refresh token for the user.
// Persisting it on the user record is the caller's job; the token service
// itself is stateless.
func (s *Service) GenerateRefreshToken(user *User) (string, error) {
	ttl := time.Duration(s.config.RefreshTokenDays) * 24 * time.Hour
	return signToken(user.ID.Hex(), TokenKindRefresh, s.config.RefreshTokenSecret, ttl)
}

func signToken(userID, kind, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    userID,
		"token_type": kind,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", ErrGenToken
	}
	return signed, nil
}

// ParseToken verifies signature, expiry, and token kind, and returns the
// embedded user id. Expired tokens and otherwise invalid tokens fail with
// distinct sentinels (ErrTokenExpired vs ErrTokenInvalid); HTTP handlers
// collapse both to 401.
func ParseToken(raw, secret, kind string) (bson.ObjectID, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return bson.ObjectID{}, ErrTokenExpired
		}
		return bson.ObjectID{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return bson.ObjectID{}, ErrTokenInvalid
	}

	if tokenType, _ := claims["token_type"].(string); tokenType != kind {
		return bson.ObjectID{}, ErrTokenInvalid
	}

	idHex, _ := claims["user_id"].(string)
	id, err := bson.ObjectIDFromHex(idHex)
	if err != nil {
		return bson.ObjectID{}, ErrTokenInvalid
	}

	return id, nil
}
