package domain

import (
	"errors"
	"time"
)

// AuthTokenKey is the slot under which the token record lives in a session.
const AuthTokenKey = "authToken"

// TokenLifetime is how long a freshly issued token is trusted by the dashboard.
const TokenLifetime = time.Hour

var (
	ErrNoToken        = errors.New("no auth token in session")
	ErrMalformedToken = errors.New("stored auth token is malformed")
	ErrExpired        = errors.New("auth token expired")
)

// IsSessionError reports whether err means the user has to log in again.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrNoToken) || errors.Is(err, ErrMalformedToken) || errors.Is(err, ErrExpired)
}

// AuthToken is the stored record: {"token": "...", "expiresAt": <epoch millis>}.
type AuthToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

func NewAuthToken(token string, expiresAt time.Time) AuthToken {
	return AuthToken{Token: token, ExpiresAt: expiresAt.UnixMilli()}
}

func (t AuthToken) Expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// ExpiredAt reports whether the token is no longer valid at now. A token whose
// expiry equals now is already expired.
func (t AuthToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt <= now.UnixMilli()
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
