// Package tokens inspects backend-issued bearer tokens without verifying
// them. The signing key stays on the backend; the client only needs to know
// whether a persisted token is already past its expiry.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a jwt")

type Claims struct {
	UserID string `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func ClaimsFromToken(tokenStr string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return &claims, nil
}

// Expired reports whether tokenStr is a JWT whose exp lies before now.
// Opaque tokens and tokens without exp are never considered expired.
func Expired(tokenStr string, now time.Time) bool {
	claims, err := ClaimsFromToken(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
