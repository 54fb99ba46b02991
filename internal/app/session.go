package app

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// tokenExpired reads the exp claim without verifying the signature.
// Opaque (non-JWT) tokens are never considered expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return now.After(time.Unix(int64(exp), 0))
}
