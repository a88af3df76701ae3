package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims extends JWT standard claims with the session ID.
// The token is a handle: everything else lives in the server-side record.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// generateToken creates a signed JWT handle for a session.
// The token expiry mirrors the session expiry so stale tokens fail
// signature validation before they ever hit a store.
func generateToken(sess *Session, secret []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(time.UnixMilli(sess.LoginTime)),
			ExpiresAt: jwt.NewNumericDate(time.UnixMilli(sess.ExpiresAt)),
		},
		SessionID: sess.ID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// parseToken validates a JWT handle and returns its claims.
func parseToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return claims, nil
}
