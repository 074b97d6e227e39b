package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"slotbooker/internal/clock"
	"slotbooker/internal/domain"
)

// tokenClaims binds a booking attempt (session) to the hold it opened.
// These tokens are attempt-binding only, not user authentication.
type tokenClaims struct {
	jwt.RegisteredClaims
	HoldID string `json:"hold_id"`
}

type jwtCodec struct {
	secret []byte
	clk    clock.Clock
}

// NewJWTCodec returns a SessionTokenCodec that signs session tokens with
// HS256 using the given secret.
func NewJWTCodec(secret string, clk clock.Clock) domain.SessionTokenCodec {
	return &jwtCodec{secret: []byte(secret), clk: clk}
}

func (c *jwtCodec) Issue(sessionID, holdID string, expiry time.Duration) (string, error) {
	now := c.clk.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		HoldID: holdID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (c *jwtCodec) Verify(tokenString string) (sessionID, holdID string, err error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.clk.Now))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	if claims.Subject == "" || claims.HoldID == "" {
		return "", "", fmt.Errorf("token missing session or hold binding")
	}
	return claims.Subject, claims.HoldID, nil
}
