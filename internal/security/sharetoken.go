package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidShareToken covers malformed, tampered and expired share links
var ErrInvalidShareToken = errors.New("invalid share token")

// ShareClaims grant edit access to one list
type ShareClaims struct {
	ListHandle string `json:"lh"`
	jwt.RegisteredClaims
}

// ShareTokens signs and verifies list share links
type ShareTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewShareTokens creates a signer using HS256
func NewShareTokens(secret string, ttl time.Duration) *ShareTokens {
	return &ShareTokens{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for handle, issued by userID
func (s *ShareTokens) Issue(handle string, userID int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := ShareClaims{
		ListHandle: handle,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign share token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies token and returns the list handle it grants
func (s *ShareTokens) Parse(token string) (string, error) {
	claims := &ShareClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.ListHandle == "" {
		return "", ErrInvalidShareToken
	}
	return claims.ListHandle, nil
}
