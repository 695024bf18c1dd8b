// Package handles generates the short public identifiers used in list URLs.
package handles

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	alphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MinLength = 4
	MaxLength = 10

	// MaxAttempts bounds Unique; with 62^4 short handles alone a
	// collision streak this long means the space is effectively full.
	MaxAttempts = 32
)

// ErrHandleSpaceExhausted is returned when no free handle was found within MaxAttempts
var ErrHandleSpaceExhausted = errors.New("no free list handle found")

// ExistsFunc reports whether a handle is already taken
type ExistsFunc func(ctx context.Context, handle string) (bool, error)

// Generate returns a random handle of 4 to 10 alphanumeric characters
func Generate() (string, error) {
	n, err := randomInt(MaxLength - MinLength + 1)
	if err != nil {
		return "", err
	}
	length := MinLength + n

	handle := make([]byte, length)
	for i := range handle {
		idx, err := randomInt(len(alphabet))
		if err != nil {
			return "", err
		}
		handle[i] = alphabet[idx]
	}

	return string(handle), nil
}

// Unique generates handles until exists reports one as free
func Unique(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		handle, err := Generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate handle: %w", err)
		}

		taken, err := exists(ctx, handle)
		if err != nil {
			return "", fmt.Errorf("failed to check handle: %w", err)
		}
		if !taken {
			return handle, nil
		}
	}

	return "", ErrHandleSpaceExhausted
}

// Valid reports whether s has the shape of a generated handle
func Valid(s string) bool {
	if len(s) < MinLength || len(s) > MaxLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func randomInt(max int) (int, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(num.Int64()), nil
}
