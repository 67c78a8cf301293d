package store

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a record key.
const MaxKeyLength = 512

// Sentinel errors for store operations.
var (
	ErrInvalidKey = errors.New("store: key is invalid")
	ErrKeyTooLong = errors.New("store: key exceeds max length")
)

// Store holds one value per key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get never errors; it returns the zero value and false on miss.
type Store[V any] interface {
	// Get retrieves a value. Returns (zero, false) on miss.
	Get(ctx context.Context, key string) (V, bool)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value V) error

	// Delete removes a value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is usable as a record key.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
