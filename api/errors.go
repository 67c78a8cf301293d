package api

import "errors"

var (
	// ErrInvalidRequest indicates a request body that could not be decoded.
	ErrInvalidRequest = errors.New("api: invalid request")

	// ErrUnknownKeyMode indicates a key_mode other than uuid or content.
	ErrUnknownKeyMode = errors.New("api: unknown key_mode")

	// ErrNotFound indicates no status is recorded for the key.
	ErrNotFound = errors.New("api: no status for key")
)
