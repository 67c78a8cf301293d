package secret

import "errors"

var (
	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrUnknownProvider indicates a reference to an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider not registered")

	// ErrEmptySecret indicates a strict resolver got an empty value.
	ErrEmptySecret = errors.New("secret: empty value")

	// ErrNotFound indicates the provider has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrInvalidRegistration indicates a blank name or nil factory.
	ErrInvalidRegistration = errors.New("secret: invalid provider registration")
)
