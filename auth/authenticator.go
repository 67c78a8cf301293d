package auth

import (
	"context"
	"net/http"
)

// Authenticator validates credentials and returns an identity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Authenticate returns (nil, error) only for internal failures;
//   rejected credentials are reported as a Result with Authenticated false.
type Authenticator interface {
	Name() string

	// Supports reports whether the request carries credentials this
	// authenticator understands.
	Supports(ctx context.Context, req *Request) bool

	Authenticate(ctx context.Context, req *Request) (*Result, error)
}

// Request carries the credentials of one call.
type Request struct {
	Header http.Header
}

// NewRequest builds a Request from an HTTP request.
func NewRequest(r *http.Request) *Request {
	return &Request{Header: r.Header}
}

// Get returns the first value of header key.
func (r *Request) Get(key string) string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get(key)
}

// Result is the outcome of an authentication attempt.
type Result struct {
	Authenticated bool
	Identity      *Identity
	Error         error
	Method        Method
}

// Success creates a successful result for id.
func Success(id *Identity) *Result {
	return &Result{Authenticated: true, Identity: id, Method: id.Method}
}

// Failure creates a failed result.
func Failure(err error, method Method) *Result {
	return &Result{Error: err, Method: method}
}

// AnonymousAuthenticator accepts every request as AnonymousIdentity.
type AnonymousAuthenticator struct{}

// Name returns "anonymous".
func (AnonymousAuthenticator) Name() string { return "anonymous" }

// Supports always returns true.
func (AnonymousAuthenticator) Supports(context.Context, *Request) bool { return true }

// Authenticate always succeeds.
func (AnonymousAuthenticator) Authenticate(context.Context, *Request) (*Result, error) {
	return Success(AnonymousIdentity()), nil
}

var _ Authenticator = AnonymousAuthenticator{}
