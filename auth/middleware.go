package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Middleware authenticates every request with authn and stores the
// identity in the request context. Unauthenticated requests get 401.
func Middleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := NewRequest(r)
			if !authn.Supports(r.Context(), req) {
				deny(w, http.StatusUnauthorized, ErrMissingCredentials)
				return
			}

			res, err := authn.Authenticate(r.Context(), req)
			if err != nil {
				deny(w, http.StatusInternalServerError, err)
				return
			}
			if !res.Authenticated {
				deny(w, http.StatusUnauthorized, res.Error)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), res.Identity)))
		})
	}
}

// Require rejects requests whose identity may not perform action with 403.
// It must run after Middleware.
func Require(authz Authorizer, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if err := authz.Authorize(r.Context(), id, action); err != nil {
				code := http.StatusForbidden
				if id == nil {
					code = http.StatusUnauthorized
				}
				deny(w, code, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, code int, err error) {
	if err == nil {
		err = ErrInvalidCredentials
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="dispatch"`)
	}
	msg := err.Error()
	if code == http.StatusInternalServerError && !errors.Is(err, ErrInvalidCredentials) {
		msg = "auth: internal error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
