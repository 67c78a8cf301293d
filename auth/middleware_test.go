package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func protected(authn Authenticator, action string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(PrincipalFromContext(r.Context())))
	})
	return Middleware(authn)(Require(NewRoleAuthorizer(nil), action)(ok))
}

func TestMiddleware(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.Add(&APIKeyInfo{KeyHash: HashAPIKey("reader"), Principal: "dashboard", Roles: []string{RoleReader}})
	authn := NewAPIKeyAuthenticator(APIKeyConfig{}, store)

	tests := []struct {
		name     string
		key      string
		action   string
		wantCode int
		wantBody string
	}{
		{"no credentials", "", ActionRead, http.StatusUnauthorized, ""},
		{"bad key", "wrong", ActionRead, http.StatusUnauthorized, ""},
		{"allowed", "reader", ActionRead, http.StatusOK, "dashboard"},
		{"forbidden", "reader", ActionSend, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			protected(authn, tt.action).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantCode == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate header")
			}
		})
	}
}

func TestMiddleware_Anonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	protected(AnonymousAuthenticator{}, ActionSend).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Errorf("anonymous = (%d, %q), want (200, anonymous)", rec.Code, rec.Body.String())
	}
}

func TestMiddleware_InternalError(t *testing.T) {
	authn := NewAPIKeyAuthenticator(APIKeyConfig{}, failingStore{errors.New("db password leaked in error")})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "k")
	rec := httptest.NewRecorder()

	protected(authn, ActionRead).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"error\":\"auth: internal error\"}\n" {
		t.Errorf("Body = %q, want a generic message", body)
	}
}

func TestRequire_WithoutIdentity(t *testing.T) {
	h := Require(NewRoleAuthorizer(nil), ActionRead)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler should not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", rec.Code)
	}
}
