package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	testSecret = []byte("test-secret-key-at-least-32-bytes!")
	testNow    = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return testNow }

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "ops@example.com",
		"iss":   "dispatchops",
		"aud":   "dispatch-api",
		"exp":   testNow.Add(time.Hour).Unix(),
		"roles": []string{RoleSender},
	}
}

func headerRequest(kv ...string) *Request {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return &Request{Header: h}
}
