package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("DISPATCH_TEST_HOST", "smtp.example.com")

	got, err := ExpandEnvStrict("${DISPATCH_TEST_HOST}:25")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if got != "smtp.example.com:25" {
		t.Errorf("ExpandEnvStrict() = %q, want smtp.example.com:25", got)
	}
}

func TestExpandEnvStrict_MissingVar(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING_B} c=${MISSING_A} d=${MISSING_B}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("error = %v, want ErrMissingEnv", err)
	}
	if !strings.HasSuffix(err.Error(), "MISSING_A, MISSING_B") {
		t.Errorf("error = %q, want sorted unique names", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	got, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if got != "$y" {
		t.Errorf("ExpandEnvStrict() = %q, want $y", got)
	}
}
