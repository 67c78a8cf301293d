package secret

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name   string
	values map[string]string
	err    error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.values[ref], nil
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		in       string
		provider string
		ref      string
		ok       bool
	}{
		{"secretref:env:TOKEN", "env", "TOKEN", true},
		{"secretref:file:/run/secrets/a:b", "file", "/run/secrets/a:b", true},
		{"secretref:env:", "", "", false},
		{"secretref::x", "", "", false},
		{"plain", "", "", false},
	}

	for _, tt := range tests {
		provider, ref, ok := ParseSecretRef(tt.in)
		if provider != tt.provider || ref != tt.ref || ok != tt.ok {
			t.Errorf("ParseSecretRef(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, provider, ref, ok, tt.provider, tt.ref, tt.ok)
		}
	}
}

func TestResolver_FullRef(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	got, err := r.ResolveValue(context.Background(), "secretref:stub:alpha")
	if err != nil || got != "one" {
		t.Errorf("ResolveValue() = (%q, %v), want (one, nil)", got, err)
	}
}

func TestResolver_InlineRefs(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"a": "1", "b": "2"}})

	got, err := r.ResolveValue(context.Background(), "Bearer secretref:stub:a and secretref:stub:b")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "Bearer 1 and 2" {
		t.Errorf("ResolveValue() = %q, want %q", got, "Bearer 1 and 2")
	}
}

func TestResolver_EnvThenRef(t *testing.T) {
	t.Setenv("SECRET_NAME", "alpha")
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	got, err := r.ResolveValue(context.Background(), "secretref:stub:${SECRET_NAME}")
	if err != nil || got != "one" {
		t.Errorf("ResolveValue() = (%q, %v), want (one, nil)", got, err)
	}
}

func TestResolver_Errors(t *testing.T) {
	ctx := context.Background()
	providerErr := errors.New("vault sealed")
	r := NewResolver(true,
		&stubProvider{name: "empty", values: map[string]string{}},
		&stubProvider{name: "broken", err: providerErr},
	)

	if _, err := r.ResolveValue(ctx, "secretref:missing:x"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("unknown provider error = %v, want ErrUnknownProvider", err)
	}
	if _, err := r.ResolveValue(ctx, "secretref:empty:x"); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("empty value error = %v, want ErrEmptySecret", err)
	}
	if _, err := r.ResolveValue(ctx, "x secretref:broken:y"); !errors.Is(err, providerErr) {
		t.Errorf("inline provider error = %v, want %v", err, providerErr)
	}

	lenient := NewResolver(false, &stubProvider{name: "empty"})
	if got, err := lenient.ResolveValue(ctx, "secretref:empty:x"); err != nil || got != "" {
		t.Errorf("lenient ResolveValue() = (%q, %v), want (\"\", nil)", got, err)
	}
}

func TestResolver_Nil(t *testing.T) {
	t.Setenv("X", "y")
	var r *Resolver

	got, err := r.ResolveValue(context.Background(), "${X}-secretref:env:X")
	if err != nil || got != "y-secretref:env:X" {
		t.Errorf("nil ResolveValue() = (%q, %v)", got, err)
	}
}

func TestResolver_ResolveAll(t *testing.T) {
	t.Setenv("DISPATCH_TEST_KEY", "k")
	r := NewResolver(true, EnvProvider{})

	a, b, empty := "secretref:env:DISPATCH_TEST_KEY", "plain", ""
	if err := r.ResolveAll(context.Background(), &a, &b, &empty, nil); err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if a != "k" || b != "plain" || empty != "" {
		t.Errorf("ResolveAll() = (%q, %q, %q)", a, b, empty)
	}
}

func TestNewResolverFromRegistry(t *testing.T) {
	t.Setenv("DISPATCH_TEST_KEY", "from-env")
	reg := NewRegistry()
	_ = RegisterBuiltins(reg)

	r, err := NewResolverFromRegistry(true, reg, nil, "env", "file")
	if err != nil {
		t.Fatalf("NewResolverFromRegistry() error = %v", err)
	}
	got, err := r.ResolveValue(context.Background(), "secretref:env:DISPATCH_TEST_KEY")
	if err != nil || got != "from-env" {
		t.Errorf("ResolveValue() = (%q, %v), want (from-env, nil)", got, err)
	}

	if _, err := NewResolverFromRegistry(true, reg, nil, "vault"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("unknown name error = %v, want ErrUnknownProvider", err)
	}
}
