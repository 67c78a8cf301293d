package store

import (
	"testing"
	"time"
)

func TestUnboundedPolicy(t *testing.T) {
	p := UnboundedPolicy()

	if p.Expires() {
		t.Error("Expires() = true, want false")
	}
	if p.Bounded() {
		t.Error("Bounded() = true, want false")
	}
}

func TestPolicy_Now(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Policy{Now: func() time.Time { return fixed }}

	if got := p.now(); !got.Equal(fixed) {
		t.Errorf("now() = %v, want %v", got, fixed)
	}

	if got := (Policy{}).now(); got.IsZero() {
		t.Error("now() with nil Now = zero time, want wall clock")
	}
}
