package dispatch

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jonwraymond/dispatchops/store"
)

func TestNewKey(t *testing.T) {
	a, b := NewKey(), NewKey()

	if a == b {
		t.Errorf("NewKey() returned %q twice", a)
	}
	id, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("uuid.Parse(%q) error = %v", a, err)
	}
	if id.Version() != 4 {
		t.Errorf("version = %d, want 4", id.Version())
	}
}

func TestContentKey_Deterministic(t *testing.T) {
	t1 := Task{Recipient: "a@example.com", Subject: "Hi", Body: "one"}
	t2 := t1
	t2.IdempotencyKey = "ignored"

	if ContentKey(t1) != ContentKey(t2) {
		t.Error("ContentKey should ignore the idempotency key")
	}
	if !strings.HasPrefix(ContentKey(t1), "msg:") {
		t.Errorf("ContentKey() = %q, want msg: prefix", ContentKey(t1))
	}
	if got := len(ContentKey(t1)); got != len("msg:")+32 {
		t.Errorf("len(ContentKey()) = %d, want %d", got, len("msg:")+32)
	}
}

func TestContentKey_FieldBoundaries(t *testing.T) {
	a := Task{Recipient: "a", Subject: "bc", Body: ""}
	b := Task{Recipient: "ab", Subject: "c", Body: ""}

	if ContentKey(a) == ContentKey(b) {
		t.Error("ContentKey collides across field boundaries")
	}
}

func TestTask_Validate(t *testing.T) {
	if err := task(NewKey()).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := task("").Validate(); !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("Validate() with empty key = %v, want store.ErrInvalidKey", err)
	}
	if err := task(strings.Repeat("k", store.MaxKeyLength+1)).Validate(); !errors.Is(err, store.ErrKeyTooLong) {
		t.Errorf("Validate() with long key = %v, want store.ErrKeyTooLong", err)
	}
}
