package dispatch

import (
	"fmt"

	"github.com/jonwraymond/dispatchops/store"
)

// Task is one message to deliver. It is a value type and is not modified
// once submitted.
type Task struct {
	Recipient      string `json:"recipient"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Validate checks that the idempotency key is usable as a store key.
func (t Task) Validate() error {
	if err := store.ValidateKey(t.IdempotencyKey); err != nil {
		return fmt.Errorf("dispatch: idempotency key: %w", err)
	}
	return nil
}
