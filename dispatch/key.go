package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
)

// NewKey returns a random idempotency key (a version 4 UUID).
func NewKey() string {
	return uuid.NewString()
}

// ContentKey derives a deterministic idempotency key from the message
// content, so resubmitting an identical message is deduplicated.
// Format: msg:<hash> where hash is the first 32 hex characters of
// SHA-256(JSON(recipient, subject, body)).
func ContentKey(t Task) string {
	// A fixed struct marshals with a stable field order.
	canonical, _ := json.Marshal(struct {
		Recipient string `json:"r"`
		Subject   string `json:"s"`
		Body      string `json:"b"`
	}{t.Recipient, t.Subject, t.Body})

	sum := sha256.Sum256(canonical)
	return "msg:" + hex.EncodeToString(sum[:16])
}
