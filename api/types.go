package api

import "github.com/jonwraymond/dispatchops/dispatch"

// Key modes for requests without an idempotency key.
const (
	// KeyModeUUID generates a random key, so every request is a new message.
	KeyModeUUID = "uuid"
	// KeyModeContent derives the key from the message content, so
	// resubmitting the same message is deduplicated.
	KeyModeContent = "content"
)

// MessageRequest is the body of both POST routes.
type MessageRequest struct {
	Recipient      string `json:"recipient"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// KeyMode picks how a missing IdempotencyKey is filled in.
	// Default: KeyModeUUID
	KeyMode string `json:"key_mode,omitempty"`
}

// Task converts the request, filling in a missing key.
func (r MessageRequest) Task() (dispatch.Task, error) {
	task := dispatch.Task{
		Recipient:      r.Recipient,
		Subject:        r.Subject,
		Body:           r.Body,
		IdempotencyKey: r.IdempotencyKey,
	}
	if task.IdempotencyKey != "" {
		return task, nil
	}

	switch r.KeyMode {
	case "", KeyModeUUID:
		task.IdempotencyKey = dispatch.NewKey()
	case KeyModeContent:
		task.IdempotencyKey = dispatch.ContentKey(task)
	default:
		return dispatch.Task{}, ErrUnknownKeyMode
	}
	return task, nil
}

// EnqueueResponse is returned by POST /v1/messages.
type EnqueueResponse struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// SendResponse is returned by POST /v1/messages/send.
type SendResponse struct {
	IdempotencyKey string           `json:"idempotency_key"`
	Sent           bool             `json:"sent"`
	Outcome        string           `json:"outcome"`
	Status         *dispatch.Status `json:"status,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// StatusResponse is returned by GET /v1/messages/{key}/status.
type StatusResponse struct {
	IdempotencyKey string          `json:"idempotency_key"`
	Status         dispatch.Status `json:"status"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
