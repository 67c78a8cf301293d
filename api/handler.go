package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/dispatchops/auth"
	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/observe"
)

// Dispatcher is the part of *dispatch.Dispatcher the API uses.
type Dispatcher interface {
	Enqueue(ctx context.Context, task dispatch.Task) error
	Dispatch(ctx context.Context, task dispatch.Task) (dispatch.Outcome, error)
	Status(ctx context.Context, key string) (dispatch.Status, bool)
}

// Config configures a Handler.
type Config struct {
	// Authenticator identifies callers.
	// Default: auth.AnonymousAuthenticator{}
	Authenticator auth.Authenticator

	// Authorizer decides what callers may do.
	// Default: auth.NewRoleAuthorizer(nil)
	Authorizer auth.Authorizer

	// Logger receives one entry per accepted message.
	// Default: observe.NewNopLogger()
	Logger observe.Logger

	// MaxBodyBytes caps request bodies.
	// Default: 1 MiB
	MaxBodyBytes int64
}

// Handler serves the message routes.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: failures are written as ErrorResponse JSON; handlers never panic
//   on bad input.
type Handler struct {
	dispatcher Dispatcher
	config     Config
}

// NewHandler creates a Handler for d.
func NewHandler(d Dispatcher, config Config) *Handler {
	if config.Authenticator == nil {
		config.Authenticator = auth.AnonymousAuthenticator{}
	}
	if config.Authorizer == nil {
		config.Authorizer = auth.NewRoleAuthorizer(nil)
	}
	if config.Logger == nil {
		config.Logger = observe.NewNopLogger()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}
	config.Logger = config.Logger.With(observe.Field{Key: "component", Value: "api"})

	return &Handler{dispatcher: d, config: config}
}

// Mount registers the routes on r under /v1/messages.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/v1/messages", func(r chi.Router) {
		r.Use(auth.Middleware(h.config.Authenticator))

		r.With(auth.Require(h.config.Authorizer, auth.ActionSend)).Post("/", h.Enqueue)
		r.With(auth.Require(h.config.Authorizer, auth.ActionSend)).Post("/send", h.Send)
		r.With(auth.Require(h.config.Authorizer, auth.ActionRead)).Get("/{key}/status", h.Status)
	})
}

// Routes returns a router serving only the message routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

// Enqueue queues a message and answers 202 with its key.
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	task, ok := h.decodeTask(w, r)
	if !ok {
		return
	}

	if err := h.dispatcher.Enqueue(r.Context(), task); err != nil {
		writeError(w, submitStatus(err), err)
		return
	}

	h.config.Logger.Info(r.Context(), "message queued",
		observe.Field{Key: "key", Value: task.IdempotencyKey},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(r.Context())},
	)
	writeJSON(w, http.StatusAccepted, EnqueueResponse{IdempotencyKey: task.IdempotencyKey})
}

// Send runs the pipeline on the request goroutine. A message that was not
// delivered is still a 200; Sent and Outcome say what happened.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	task, ok := h.decodeTask(w, r)
	if !ok {
		return
	}

	outcome, err := h.dispatcher.Dispatch(r.Context(), task)
	if errors.Is(err, dispatch.ErrClosed) {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	resp := SendResponse{
		IdempotencyKey: task.IdempotencyKey,
		Sent:           outcome.Delivered(),
		Outcome:        outcome.String(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	if s, ok := h.dispatcher.Status(r.Context(), task.IdempotencyKey); ok {
		resp.Status = &s
	}

	h.config.Logger.Info(r.Context(), "message dispatched",
		observe.Field{Key: "key", Value: task.IdempotencyKey},
		observe.Field{Key: "outcome", Value: resp.Outcome},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(r.Context())},
	)
	writeJSON(w, http.StatusOK, resp)
}

// Status answers the latest status for the key in the path, or 404.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	s, ok := h.dispatcher.Status(r.Context(), key)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", ErrNotFound, key))
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{IdempotencyKey: key, Status: s})
}

func (h *Handler) decodeTask(w http.ResponseWriter, r *http.Request) (dispatch.Task, bool) {
	var req MessageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return dispatch.Task{}, false
	}

	task, err := req.Task()
	if err == nil {
		err = task.Validate()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return dispatch.Task{}, false
	}
	return task, true
}

func submitStatus(err error) int {
	if errors.Is(err, dispatch.ErrClosed) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

var _ Dispatcher = (*dispatch.Dispatcher)(nil)
