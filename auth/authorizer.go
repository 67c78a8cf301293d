package auth

import (
	"context"
	"fmt"
)

// Dispatcher actions.
const (
	ActionSend = "dispatch:send"
	ActionRead = "dispatch:read"
)

// Dispatcher roles. A role named after an action grants that action;
// RoleAdmin grants every action.
const (
	RoleSender = ActionSend
	RoleReader = ActionRead
	RoleAdmin  = "dispatch:admin"
)

// Authorizer decides whether an identity may perform an action.
type Authorizer interface {
	// Authorize returns nil when permitted and an error matching
	// ErrForbidden otherwise.
	Authorize(ctx context.Context, id *Identity, action string) error
}

// AuthzError describes a denied action.
type AuthzError struct {
	Principal string
	Action    string
	Reason    string
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("auth: %q may not %s: %s", e.Principal, e.Action, e.Reason)
}

// Is reports true for ErrForbidden.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

// RoleAuthorizer permits an action when the identity holds one of the
// roles mapped to it. Unmapped actions are denied.
type RoleAuthorizer struct {
	rules map[string][]string
}

// DefaultRules maps each dispatcher action to the roles allowed to
// perform it.
func DefaultRules() map[string][]string {
	return map[string][]string{
		ActionSend: {RoleSender, RoleAdmin},
		ActionRead: {RoleReader, RoleSender, RoleAdmin},
	}
}

// NewRoleAuthorizer creates a RoleAuthorizer. A nil rules map uses
// DefaultRules.
func NewRoleAuthorizer(rules map[string][]string) *RoleAuthorizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &RoleAuthorizer{rules: rules}
}

// Authorize checks id's roles against the rule for action.
func (a *RoleAuthorizer) Authorize(_ context.Context, id *Identity, action string) error {
	if id == nil {
		return &AuthzError{Action: action, Reason: "unauthenticated"}
	}
	roles, ok := a.rules[action]
	if !ok {
		return &AuthzError{Principal: id.Principal, Action: action, Reason: "unknown action"}
	}
	if !id.HasAnyRole(roles...) {
		return &AuthzError{Principal: id.Principal, Action: action, Reason: "missing role"}
	}
	return nil
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, id *Identity, action string) error

// Authorize calls f.
func (f AuthorizerFunc) Authorize(ctx context.Context, id *Identity, action string) error {
	return f(ctx, id, action)
}

var _ Authorizer = (*RoleAuthorizer)(nil)
