// Package auth authenticates and authorizes callers of the dispatcher's
// admin API.
//
// Authenticators turn request headers into an Identity: JWTAuthenticator
// validates HMAC-signed bearer tokens and APIKeyAuthenticator looks up
// hashed keys. CompositeAuthenticator tries several in order.
// RoleAuthorizer maps an action (ActionSend, ActionRead) to the roles that
// may perform it.
//
// Middleware and Require plug both into an HTTP router: failed
// authentication answers 401, a denied action answers 403.
package auth
