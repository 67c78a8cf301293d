// Package api exposes a Dispatcher over HTTP.
//
// Routes, all under /v1/messages:
//
//	POST /              enqueue a message (202)
//	POST /send          send synchronously (200 with the result)
//	GET  /{key}/status  latest status for an idempotency key
//
// Every route is authenticated with auth.Middleware. The POST routes need
// auth.ActionSend and the GET route needs auth.ActionRead.
package api
