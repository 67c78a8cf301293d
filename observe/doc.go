// Package observe provides observability primitives for message dispatch.
//
// It is a pure instrumentation library: no delivery, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the dispatcher
// and the admin HTTP server.
package observe
