// Package dispatch sends transactional messages through unreliable delivery
// providers.
//
// A Dispatcher owns a FIFO queue, an idempotency store and a status store.
// Every message runs the same pipeline:
//
//  1. a token from the rate limiter, or the message fails fast;
//  2. a lookup in the idempotency store, so a key already sent is not sent
//     again;
//  3. the circuit breaker, with the primary provider (retried with
//     exponential backoff) as its operation and the secondary provider
//     (retried the same way) as its fallback.
//
// Queued messages are processed one at a time by a single drain goroutine;
// a message finishes all of its retries before the next one starts.
// Send runs the pipeline directly on the caller's goroutine and does not
// take part in queue ordering.
//
// Delivery failures are never returned to the submitter. They are logged,
// recorded as StatusFailed, and reported as a false result from Send.
package dispatch
