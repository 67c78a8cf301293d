// Package store provides keyed record storage for dispatch bookkeeping.
//
// It provides a generic Store interface with an in-memory implementation,
// key validation, and a Policy for optional expiry and size bounds.
package store
