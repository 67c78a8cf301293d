// Package provider contains simulated delivery providers for demos and
// tests. None of them delivers anything.
package provider
