// Package config loads dispatchd's process configuration.
//
// Values are layered in this order, later layers winning:
//
//  1. Default()
//  2. a YAML file
//  3. DISPATCH_* environment variables (after loading optional .env files)
//
// Credential fields are then passed through a secret.Resolver, so they
// may hold ${VAR} references or secretref:env:NAME / secretref:file:PATH
// values instead of plaintext. Load finishes with Validate.
package config
