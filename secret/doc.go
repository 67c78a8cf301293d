// Package secret resolves secret values referenced from dispatcher
// configuration.
//
// A configuration value is first expanded against the environment with
// ExpandEnvStrict, then any secret reference is replaced by the value its
// provider returns. References have the form
//
//	secretref:<provider>:<ref>
//
// either as the whole value or inline ("Bearer secretref:env:API_TOKEN").
// Two providers are built in: "env" reads an environment variable and
// "file" reads a file such as a mounted Kubernetes secret.
package secret
