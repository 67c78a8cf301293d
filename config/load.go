package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/dispatchops/secret"
)

// Load builds a Config from Default, the YAML file at path (skipped when
// path is ""), the given .env files and DISPATCH_* variables, then
// resolves secrets and validates.
//
// Missing .env files are ignored. Variables already set in the process
// environment take precedence over .env values.
func Load(ctx context.Context, path string, envFiles ...string) (Config, error) {
	cfg := Default()

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := Decode(bytes.NewReader(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := ResolveSecrets(ctx, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode strictly decodes YAML into cfg, keeping values the document
// does not mention. Unknown keys are errors.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ResolveSecrets replaces the credential fields of cfg with their
// resolved values using the env and file secret providers.
func ResolveSecrets(ctx context.Context, cfg *Config) error {
	reg := secret.NewRegistry()
	if err := secret.RegisterBuiltins(reg); err != nil {
		return err
	}
	resolver, err := secret.NewResolverFromRegistry(cfg.Secrets.Strict, reg,
		map[string]map[string]any{"file": {"dir": cfg.Secrets.FileDir}},
		"env", "file",
	)
	if err != nil {
		return err
	}

	fields := []*string{&cfg.Auth.JWTSecret}
	for i := range cfg.Auth.APIKeys {
		fields = append(fields, &cfg.Auth.APIKeys[i].Key)
	}
	if err := resolver.ResolveAll(ctx, fields...); err != nil {
		return fmt.Errorf("config: resolve secrets: %w", err)
	}
	return nil
}
