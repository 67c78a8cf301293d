package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonwraymond/dispatchops/auth"
	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/observe"
	"github.com/jonwraymond/dispatchops/resilience"
	"github.com/jonwraymond/dispatchops/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DISPATCH"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Auth modes.
const (
	AuthNone   = "none"
	AuthJWT    = "jwt"
	AuthAPIKey = "api_key"
	AuthAny    = "any" // JWT or API key
)

// Config is the complete dispatchd configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Breaker   BreakerConfig   `yaml:"breaker"`
	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit" split_words:"true"`
	Store     StoreConfig     `yaml:"store"`
	Queue     QueueConfig     `yaml:"queue"`
	Providers ProvidersConfig `yaml:"providers"`
	Auth      AuthConfig      `yaml:"auth"`
	Secrets   SecretsConfig   `yaml:"secrets"`
	Observe   observe.Config  `yaml:"observe"`
}

// HTTPConfig configures the admin server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`

	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string `yaml:"cors_origins" split_words:"true"`
}

// BreakerConfig mirrors resilience.CircuitBreakerConfig.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold" split_words:"true"`
	SuccessThreshold int           `yaml:"success_threshold" split_words:"true"`
	Timeout          time.Duration `yaml:"timeout"`
}

// RetryConfig mirrors resilience.RetryConfig.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" split_words:"true"`
	InitialDelay time.Duration `yaml:"initial_delay" split_words:"true"`
}

// RateLimitConfig mirrors resilience.RateLimiterConfig.
type RateLimitConfig struct {
	MaxTokens  int     `yaml:"max_tokens" split_words:"true"`
	RefillRate float64 `yaml:"refill_rate" split_words:"true"` // tokens per second
}

// StoreConfig sets retention for the idempotency and status stores.
// Zero values keep every record.
type StoreConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries" split_words:"true"`
}

// QueueConfig sets the backlog health thresholds.
type QueueConfig struct {
	WarningDepth  int `yaml:"warning_depth" split_words:"true"`
	CriticalDepth int `yaml:"critical_depth" split_words:"true"`
}

// ProvidersConfig configures the two delivery providers.
type ProvidersConfig struct {
	Primary   ProviderConfig `yaml:"primary"`
	Secondary ProviderConfig `yaml:"secondary"`
}

// ProviderConfig configures one simulated provider.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	FailPercent float64       `yaml:"fail_percent" split_words:"true"`
	Latency     time.Duration `yaml:"latency"`
}

// AuthConfig configures admin API authentication.
type AuthConfig struct {
	Mode      string         `yaml:"mode"`
	JWTSecret string         `yaml:"jwt_secret" split_words:"true"`
	Issuer    string         `yaml:"issuer"`
	Audience  string         `yaml:"audience"`
	APIKeys   []APIKeyConfig `yaml:"api_keys" ignored:"true"`
}

// APIKeyConfig registers one API key. Key is usually a secret reference.
type APIKeyConfig struct {
	ID        string   `yaml:"id"`
	Key       string   `yaml:"key"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// SecretsConfig configures secret resolution.
type SecretsConfig struct {
	// Strict rejects secret references that resolve to "".
	Strict bool `yaml:"strict"`

	// FileDir is the base directory for relative secretref:file paths.
	FileDir string `yaml:"file_dir" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 3,
			SuccessThreshold: 2,
			Timeout:          5 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  5,
			InitialDelay: time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxTokens:  dispatch.DefaultRateLimit.MaxTokens,
			RefillRate: dispatch.DefaultRateLimit.RefillRate,
		},
		Queue: QueueConfig{
			WarningDepth:  100,
			CriticalDepth: 1000,
		},
		Providers: ProvidersConfig{
			Primary:   ProviderConfig{Name: "primary", FailPercent: 20},
			Secondary: ProviderConfig{Name: "secondary", FailPercent: 20},
		},
		Auth:    AuthConfig{Mode: AuthNone},
		Secrets: SecretsConfig{Strict: true},
		Observe: observe.Config{
			ServiceName: "dispatchd",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Validate reports every invalid value, joined, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.HTTP.Addr == "" {
		bad("http.addr is required")
	}
	if c.Breaker.FailureThreshold < 1 {
		bad("breaker.failure_threshold must be at least 1, got %d", c.Breaker.FailureThreshold)
	}
	if c.Breaker.SuccessThreshold < 1 {
		bad("breaker.success_threshold must be at least 1, got %d", c.Breaker.SuccessThreshold)
	}
	if c.Breaker.Timeout <= 0 {
		bad("breaker.timeout must be positive, got %s", c.Breaker.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		bad("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.InitialDelay <= 0 {
		bad("retry.initial_delay must be positive, got %s", c.Retry.InitialDelay)
	}
	if c.RateLimit.MaxTokens < 0 {
		bad("rate_limit.max_tokens must not be negative, got %d", c.RateLimit.MaxTokens)
	}
	if c.RateLimit.RefillRate < 0 {
		bad("rate_limit.refill_rate must not be negative, got %g", c.RateLimit.RefillRate)
	}
	if c.Store.TTL < 0 || c.Store.MaxEntries < 0 {
		bad("store.ttl and store.max_entries must not be negative")
	}
	if c.Queue.WarningDepth < 1 || c.Queue.CriticalDepth < c.Queue.WarningDepth {
		bad("queue depths must satisfy 1 <= warning_depth <= critical_depth")
	}
	for _, p := range []ProviderConfig{c.Providers.Primary, c.Providers.Secondary} {
		if p.Name == "" {
			bad("provider name is required")
		}
		if p.FailPercent < 0 || p.FailPercent > 100 {
			bad("provider %q fail_percent must be within [0, 100], got %g", p.Name, p.FailPercent)
		}
		if p.Latency < 0 {
			bad("provider %q latency must not be negative", p.Name)
		}
	}
	if c.Providers.Primary.Name == c.Providers.Secondary.Name {
		bad("primary and secondary providers must have distinct names")
	}
	errs = append(errs, c.validateAuth()...)

	if err := c.Observe.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: observe: %w", ErrInvalid, err))
	}

	return errors.Join(errs...)
}

func (c *Config) validateAuth() []error {
	var errs []error
	a := c.Auth

	if !slices.Contains([]string{AuthNone, AuthJWT, AuthAPIKey, AuthAny}, a.Mode) {
		return []error{fmt.Errorf("%w: auth.mode %q is not one of none, jwt, api_key, any", ErrInvalid, a.Mode)}
	}
	if (a.Mode == AuthJWT || a.Mode == AuthAny) && len(a.JWTSecret) < 32 {
		errs = append(errs, fmt.Errorf("%w: auth.jwt_secret must be at least 32 bytes", ErrInvalid))
	}
	if a.Mode == AuthAPIKey && len(a.APIKeys) == 0 {
		errs = append(errs, fmt.Errorf("%w: auth.api_keys is empty", ErrInvalid))
	}
	for i, k := range a.APIKeys {
		if k.Key == "" || k.Principal == "" {
			errs = append(errs, fmt.Errorf("%w: auth.api_keys[%d] needs key and principal", ErrInvalid, i))
		}
	}
	return errs
}

// CircuitBreaker converts the breaker section.
func (c *Config) CircuitBreaker() resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		FailureThreshold: c.Breaker.FailureThreshold,
		SuccessThreshold: c.Breaker.SuccessThreshold,
		Timeout:          c.Breaker.Timeout,
	}
}

// RetryPolicy converts the retry section.
func (c *Config) RetryPolicy() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:  c.Retry.MaxAttempts,
		InitialDelay: c.Retry.InitialDelay,
	}
}

// RateLimiter converts the rate limit section.
func (c *Config) RateLimiter() resilience.RateLimiterConfig {
	return resilience.RateLimiterConfig{
		MaxTokens:  c.RateLimit.MaxTokens,
		RefillRate: c.RateLimit.RefillRate,
	}
}

// StorePolicy converts the store section.
func (c *Config) StorePolicy() store.Policy {
	return store.Policy{TTL: c.Store.TTL, MaxEntries: c.Store.MaxEntries}
}

// DispatchOptions returns the dispatcher options this configuration
// implies. Logging and instrumentation are added by the caller.
func (c *Config) DispatchOptions() []dispatch.Option {
	policy := c.StorePolicy()
	return []dispatch.Option{
		dispatch.WithCircuitBreaker(c.CircuitBreaker()),
		dispatch.WithRetry(c.RetryPolicy()),
		dispatch.WithRateLimit(c.RateLimiter()),
		dispatch.WithSentStore(store.NewMemoryStore[bool](policy)),
		dispatch.WithStatusStore(store.NewMemoryStore[dispatch.Status](policy)),
	}
}

// Authenticator builds the authenticator for the configured mode.
func (c *Config) Authenticator() auth.Authenticator {
	jwtAuth := func() auth.Authenticator {
		return auth.NewJWTAuthenticator(auth.JWTConfig{
			Secret:   []byte(c.Auth.JWTSecret),
			Issuer:   c.Auth.Issuer,
			Audience: c.Auth.Audience,
		})
	}
	keyAuth := func() auth.Authenticator {
		keys := auth.NewMemoryAPIKeyStore()
		for _, k := range c.Auth.APIKeys {
			keys.Add(&auth.APIKeyInfo{
				ID:        k.ID,
				KeyHash:   auth.HashAPIKey(k.Key),
				Principal: k.Principal,
				Roles:     k.Roles,
			})
		}
		return auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, keys)
	}

	switch c.Auth.Mode {
	case AuthJWT:
		return jwtAuth()
	case AuthAPIKey:
		return keyAuth()
	case AuthAny:
		return auth.NewCompositeAuthenticator(jwtAuth(), keyAuth())
	default:
		return auth.AnonymousAuthenticator{}
	}
}
