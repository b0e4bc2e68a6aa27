package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultCurrency         = "USD"
	defaultShippingFeeMinor = 500
	defaultMemberPlan       = "plus"
	defaultAppID            = "gocart"
	defaultSessionTTL       = 30 * time.Minute
	defaultStoreCacheTTL    = 5 * time.Minute
	defaultEnvironment      = "local"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	Firebase    FirebaseConfig
	Firestore   FirestoreConfig
	Stripe      StripeConfig
	Checkout    CheckoutConfig
	Redis       RedisConfig
	PubSub      PubSubConfig
	Environment string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings used for identity verification.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// StripeConfig collects payment provider secrets.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// CheckoutConfig controls pricing and payment-session behaviour.
type CheckoutConfig struct {
	Currency         string
	ShippingFeeMinor int64
	MemberPlan       string
	AppID            string
	SessionTTL       time.Duration
	SuccessURL       string
	CancelURL        string
}

// RedisConfig configures the optional storefront cache.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	StoreCacheTTL time.Duration
}

// PubSubConfig names the topics used for order lifecycle events.
type PubSubConfig struct {
	ProjectID        string
	OrderEventsTopic string
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError aggregates missing or malformed configuration fields.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid configuration: %s", strings.Join(e.fields, ", "))
}

// Fields lists the offending configuration fields.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises configuration loading.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile   string
	envMap    map[string]string
	skipEnv   bool
	resolver  SecretResolver
}

// WithEnvFile overrides the dotenv file consulted before process env vars.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies explicit values, mostly useful in tests.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables process environment lookups.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.skipEnv = true
	}
}

// WithSecretResolver enables secret:// reference resolution.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.resolver = resolver
	}
}

// Load reads configuration from the dotenv file and environment, resolving secret references.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	fileValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if !options.skipEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := fileValues[key]
		return value, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "GOCART_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "GOCART_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "GOCART_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "GOCART_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "GOCART_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "GOCART_FIREBASE_CREDENTIALS_FILE", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "GOCART_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "GOCART_FIRESTORE_EMULATOR_HOST", ""),
		},
		Stripe: StripeConfig{
			APIKey:        stringWithDefault(lookup, "GOCART_STRIPE_API_KEY", ""),
			WebhookSecret: stringWithDefault(lookup, "GOCART_STRIPE_WEBHOOK_SECRET", ""),
		},
		Checkout: CheckoutConfig{
			Currency:         strings.ToUpper(stringWithDefault(lookup, "GOCART_CHECKOUT_CURRENCY", defaultCurrency)),
			ShippingFeeMinor: int64WithDefault(lookup, "GOCART_CHECKOUT_SHIPPING_FEE_MINOR", defaultShippingFeeMinor),
			MemberPlan:       stringWithDefault(lookup, "GOCART_CHECKOUT_MEMBER_PLAN", defaultMemberPlan),
			AppID:            stringWithDefault(lookup, "GOCART_CHECKOUT_APP_ID", defaultAppID),
			SessionTTL:       durationWithDefault(lookup, "GOCART_CHECKOUT_SESSION_TTL", defaultSessionTTL),
			SuccessURL:       stringWithDefault(lookup, "GOCART_CHECKOUT_SUCCESS_URL", ""),
			CancelURL:        stringWithDefault(lookup, "GOCART_CHECKOUT_CANCEL_URL", ""),
		},
		Redis: RedisConfig{
			Addr:          stringWithDefault(lookup, "GOCART_REDIS_ADDR", ""),
			Password:      stringWithDefault(lookup, "GOCART_REDIS_PASSWORD", ""),
			DB:            intWithDefault(lookup, "GOCART_REDIS_DB", 0),
			StoreCacheTTL: durationWithDefault(lookup, "GOCART_REDIS_STORE_CACHE_TTL", defaultStoreCacheTTL),
		},
		PubSub: PubSubConfig{
			ProjectID:        stringWithDefault(lookup, "GOCART_PUBSUB_PROJECT_ID", ""),
			OrderEventsTopic: stringWithDefault(lookup, "GOCART_PUBSUB_ORDER_EVENTS_TOPIC", ""),
		},
		Environment: strings.ToLower(stringWithDefault(lookup, "GOCART_ENVIRONMENT", defaultEnvironment)),
	}

	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	if options.resolver != nil {
		for _, field := range []*string{
			&cfg.Stripe.APIKey,
			&cfg.Stripe.WebhookSecret,
			&cfg.Redis.Password,
		} {
			resolved, err := resolveSecret(ctx, *field, options.resolver)
			if err != nil {
				return Config{}, err
			}
			*field = resolved
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	trimmed := strings.TrimSpace(value)
	if !isSecretReference(trimmed) {
		return value, nil
	}
	resolved, err := resolver.ResolveSecret(ctx, trimmed)
	if err != nil {
		return "", fmt.Errorf("config: resolve secret %q: %w", redactSecretName(trimmed), err)
	}
	return resolved, nil
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	if cfg.Checkout.ShippingFeeMinor < 0 {
		invalid = append(invalid, "Checkout.ShippingFeeMinor")
	}
	if strings.TrimSpace(cfg.Checkout.Currency) == "" {
		invalid = append(invalid, "Checkout.Currency")
	}
	if cfg.Checkout.SessionTTL <= 0 {
		invalid = append(invalid, "Checkout.SessionTTL")
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return &ValidationError{fields: invalid}
}

func isSecretReference(value string) bool {
	return strings.HasPrefix(value, "secret://") || strings.HasPrefix(value, "sm://")
}

func redactSecretName(name string) string {
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	return name
}

func loadDotEnv(path string) (map[string]string, error) {
	values := make(map[string]string)
	if strings.TrimSpace(path) == "" {
		return values, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("config: open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read env file %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func int64WithDefault(lookup func(string) (string, bool), key string, fallback int64) int64 {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
