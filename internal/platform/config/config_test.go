package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Checkout.ShippingFeeMinor != 500 {
		t.Fatalf("expected default shipping fee 500, got %d", cfg.Checkout.ShippingFeeMinor)
	}
	if cfg.Checkout.MemberPlan != "plus" {
		t.Fatalf("expected member plan plus, got %s", cfg.Checkout.MemberPlan)
	}
	if cfg.Checkout.AppID != "gocart" {
		t.Fatalf("expected app id gocart, got %s", cfg.Checkout.AppID)
	}
	if cfg.Checkout.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %s", cfg.Checkout.SessionTTL)
	}
	if cfg.Environment != "local" {
		t.Fatalf("expected local environment, got %s", cfg.Environment)
	}
}

func TestLoadEnvMapOverridesAndNormalises(t *testing.T) {
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"GOCART_SERVER_PORT":                "9090",
		"GOCART_CHECKOUT_CURRENCY":          "usd",
		"GOCART_CHECKOUT_SHIPPING_FEE_MINOR": "750",
		"GOCART_FIREBASE_PROJECT_ID":        "demo-project",
		"GOCART_ENVIRONMENT":                "Production",
	}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Checkout.Currency != "USD" {
		t.Fatalf("expected currency upper-cased to USD, got %s", cfg.Checkout.Currency)
	}
	if cfg.Checkout.ShippingFeeMinor != 750 {
		t.Fatalf("expected shipping fee 750, got %d", cfg.Checkout.ShippingFeeMinor)
	}
	if cfg.Firestore.ProjectID != "demo-project" {
		t.Fatalf("expected firestore project inherited from firebase, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.PubSub.ProjectID != "demo-project" {
		t.Fatalf("expected pubsub project inherited, got %s", cfg.PubSub.ProjectID)
	}
	if cfg.Environment != "production" {
		t.Fatalf("expected environment lower-cased, got %s", cfg.Environment)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	contents := "# storefront settings\nexport GOCART_REDIS_ADDR=localhost:6379\nGOCART_REDIS_DB=2\nGOCART_CHECKOUT_SESSION_TTL=\"45m\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(path))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("expected redis addr from file, got %q", cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 2 {
		t.Fatalf("expected redis db 2, got %d", cfg.Redis.DB)
	}
	if cfg.Checkout.SessionTTL != 45*time.Minute {
		t.Fatalf("expected session ttl 45m, got %s", cfg.Checkout.SessionTTL)
	}
}

func TestLoadResolvesSecretReferences(t *testing.T) {
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if ref == "secret://projects/demo/secrets/stripe-key" {
			return "sk_test_resolved", nil
		}
		return "", errors.New("unknown secret")
	})

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""),
		WithEnvMap(map[string]string{
			"GOCART_STRIPE_API_KEY": "secret://projects/demo/secrets/stripe-key",
		}),
		WithSecretResolver(resolver),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Stripe.APIKey != "sk_test_resolved" {
		t.Fatalf("expected resolved stripe key, got %q", cfg.Stripe.APIKey)
	}
}

func TestLoadSecretResolutionFailure(t *testing.T) {
	resolver := SecretResolverFunc(func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	})

	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""),
		WithEnvMap(map[string]string{
			"GOCART_STRIPE_WEBHOOK_SECRET": "secret://projects/demo/secrets/webhook",
		}),
		WithSecretResolver(resolver),
	)
	if err == nil {
		t.Fatal("expected error when secret resolution fails")
	}
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"GOCART_CHECKOUT_SHIPPING_FEE_MINOR": "-1",
	}))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := vErr.Fields()
	if len(fields) != 1 || fields[0] != "Checkout.ShippingFeeMinor" {
		t.Fatalf("unexpected invalid fields: %v", fields)
	}
}
