package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeClient struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	value, ok := f.values[req.GetName()]
	if !ok {
		return nil, status.Error(codes.NotFound, "secret not found")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
	}, nil
}

func (f *fakeClient) Close() error { return nil }

func TestResolveSecretRemote(t *testing.T) {
	client := &fakeClient{values: map[string]string{
		"projects/demo/secrets/stripe-key/versions/latest": "sk_test_123",
	}}
	fetcher, err := NewFetcher(context.Background(), WithClient(client), WithProject("demo"), WithFallbackFile(""))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.ResolveSecret(context.Background(), "secret://stripe-key")
	if err != nil {
		t.Fatalf("ResolveSecret: %v", err)
	}
	if value != "sk_test_123" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestResolveSecretCaches(t *testing.T) {
	client := &fakeClient{values: map[string]string{
		"projects/demo/secrets/webhook/versions/latest": "whsec_1",
	}}
	fetcher, err := NewFetcher(context.Background(), WithClient(client), WithProject("demo"), WithFallbackFile(""))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := fetcher.ResolveSecret(context.Background(), "secret://webhook"); err != nil {
			t.Fatalf("ResolveSecret call %d: %v", i, err)
		}
	}
	if client.calls != 1 {
		t.Fatalf("expected a single remote call, got %d", client.calls)
	}

	fetcher.Invalidate("secret://webhook")
	if _, err := fetcher.ResolveSecret(context.Background(), "secret://webhook"); err != nil {
		t.Fatalf("ResolveSecret after invalidate: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected second remote call after invalidate, got %d", client.calls)
	}
}

func TestResolveSecretFallbackOnUnavailable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".secrets.local")
	if err := os.WriteFile(path, []byte("# local secrets\nsecret://stripe-key=sk_local\n"), 0o600); err != nil {
		t.Fatalf("write fallback file: %v", err)
	}

	client := &fakeClient{err: status.Error(codes.Unavailable, "down")}
	fetcher, err := NewFetcher(context.Background(), WithClient(client), WithProject("demo"), WithFallbackFile(path))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.ResolveSecret(context.Background(), "secret://stripe-key")
	if err != nil {
		t.Fatalf("ResolveSecret: %v", err)
	}
	if value != "sk_local" {
		t.Fatalf("expected fallback value, got %q", value)
	}
}

func TestResolveSecretHardErrorDoesNotFallBack(t *testing.T) {
	client := &fakeClient{err: status.Error(codes.NotFound, "missing")}
	fetcher, err := NewFetcher(context.Background(), WithClient(client), WithProject("demo"), WithFallbackFile(""))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	if _, err := fetcher.ResolveSecret(context.Background(), "secret://missing"); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestParseReference(t *testing.T) {
	ref, err := parseReference("secret://stripe-key?project=other&version=3")
	if err != nil {
		t.Fatalf("parseReference: %v", err)
	}
	if ref.secret != "stripe-key" || ref.project != "other" || ref.version != "3" {
		t.Fatalf("unexpected parse result: %+v", ref)
	}

	if _, err := parseReference("vault://nope"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
	if _, err := parseReference("  "); err == nil {
		t.Fatal("expected error for empty reference")
	}

	smRef, err := parseReference("sm://legacy-key")
	if err != nil {
		t.Fatalf("parseReference sm scheme: %v", err)
	}
	if smRef.secret != "legacy-key" {
		t.Fatalf("expected sm:// alias to normalise, got %+v", smRef)
	}
}
