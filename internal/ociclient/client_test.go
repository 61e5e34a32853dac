package ociclient

import (
	"context"
	"testing"

	"oras.land/oras-go/v2/registry/remote/auth"
)

func TestWithPlainHTTP(t *testing.T) {
	client := NewClient(WithPlainHTTP(true))
	if !client.plainHTTP {
		t.Error("expected plainHTTP to be true")
	}
}

func TestWithConcurrency(t *testing.T) {
	client := NewClient(WithConcurrency(4))
	if client.concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", client.concurrency)
	}

	client = NewClient(WithConcurrency(0))
	if client.concurrency != defaultConcurrency {
		t.Errorf("concurrency = %d, want default %d", client.concurrency, defaultConcurrency)
	}
}

func TestNewClient_DefaultAuth(t *testing.T) {
	client := NewClient()
	if client.authClient == nil {
		t.Fatal("expected non-nil authClient")
	}

	cred, err := client.authClient.Credential(context.Background(), "nonexistent.registry.io")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if cred != auth.EmptyCredential {
		t.Errorf("expected empty credential for unknown host, got %+v", cred)
	}
}
