package llm

import (
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientOptions{}); err == nil {
		t.Fatalf("expected error when API key is missing")
	}
}

func TestNewClientKeepsDefaultEndpointWhenUnset(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientOptions{APIKey: "secret"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if client.BaseURL() != "" {
		t.Fatalf("expected empty base URL, got %q", client.BaseURL())
	}
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientOptions{APIKey: "secret", BaseURL: " https://example.com/v1 "})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if client.BaseURL() != "https://example.com/v1" {
		t.Fatalf("expected trimmed base URL, got %q", client.BaseURL())
	}
}
