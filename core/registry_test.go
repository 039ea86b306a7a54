package core

import (
	"context"
	"testing"
)

type staticVerifier struct {
	verified bool
	err      error
}

func (v staticVerifier) Verify(context.Context, InboundRequest) (bool, error) {
	return v.verified, v.err
}

func TestVerifierRegistryRegisterAndGet(t *testing.T) {
	registry := NewVerifierRegistry()

	if err := registry.Register(WebhookRegistration{ProviderID: "", Verifier: staticVerifier{}}); err == nil {
		t.Fatal("expected error for empty provider id")
	}
	if err := registry.Register(WebhookRegistration{ProviderID: "ozow"}); err == nil {
		t.Fatal("expected error for nil verifier")
	}

	if err := registry.Register(WebhookRegistration{ProviderID: " ozow ", Verifier: staticVerifier{verified: true}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(WebhookRegistration{ProviderID: "ozow", Verifier: staticVerifier{}}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}

	entry, ok := registry.Get("ozow")
	if !ok {
		t.Fatal("expected registration lookup to succeed")
	}
	if entry.ProviderID != "ozow" {
		t.Fatalf("expected trimmed provider id, got %q", entry.ProviderID)
	}
	if _, ok := registry.Get("payfast"); ok {
		t.Fatal("expected missing provider lookup to fail")
	}
}

func TestVerifierRegistryProvidersSorted(t *testing.T) {
	registry := NewVerifierRegistry()
	for _, id := range []string{"yoco", "ozow", "payfast"} {
		if err := registry.Register(WebhookRegistration{ProviderID: id, Verifier: staticVerifier{}}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	ids := registry.Providers()
	want := []string{"ozow", "payfast", "yoco"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d providers, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected sorted providers %v, got %v", want, ids)
		}
	}
}
