package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestConfigurationErrorPredicate(t *testing.T) {
	err := NewConfigurationError("core: merchant key is required")
	if !IsConfigurationError(err) {
		t.Fatal("expected configuration error predicate to match")
	}
	if IsRefreshError(err) {
		t.Fatal("configuration error must not satisfy refresh predicate")
	}
	if err.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", err.Code)
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsConfigurationError(wrapped) {
		t.Fatal("expected predicate to match through wrapping")
	}
}

func TestRefreshErrorPredicate(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewRefreshError("core: token exchange failed", cause)
	if !IsRefreshError(err) {
		t.Fatal("expected refresh error predicate to match")
	}
	if IsConfigurationError(err) {
		t.Fatal("refresh error must not satisfy configuration predicate")
	}
	if err.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", err.Code)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive")
	}
}

func TestGatewayErrorMapper(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		textCode string
	}{
		{
			name:     "provider_not_registered",
			err:      errors.New("core: provider not registered: ozow"),
			textCode: GatewayErrorProviderNotFound,
		},
		{
			name:     "missing_secret",
			err:      errors.New("webhooks: signature secret is required"),
			textCode: GatewayErrorConfigMissing,
		},
		{
			name:     "refresh_failure",
			err:      errors.New("auth: refresh failed with status 502"),
			textCode: GatewayErrorRefreshFailed,
		},
		{
			name:     "rich_error_passthrough",
			err:      NewConfigurationError("core: passphrase is required"),
			textCode: GatewayErrorConfigMissing,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := gatewayErrorMapper(tc.err)
			if mapped == nil {
				t.Fatal("expected mapped error")
			}
			if mapped.TextCode != tc.textCode {
				t.Fatalf("expected text code %q, got %q", tc.textCode, mapped.TextCode)
			}
			if mapped.Code == 0 {
				t.Fatal("expected HTTP status code to be populated")
			}
		})
	}
}

func TestEnsureGatewayErrorEnvelopeDefaults(t *testing.T) {
	raw := goerrors.New("", goerrors.CategoryInternal)
	enveloped := ensureGatewayErrorEnvelope(raw)
	if enveloped.Message == "" {
		t.Fatal("expected default internal message")
	}
	if enveloped.TextCode != GatewayErrorInternal {
		t.Fatalf("expected internal text code, got %q", enveloped.TextCode)
	}
	if enveloped.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", enveloped.Code)
	}
}
