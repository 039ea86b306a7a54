package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-gateways/core"
)

func TestHTTPTokenExchangerSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload["refresh_token"] != "refresh-1" {
			t.Errorf("unexpected refresh token %q", payload["refresh_token"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh-access",
			"refresh_token": "refresh-2",
			"expires_in":    3600,
		})
	}))
	defer server.Close()

	exchanger, err := NewHTTPTokenExchanger(server.URL)
	if err != nil {
		t.Fatalf("new exchanger: %v", err)
	}
	grant, err := exchanger.Exchange(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if grant.AccessToken != "fresh-access" || grant.RefreshToken != "refresh-2" || grant.ExpiresIn != 3600 {
		t.Fatalf("unexpected grant: %+v", grant)
	}
}

func TestHTTPTokenExchangerErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	exchanger, err := NewHTTPTokenExchanger(server.URL)
	if err != nil {
		t.Fatalf("new exchanger: %v", err)
	}
	_, err = exchanger.Exchange(context.Background(), "refresh-1")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !core.IsRefreshError(err) {
		t.Fatalf("expected refresh error, got %v", err)
	}
}

func TestHTTPTokenExchangerMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	exchanger, err := NewHTTPTokenExchanger(server.URL)
	if err != nil {
		t.Fatalf("new exchanger: %v", err)
	}
	if _, err := exchanger.Exchange(context.Background(), "refresh-1"); !core.IsRefreshError(err) {
		t.Fatalf("expected refresh error, got %v", err)
	}
}

func TestHTTPTokenExchangerEmptyAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "", "expires_in": 60})
	}))
	defer server.Close()

	exchanger, err := NewHTTPTokenExchanger(server.URL)
	if err != nil {
		t.Fatalf("new exchanger: %v", err)
	}
	if _, err := exchanger.Exchange(context.Background(), "refresh-1"); !core.IsRefreshError(err) {
		t.Fatalf("expected refresh error, got %v", err)
	}
}

func TestHTTPTokenExchangerValidation(t *testing.T) {
	if _, err := NewHTTPTokenExchanger(""); !core.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	exchanger, err := NewHTTPTokenExchanger("https://auth.example.com/token")
	if err != nil {
		t.Fatalf("new exchanger: %v", err)
	}
	if _, err := exchanger.Exchange(context.Background(), "  "); !core.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for blank refresh token, got %v", err)
	}
}

func TestHTTPTokenExchangerTransportFailure(t *testing.T) {
	exchanger, err := NewHTTPTokenExchanger("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("new exchanger: %v", err)
	}
	if _, err := exchanger.Exchange(context.Background(), "refresh-1"); !core.IsRefreshError(err) {
		t.Fatalf("expected refresh error, got %v", err)
	}
}
