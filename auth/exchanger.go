package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-gateways/core"
)

const defaultExchangeTimeout = 30 * time.Second

// HTTPTokenExchanger trades a refresh token for a new grant against the
// platform token endpoint.
type HTTPTokenExchanger struct {
	endpoint string
	client   *http.Client
}

type ExchangerOption func(*HTTPTokenExchanger)

func WithHTTPClient(client *http.Client) ExchangerOption {
	return func(e *HTTPTokenExchanger) {
		if client != nil {
			e.client = client
		}
	}
}

func NewHTTPTokenExchanger(endpoint string, opts ...ExchangerOption) (*HTTPTokenExchanger, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, core.NewConfigurationError("auth: token endpoint is required")
	}
	exchanger := &HTTPTokenExchanger{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultExchangeTimeout},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(exchanger)
	}
	return exchanger, nil
}

func (e *HTTPTokenExchanger) Exchange(ctx context.Context, refreshToken string) (core.TokenGrant, error) {
	if e == nil || strings.TrimSpace(e.endpoint) == "" {
		return core.TokenGrant{}, core.NewConfigurationError("auth: token endpoint is required")
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return core.TokenGrant{}, core.NewConfigurationError("auth: refresh token is required")
	}

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return core.TokenGrant{}, core.NewRefreshError("auth: encode token exchange request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return core.TokenGrant{}, core.NewRefreshError("auth: build token exchange request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return core.TokenGrant{}, core.NewRefreshError("auth: token endpoint request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return core.TokenGrant{}, core.NewRefreshError(
			fmt.Sprintf("auth: token endpoint returned status %d", resp.StatusCode), nil,
		)
	}

	var grant core.TokenGrant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return core.TokenGrant{}, core.NewRefreshError("auth: decode token exchange response", err)
	}
	if strings.TrimSpace(grant.AccessToken) == "" {
		return core.TokenGrant{}, core.NewRefreshError("auth: token endpoint returned an empty access token", nil)
	}
	return grant, nil
}

var _ core.TokenExchanger = (*HTTPTokenExchanger)(nil)
