package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-gateways/core"
)

var apiKeyPattern = regexp.MustCompile(`^gw_(live|test|dev)_[a-zA-Z0-9]{32}$`)

// APIKeyCredentials attaches a constant bearer key to every request. It
// carries no mutable state and never refreshes.
type APIKeyCredentials struct {
	apiKey string
}

func NewAPIKeyCredentials(apiKey string) (*APIKeyCredentials, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, core.NewConfigurationError("auth: api key is required")
	}
	if !apiKeyPattern.MatchString(apiKey) {
		return nil, core.NewConfigurationError(
			fmt.Sprintf("auth: invalid api key format, expected gw_<env>_<key>, got prefix %q", keyPrefix(apiKey)),
		)
	}
	return &APIKeyCredentials{apiKey: apiKey}, nil
}

func (a *APIKeyCredentials) Headers(context.Context) (map[string]string, error) {
	if a == nil || a.apiKey == "" {
		return nil, core.NewConfigurationError("auth: api key is required")
	}
	return map[string]string{"Authorization": "Bearer " + a.apiKey}, nil
}

func (a *APIKeyCredentials) NeedsRefresh() bool {
	return false
}

func (a *APIKeyCredentials) Refresh(context.Context) error {
	return nil
}

// keyPrefix keeps key material out of error messages.
func keyPrefix(apiKey string) string {
	parts := strings.SplitN(apiKey, "_", 3)
	if len(parts) < 3 {
		return apiKey
	}
	return parts[0] + "_" + parts[1] + "_…"
}
