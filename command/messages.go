package command

import (
	"strings"

	"github.com/goliatone/go-gateways/core"
)

const (
	TypeRefreshCredentials = "gateways.command.credentials.refresh"
	TypeUpdateTokens       = "gateways.command.tokens.update"
	TypeProcessWebhook     = "gateways.command.webhooks.process"
)

type RefreshCredentialsMessage struct {
	AccountID string
}

func (RefreshCredentialsMessage) Type() string { return TypeRefreshCredentials }

func (m RefreshCredentialsMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return commandValidationError("account_id", "account id is required")
	}
	return nil
}

type UpdateTokensMessage struct {
	AccountID string
	Pair      core.TokenPair
}

func (UpdateTokensMessage) Type() string { return TypeUpdateTokens }

func (m UpdateTokensMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return commandValidationError("account_id", "account id is required")
	}
	if strings.TrimSpace(m.Pair.AccessToken) == "" {
		return commandValidationError("access_token", "access token is required")
	}
	return nil
}

type ProcessWebhookMessage struct {
	ProviderID string
	Request    core.InboundRequest
}

func (ProcessWebhookMessage) Type() string { return TypeProcessWebhook }

func (m ProcessWebhookMessage) Validate() error {
	if strings.TrimSpace(m.ProviderID) == "" {
		return commandValidationError("provider_id", "provider id is required")
	}
	if len(m.Request.Form) == 0 && len(m.Request.Body) == 0 {
		return commandValidationError("request", "webhook payload is required")
	}
	return nil
}
