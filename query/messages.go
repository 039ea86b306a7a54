package query

import "strings"

const (
	TypeGetActiveTokens = "gateways.query.tokens.active"
	TypeTokenHistory    = "gateways.query.tokens.history"
	TypeGetDelivery     = "gateways.query.deliveries.get"
	TypeListProviders   = "gateways.query.providers.list"
)

type GetActiveTokensMessage struct {
	AccountID string
}

func (GetActiveTokensMessage) Type() string { return TypeGetActiveTokens }

func (m GetActiveTokensMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return queryValidationError("account_id", "account id is required")
	}
	return nil
}

type TokenHistoryMessage struct {
	AccountID string
}

func (TokenHistoryMessage) Type() string { return TypeTokenHistory }

func (m TokenHistoryMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return queryValidationError("account_id", "account id is required")
	}
	return nil
}

type GetDeliveryMessage struct {
	ProviderID string
	DeliveryID string
}

func (GetDeliveryMessage) Type() string { return TypeGetDelivery }

func (m GetDeliveryMessage) Validate() error {
	if strings.TrimSpace(m.ProviderID) == "" {
		return queryValidationError("provider_id", "provider id is required")
	}
	if strings.TrimSpace(m.DeliveryID) == "" {
		return queryValidationError("delivery_id", "delivery id is required")
	}
	return nil
}

type ListProvidersMessage struct{}

func (ListProvidersMessage) Type() string { return TypeListProviders }

func (ListProvidersMessage) Validate() error { return nil }
