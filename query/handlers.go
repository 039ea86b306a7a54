package query

import (
	"context"

	"github.com/goliatone/go-gateways/core"
	"github.com/goliatone/go-gateways/webhooks"
)

// TokenReader is the read side of token persistence. The sqlstore TokenStore
// and its cached wrapper both satisfy it.
type TokenReader interface {
	GetActive(ctx context.Context, accountID string) (core.TokenPair, error)
	History(ctx context.Context, accountID string) ([]core.TokenPair, error)
}

// DeliveryReader looks up stored webhook deliveries.
type DeliveryReader interface {
	Get(ctx context.Context, providerID string, deliveryID string) (webhooks.DeliveryRecord, error)
}

// ProviderReader reports the registered provider tags.
type ProviderReader interface {
	Providers() []string
}

type GetActiveTokensQuery struct {
	reader TokenReader
}

func NewGetActiveTokensQuery(reader TokenReader) *GetActiveTokensQuery {
	return &GetActiveTokensQuery{reader: reader}
}

func (q *GetActiveTokensQuery) Query(ctx context.Context, msg GetActiveTokensMessage) (core.TokenPair, error) {
	if q == nil || q.reader == nil {
		return core.TokenPair{}, queryDependencyError("query: token reader is required")
	}
	return q.reader.GetActive(ctx, msg.AccountID)
}

type TokenHistoryQuery struct {
	reader TokenReader
}

func NewTokenHistoryQuery(reader TokenReader) *TokenHistoryQuery {
	return &TokenHistoryQuery{reader: reader}
}

func (q *TokenHistoryQuery) Query(ctx context.Context, msg TokenHistoryMessage) ([]core.TokenPair, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: token reader is required")
	}
	return q.reader.History(ctx, msg.AccountID)
}

type GetDeliveryQuery struct {
	reader DeliveryReader
}

func NewGetDeliveryQuery(reader DeliveryReader) *GetDeliveryQuery {
	return &GetDeliveryQuery{reader: reader}
}

func (q *GetDeliveryQuery) Query(ctx context.Context, msg GetDeliveryMessage) (webhooks.DeliveryRecord, error) {
	if q == nil || q.reader == nil {
		return webhooks.DeliveryRecord{}, queryDependencyError("query: delivery reader is required")
	}
	return q.reader.Get(ctx, msg.ProviderID, msg.DeliveryID)
}

type ListProvidersQuery struct {
	reader ProviderReader
}

func NewListProvidersQuery(reader ProviderReader) *ListProvidersQuery {
	return &ListProvidersQuery{reader: reader}
}

func (q *ListProvidersQuery) Query(_ context.Context, _ ListProvidersMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: provider reader is required")
	}
	return q.reader.Providers(), nil
}
