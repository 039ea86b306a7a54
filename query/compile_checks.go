package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-gateways/core"
	"github.com/goliatone/go-gateways/webhooks"
)

var (
	_ gocmd.Querier[GetActiveTokensMessage, core.TokenPair]      = (*GetActiveTokensQuery)(nil)
	_ gocmd.Querier[TokenHistoryMessage, []core.TokenPair]       = (*TokenHistoryQuery)(nil)
	_ gocmd.Querier[GetDeliveryMessage, webhooks.DeliveryRecord] = (*GetDeliveryQuery)(nil)
	_ gocmd.Querier[ListProvidersMessage, []string]              = (*ListProvidersQuery)(nil)
)
