package sqlstore

import "github.com/goliatone/go-gateways/webhooks"

var _ webhooks.DeliveryLedger = (*WebhookDeliveryStore)(nil)
