// Package yoco implements webhook verification and event mapping for the
// Yoco online payments API.
package yoco

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/goliatone/go-gateways/core"
	"github.com/goliatone/go-gateways/webhooks"
)

const (
	ProviderID      = "yoco"
	SignatureHeader = "Webhook-Signature"
)

type Config struct {
	SecretKey string `json:"secret_key" koanf:"secret_key" mapstructure:"secret_key"`
}

// NewWebhookVerifier builds the raw-body HMAC verifier. Yoco transmits the
// digest as bare hex without a prefix.
func NewWebhookVerifier(cfg Config) core.WebhookVerifier {
	return webhooks.BodyHMACVerifier{
		Header: SignatureHeader,
		Secret: strings.TrimSpace(cfg.SecretKey),
	}
}

var eventStatuses = map[string]core.PaymentStatus{
	"payment.succeeded": core.PaymentStatusCompleted,
	"payment.failed":    core.PaymentStatusFailed,
	"payment.cancelled": core.PaymentStatusCancelled,
}

type webhookEnvelope struct {
	Type    string `json:"type"`
	Payload struct {
		ID       string  `json:"id"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"payload"`
}

// Mapper converts a verified event body into a payment event. Amounts
// arrive in cents already.
type Mapper struct{}

func (Mapper) Map(req core.InboundRequest) (core.WebhookEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(req.Body, &envelope); err != nil {
		return core.WebhookEvent{}, fmt.Errorf("yoco: decode webhook payload: %w", err)
	}

	rawStatus := strings.TrimSpace(envelope.Type)
	status, ok := eventStatuses[rawStatus]
	if !ok {
		status = core.PaymentStatusPending
	}

	currency := strings.TrimSpace(envelope.Payload.Currency)
	if currency == "" {
		currency = "ZAR"
	}

	return core.WebhookEvent{
		ProviderID: ProviderID,
		Kind:       core.EventKindPayment,
		Payment: &core.PaymentEvent{
			ProviderID:    ProviderID,
			Reference:     envelope.Payload.ID,
			TransactionID: envelope.Payload.ID,
			AmountCents:   int(math.Round(envelope.Payload.Amount)),
			Currency:      currency,
			Status:        status,
			RawStatus:     rawStatus,
		},
	}, nil
}

func Registration(cfg Config) core.WebhookRegistration {
	return core.WebhookRegistration{
		ProviderID: ProviderID,
		Verifier:   NewWebhookVerifier(cfg),
		Mapper:     Mapper{},
	}
}

var _ core.EventMapper = Mapper{}
