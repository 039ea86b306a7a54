// Package payfast implements webhook verification and event mapping for
// the PayFast payment gateway.
package payfast

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-gateways/core"
	"github.com/goliatone/go-gateways/webhooks"
)

const (
	ProviderID     = "payfast"
	SignatureField = "signature"
)

type Config struct {
	MerchantID  string `json:"merchant_id" koanf:"merchant_id" mapstructure:"merchant_id"`
	MerchantKey string `json:"merchant_key" koanf:"merchant_key" mapstructure:"merchant_key"`
	Passphrase  string `json:"passphrase" koanf:"passphrase" mapstructure:"passphrase"`
}

// NewWebhookVerifier builds the ITN (instant transaction notification)
// verifier. The passphrase is optional and only participates when set on
// the merchant account.
func NewWebhookVerifier(cfg Config) core.WebhookVerifier {
	return webhooks.SortedQueryVerifier{
		SignatureField: SignatureField,
		Passphrase:     strings.TrimSpace(cfg.Passphrase),
	}
}

var paymentStatuses = map[string]core.PaymentStatus{
	"COMPLETE":  core.PaymentStatusCompleted,
	"FAILED":    core.PaymentStatusFailed,
	"PENDING":   core.PaymentStatusPending,
	"CANCELLED": core.PaymentStatusCancelled,
}

// Mapper converts a verified ITN form into a payment event.
type Mapper struct{}

func (Mapper) Map(req core.InboundRequest) (core.WebhookEvent, error) {
	rawStatus := strings.TrimSpace(req.Form["payment_status"])
	status, ok := paymentStatuses[rawStatus]
	if !ok {
		status = core.PaymentStatusPending
	}

	return core.WebhookEvent{
		ProviderID: ProviderID,
		Kind:       core.EventKindPayment,
		Payment: &core.PaymentEvent{
			ProviderID:    ProviderID,
			Reference:     strings.TrimSpace(req.Form["m_payment_id"]),
			TransactionID: strings.TrimSpace(req.Form["pf_payment_id"]),
			AmountCents:   amountCents(req.Form["amount_gross"]),
			Currency:      "ZAR",
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

func amountCents(raw string) int {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return int(math.Round(amount * 100))
}

var _ core.EventMapper = Mapper{}
