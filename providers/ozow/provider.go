// Package ozow implements webhook verification and event mapping for the
// Ozow instant EFT gateway.
package ozow

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-gateways/core"
	"github.com/goliatone/go-gateways/webhooks"
)

const (
	ProviderID     = "ozow"
	SignatureField = "Hash"
)

// HashFields is the fixed signing order. Missing fields contribute an
// empty string to the digest.
var HashFields = []string{
	"SiteCode", "CountryCode", "CurrencyCode", "Amount",
	"TransactionReference", "BankReference", "CancelUrl",
	"ErrorUrl", "SuccessUrl", "NotifyUrl", "IsTest",
}

type Config struct {
	SiteCode   string `json:"site_code" koanf:"site_code" mapstructure:"site_code"`
	PrivateKey string `json:"private_key" koanf:"private_key" mapstructure:"private_key"`
}

func NewWebhookVerifier(cfg Config) core.WebhookVerifier {
	return webhooks.OrderedFieldsVerifier{
		Fields:         HashFields,
		SignatureField: SignatureField,
		Secret:         strings.TrimSpace(cfg.PrivateKey),
	}
}

var paymentStatuses = map[string]core.PaymentStatus{
	"Complete":             core.PaymentStatusCompleted,
	"Cancelled":            core.PaymentStatusCancelled,
	"Error":                core.PaymentStatusFailed,
	"Abandoned":            core.PaymentStatusCancelled,
	"PendingInvestigation": core.PaymentStatusProcessing,
}

// Mapper converts a verified notification form into a payment event.
type Mapper struct{}

func (Mapper) Map(req core.InboundRequest) (core.WebhookEvent, error) {
	rawStatus := strings.TrimSpace(req.Form["Status"])
	status, ok := paymentStatuses[rawStatus]
	if !ok {
		status = core.PaymentStatusPending
	}

	currency := strings.TrimSpace(req.Form["CurrencyCode"])
	if currency == "" {
		currency = "ZAR"
	}

	return core.WebhookEvent{
		ProviderID: ProviderID,
		Kind:       core.EventKindPayment,
		Payment: &core.PaymentEvent{
			ProviderID:    ProviderID,
			Reference:     strings.TrimSpace(req.Form["TransactionReference"]),
			TransactionID: strings.TrimSpace(req.Form["TransactionId"]),
			AmountCents:   amountCents(req.Form["Amount"]),
			Currency:      currency,
			Status:        status,
			RawStatus:     rawStatus,
		},
	}, nil
}

// Registration bundles the verifier and mapper for registry wiring.
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
