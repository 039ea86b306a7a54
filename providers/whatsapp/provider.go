// Package whatsapp implements webhook verification and event mapping for
// the WhatsApp Business API.
package whatsapp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-gateways/core"
	"github.com/goliatone/go-gateways/webhooks"
)

const (
	ProviderID      = "whatsapp"
	SignatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

type Config struct {
	WebhookToken string `json:"webhook_token" koanf:"webhook_token" mapstructure:"webhook_token"`
}

// NewWebhookVerifier builds the raw-body HMAC verifier. The platform
// transmits the digest as "sha256=<hex>" so the comparison runs over the
// prefixed form.
func NewWebhookVerifier(cfg Config) core.WebhookVerifier {
	return webhooks.BodyHMACVerifier{
		Header: SignatureHeader,
		Prefix: signaturePrefix,
		Secret: strings.TrimSpace(cfg.WebhookToken),
	}
}

var messageStatuses = map[string]core.MessageStatus{
	"sent":      core.MessageStatusSent,
	"delivered": core.MessageStatusDelivered,
	"read":      core.MessageStatusRead,
	"failed":    core.MessageStatusFailed,
}

type webhookEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					ID        string `json:"id"`
					From      string `json:"from"`
					Timestamp string `json:"timestamp"`
				} `json:"messages"`
				Statuses []struct {
					ID          string `json:"id"`
					RecipientID string `json:"recipient_id"`
					Status      string `json:"status"`
					Timestamp   string `json:"timestamp"`
				} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Mapper converts a verified notification body into a message event. A
// notification can batch several entries; Map surfaces the first and
// ParseMessages returns the full flattened list.
type Mapper struct{}

func (m Mapper) Map(req core.InboundRequest) (core.WebhookEvent, error) {
	events, err := m.ParseMessages(req)
	if err != nil {
		return core.WebhookEvent{}, err
	}
	if len(events) == 0 {
		return core.WebhookEvent{}, fmt.Errorf("whatsapp: webhook payload carries no message entries")
	}
	first := events[0]
	return core.WebhookEvent{
		ProviderID: ProviderID,
		Kind:       core.EventKindMessage,
		Message:    &first,
	}, nil
}

// ParseMessages flattens the entry/changes/value nesting into message
// events: delivery status updates for outbound messages and receipt events
// for inbound ones.
func (Mapper) ParseMessages(req core.InboundRequest) ([]core.MessageEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(req.Body, &envelope); err != nil {
		return nil, fmt.Errorf("whatsapp: decode webhook payload: %w", err)
	}

	var events []core.MessageEvent
	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			for _, status := range change.Value.Statuses {
				rawStatus := strings.TrimSpace(status.Status)
				normalized, ok := messageStatuses[rawStatus]
				if !ok {
					normalized = core.MessageStatusPending
				}
				events = append(events, core.MessageEvent{
					ProviderID: ProviderID,
					MessageID:  status.ID,
					Recipient:  status.RecipientID,
					Status:     normalized,
					RawStatus:  rawStatus,
					OccurredAt: parseTimestamp(status.Timestamp),
				})
			}
			for _, message := range change.Value.Messages {
				events = append(events, core.MessageEvent{
					ProviderID: ProviderID,
					MessageID:  message.ID,
					Recipient:  message.From,
					Status:     core.MessageStatusDelivered,
					RawStatus:  "received",
					OccurredAt: parseTimestamp(message.Timestamp),
				})
			}
		}
	}
	return events, nil
}

func Registration(cfg Config) core.WebhookRegistration {
	return core.WebhookRegistration{
		ProviderID: ProviderID,
		Verifier:   NewWebhookVerifier(cfg),
		Mapper:     Mapper{},
	}
}

// parseTimestamp handles the unix-seconds string the platform sends.
func parseTimestamp(raw string) time.Time {
	seconds, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || seconds <= 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}

var _ core.EventMapper = Mapper{}
