package core

import (
	"strings"
	"time"
)

// PaymentStatus is the normalized lifecycle state for payment webhooks.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// MessageStatus is the normalized delivery state for messaging webhooks.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
)

var knownPaymentStatuses = map[PaymentStatus]struct{}{
	PaymentStatusPending:    {},
	PaymentStatusProcessing: {},
	PaymentStatusCompleted:  {},
	PaymentStatusFailed:     {},
	PaymentStatusCancelled:  {},
}

var knownMessageStatuses = map[MessageStatus]struct{}{
	MessageStatusPending:   {},
	MessageStatusSent:      {},
	MessageStatusDelivered: {},
	MessageStatusRead:      {},
	MessageStatusFailed:    {},
}

// NormalizePaymentStatus clamps a candidate status to the closed set.
// Unrecognized provider statuses collapse to pending so downstream state
// machines never see values outside the contract.
func NormalizePaymentStatus(candidate string) PaymentStatus {
	status := PaymentStatus(strings.TrimSpace(strings.ToLower(candidate)))
	if _, ok := knownPaymentStatuses[status]; ok {
		return status
	}
	return PaymentStatusPending
}

// NormalizeMessageStatus clamps a candidate status to the closed set, with
// the same pending fallback as NormalizePaymentStatus.
func NormalizeMessageStatus(candidate string) MessageStatus {
	status := MessageStatus(strings.TrimSpace(strings.ToLower(candidate)))
	if _, ok := knownMessageStatuses[status]; ok {
		return status
	}
	return MessageStatusPending
}

// TokenPair is the immutable credential snapshot handed to persistence
// callbacks after a successful refresh. It is never mutated after
// construction.
type TokenPair struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// TokenGrant is the raw result of a token-exchange call. ExpiresIn is the
// relative lifetime in seconds reported by the endpoint.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Pair converts a grant into an absolute-expiry token pair anchored at now.
// A non-positive ExpiresIn yields a pair without expiry, which disables
// proactive refresh for the resulting credentials.
func (g TokenGrant) Pair(now time.Time) TokenPair {
	pair := TokenPair{
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
	}
	if g.ExpiresIn > 0 {
		expiresAt := now.UTC().Add(time.Duration(g.ExpiresIn) * time.Second)
		pair.ExpiresAt = &expiresAt
	}
	return pair
}

// InboundRequest is a provider webhook delivery. Form carries flat key/value
// payloads (redirect-style notifications); Body carries the raw bytes for
// providers that sign the unparsed payload. Headers hold transport metadata
// such as signature headers.
type InboundRequest struct {
	ProviderID string
	Headers    map[string]string
	Form       map[string]string
	Body       []byte
}

// HeaderValue performs a case-insensitive header lookup.
func (r InboundRequest) HeaderValue(key string) string {
	if len(r.Headers) == 0 {
		return ""
	}
	for existing, value := range r.Headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// InboundResult is the outcome of processing one webhook delivery.
type InboundResult struct {
	Accepted   bool
	StatusCode int
	Metadata   map[string]any
}

// EventKind discriminates normalized webhook events.
type EventKind string

const (
	EventKindPayment EventKind = "payment"
	EventKindMessage EventKind = "message"
)

// PaymentEvent is a verified payment webhook normalized to the closed
// status set.
type PaymentEvent struct {
	ProviderID    string
	Reference     string
	TransactionID string
	AmountCents   int
	Currency      string
	Status        PaymentStatus
	RawStatus     string
	OccurredAt    time.Time
}

// MessageEvent is a verified messaging webhook normalized to the closed
// status set.
type MessageEvent struct {
	ProviderID string
	MessageID  string
	Recipient  string
	Status     MessageStatus
	RawStatus  string
	OccurredAt time.Time
}

// WebhookEvent is the tagged union handed to downstream consumers after
// verification and mapping succeed.
type WebhookEvent struct {
	ProviderID string
	Kind       EventKind
	Payment    *PaymentEvent
	Message    *MessageEvent
}
