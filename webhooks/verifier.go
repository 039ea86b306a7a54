package webhooks

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/goliatone/go-gateways/core"
)

// OrderedFieldsVerifier authenticates redirect-style form deliveries signed
// with the ordered-concatenation SHA-512 scheme. The hex comparison is
// case-insensitive: both sides are decoded before the constant-time check.
type OrderedFieldsVerifier struct {
	Fields         []string
	SignatureField string
	Secret         string
}

func (v OrderedFieldsVerifier) Verify(_ context.Context, req core.InboundRequest) (bool, error) {
	if strings.TrimSpace(v.Secret) == "" {
		return false, core.NewConfigurationError("webhooks: signing secret is required")
	}
	signature := strings.TrimSpace(req.Form[v.SignatureField])
	if signature == "" {
		return false, nil
	}

	values := make([]string, 0, len(v.Fields))
	for _, field := range v.Fields {
		values = append(values, req.Form[field])
	}
	expected := OrderedFieldsDigest(values, v.Secret)

	provided, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return false, nil
	}
	want, _ := hex.DecodeString(expected)
	return subtle.ConstantTimeCompare(provided, want) == 1, nil
}

// SortedQueryVerifier authenticates form deliveries signed with the
// sorted-query MD5 scheme. The signature field itself is excluded from the
// digest. The passphrase is optional; an empty passphrase simply omits the
// suffix.
type SortedQueryVerifier struct {
	SignatureField string
	Passphrase     string
}

func (v SortedQueryVerifier) Verify(_ context.Context, req core.InboundRequest) (bool, error) {
	signature := strings.TrimSpace(req.Form[v.SignatureField])
	if signature == "" {
		return false, nil
	}

	fields := make(map[string]string, len(req.Form))
	for key, value := range req.Form {
		if key == v.SignatureField {
			continue
		}
		fields[key] = value
	}
	expected := SortedQueryDigest(fields, v.Passphrase)
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1, nil
}

// BodyHMACVerifier authenticates deliveries whose raw body is signed with
// HMAC-SHA256 carried in a header. Prefix covers schemes that transmit the
// digest as "sha256=<hex>"; the comparison runs over the full prefixed form.
type BodyHMACVerifier struct {
	Header string
	Prefix string
	Secret string
}

func (v BodyHMACVerifier) Verify(_ context.Context, req core.InboundRequest) (bool, error) {
	if strings.TrimSpace(v.Secret) == "" {
		return false, core.NewConfigurationError("webhooks: signing secret is required")
	}
	signature := req.HeaderValue(v.Header)
	if signature == "" {
		return false, nil
	}
	expected := BodyHMACDigest(req.Body, v.Secret, v.Prefix)
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1, nil
}

var (
	_ core.WebhookVerifier = OrderedFieldsVerifier{}
	_ core.WebhookVerifier = SortedQueryVerifier{}
	_ core.WebhookVerifier = BodyHMACVerifier{}
)
