package webhooks

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-gateways/core"
)

var orderedFields = []string{"SiteCode", "Amount", "TransactionReference", "IsTest"}

func orderedForm(secret string) map[string]string {
	form := map[string]string{
		"SiteCode":             "TSTSTE0001",
		"Amount":               "25.00",
		"TransactionReference": "TX123",
		"IsTest":               "true",
	}
	form["Hash"] = OrderedFieldsDigest(
		[]string{form["SiteCode"], form["Amount"], form["TransactionReference"], form["IsTest"]},
		secret,
	)
	return form
}

func TestOrderedFieldsVerifier(t *testing.T) {
	verifier := OrderedFieldsVerifier{
		Fields:         orderedFields,
		SignatureField: "Hash",
		Secret:         "private-key",
	}

	t.Run("valid_signature", func(t *testing.T) {
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: orderedForm("private-key")})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatal("expected signature to verify")
		}
	})

	t.Run("uppercase_hex_accepted", func(t *testing.T) {
		form := orderedForm("private-key")
		form["Hash"] = strings.ToUpper(form["Hash"])
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: form})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatal("hex comparison must be case-insensitive")
		}
	})

	t.Run("field_flip_rejected", func(t *testing.T) {
		form := orderedForm("private-key")
		form["Amount"] = "26.00"
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: form})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected tampered payload to be rejected")
		}
	})

	t.Run("wrong_secret_rejected", func(t *testing.T) {
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: orderedForm("other-key")})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected wrong secret to be rejected")
		}
	})

	t.Run("missing_signature_rejected", func(t *testing.T) {
		form := orderedForm("private-key")
		delete(form, "Hash")
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: form})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected missing signature to be rejected")
		}
	})

	t.Run("non_hex_signature_rejected", func(t *testing.T) {
		form := orderedForm("private-key")
		form["Hash"] = "not-hex!"
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: form})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected malformed signature to be rejected")
		}
	})

	t.Run("missing_secret_is_configuration_error", func(t *testing.T) {
		bare := OrderedFieldsVerifier{Fields: orderedFields, SignatureField: "Hash"}
		_, err := bare.Verify(context.Background(), core.InboundRequest{Form: orderedForm("private-key")})
		if !core.IsConfigurationError(err) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
}

func sortedForm(passphrase string) map[string]string {
	form := map[string]string{
		"merchant_id":  "10000100",
		"merchant_key": "46f0cd694581a",
		"amount":       "100.00",
		"item_name":    "Test",
	}
	form["signature"] = SortedQueryDigest(form, passphrase)
	return form
}

func TestSortedQueryVerifier(t *testing.T) {
	t.Run("valid_without_passphrase", func(t *testing.T) {
		verifier := SortedQueryVerifier{SignatureField: "signature"}
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: sortedForm("")})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatal("expected signature to verify")
		}
	})

	t.Run("valid_with_passphrase", func(t *testing.T) {
		verifier := SortedQueryVerifier{SignatureField: "signature", Passphrase: "jt7NOE43FZPn"}
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: sortedForm("jt7NOE43FZPn")})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatal("expected signature to verify")
		}
	})

	t.Run("passphrase_mismatch_rejected", func(t *testing.T) {
		verifier := SortedQueryVerifier{SignatureField: "signature", Passphrase: "other"}
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: sortedForm("jt7NOE43FZPn")})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected passphrase mismatch to be rejected")
		}
	})

	t.Run("field_flip_rejected", func(t *testing.T) {
		verifier := SortedQueryVerifier{SignatureField: "signature"}
		form := sortedForm("")
		form["amount"] = "100.01"
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: form})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected tampered payload to be rejected")
		}
	})

	t.Run("empty_fields_ignored", func(t *testing.T) {
		verifier := SortedQueryVerifier{SignatureField: "signature"}
		form := sortedForm("")
		form["email_address"] = ""
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: form})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatal("empty fields must not break verification")
		}
	})

	t.Run("missing_signature_rejected", func(t *testing.T) {
		verifier := SortedQueryVerifier{SignatureField: "signature"}
		form := sortedForm("")
		delete(form, "signature")
		ok, err := verifier.Verify(context.Background(), core.InboundRequest{Form: form})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected missing signature to be rejected")
		}
	})
}

func TestBodyHMACVerifier(t *testing.T) {
	t.Run("bare_hex", func(t *testing.T) {
		verifier := BodyHMACVerifier{Header: "webhook-signature", Secret: "abc"}
		req := core.InboundRequest{
			Body: []byte("{}"),
			Headers: map[string]string{
				"Webhook-Signature": "19092633e5aa9a849dfcc9d2df4e76db2df1fcba7f38915f2c7833bd8a510f2f",
			},
		}
		ok, err := verifier.Verify(context.Background(), req)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatal("expected signature to verify")
		}
	})

	t.Run("zero_signature_rejected", func(t *testing.T) {
		verifier := BodyHMACVerifier{Header: "webhook-signature", Secret: "abc"}
		req := core.InboundRequest{
			Body:    []byte("{}"),
			Headers: map[string]string{"Webhook-Signature": strings.Repeat("0", 64)},
		}
		ok, err := verifier.Verify(context.Background(), req)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected zero signature to be rejected")
		}
	})

	t.Run("prefixed_form", func(t *testing.T) {
		verifier := BodyHMACVerifier{Header: "X-Hub-Signature-256", Prefix: "sha256=", Secret: "wa-token"}
		req := core.InboundRequest{
			Body: []byte("whatsapp-body"),
			Headers: map[string]string{
				"X-Hub-Signature-256": "sha256=5658f508dd6eb8fd5fbd16600a2049dd91183d59696c5e5c4137d05d6bea74f0",
			},
		}
		ok, err := verifier.Verify(context.Background(), req)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatal("expected prefixed signature to verify")
		}
	})

	t.Run("missing_prefix_rejected", func(t *testing.T) {
		verifier := BodyHMACVerifier{Header: "X-Hub-Signature-256", Prefix: "sha256=", Secret: "wa-token"}
		req := core.InboundRequest{
			Body: []byte("whatsapp-body"),
			Headers: map[string]string{
				"X-Hub-Signature-256": "5658f508dd6eb8fd5fbd16600a2049dd91183d59696c5e5c4137d05d6bea74f0",
			},
		}
		ok, err := verifier.Verify(context.Background(), req)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected unprefixed signature to be rejected")
		}
	})

	t.Run("body_flip_rejected", func(t *testing.T) {
		verifier := BodyHMACVerifier{Header: "webhook-signature", Secret: "abc"}
		req := core.InboundRequest{
			Body: []byte("{ }"),
			Headers: map[string]string{
				"Webhook-Signature": "19092633e5aa9a849dfcc9d2df4e76db2df1fcba7f38915f2c7833bd8a510f2f",
			},
		}
		ok, err := verifier.Verify(context.Background(), req)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("expected tampered body to be rejected")
		}
	})

	t.Run("missing_secret_is_configuration_error", func(t *testing.T) {
		verifier := BodyHMACVerifier{Header: "webhook-signature"}
		_, err := verifier.Verify(context.Background(), core.InboundRequest{Body: []byte("{}")})
		if !core.IsConfigurationError(err) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
}
