package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-gateways/core"
)

type stubMutatingService struct {
	refreshCredentialsFn func(ctx context.Context, accountID string) error
	updateTokensFn       func(ctx context.Context, accountID string, pair core.TokenPair) error
	processWebhookFn     func(ctx context.Context, providerID string, req core.InboundRequest) (core.WebhookEvent, bool, error)
}

func (s stubMutatingService) RefreshCredentials(ctx context.Context, accountID string) error {
	if s.refreshCredentialsFn == nil {
		return fmt.Errorf("unexpected RefreshCredentials call")
	}
	return s.refreshCredentialsFn(ctx, accountID)
}

func (s stubMutatingService) UpdateTokens(ctx context.Context, accountID string, pair core.TokenPair) error {
	if s.updateTokensFn == nil {
		return fmt.Errorf("unexpected UpdateTokens call")
	}
	return s.updateTokensFn(ctx, accountID, pair)
}

func (s stubMutatingService) ProcessWebhook(ctx context.Context, providerID string, req core.InboundRequest) (core.WebhookEvent, bool, error) {
	if s.processWebhookFn == nil {
		return core.WebhookEvent{}, false, fmt.Errorf("unexpected ProcessWebhook call")
	}
	return s.processWebhookFn(ctx, providerID, req)
}

func TestRefreshCredentialsCommand_Delegates(t *testing.T) {
	called := false
	svc := stubMutatingService{
		refreshCredentialsFn: func(_ context.Context, accountID string) error {
			called = true
			if accountID != "acct_1" {
				t.Fatalf("expected account acct_1, got %q", accountID)
			}
			return nil
		},
	}

	cmd := NewRefreshCredentialsCommand(svc)
	if err := cmd.Execute(context.Background(), RefreshCredentialsMessage{AccountID: "acct_1"}); err != nil {
		t.Fatalf("execute refresh credentials: %v", err)
	}
	if !called {
		t.Fatalf("expected refresh invocation")
	}
}

func TestRefreshCredentialsCommand_PropagatesServiceError(t *testing.T) {
	svc := stubMutatingService{
		refreshCredentialsFn: func(context.Context, string) error {
			return core.NewRefreshError("token exchange failed", nil)
		},
	}
	cmd := NewRefreshCredentialsCommand(svc)
	err := cmd.Execute(context.Background(), RefreshCredentialsMessage{AccountID: "acct_1"})
	if !core.IsRefreshError(err) {
		t.Fatalf("expected refresh error, got %v", err)
	}
}

func TestUpdateTokensCommand_Delegates(t *testing.T) {
	called := false
	svc := stubMutatingService{
		updateTokensFn: func(_ context.Context, accountID string, pair core.TokenPair) error {
			called = true
			if accountID != "acct_1" {
				t.Fatalf("expected account acct_1, got %q", accountID)
			}
			if pair.AccessToken != "access-next" {
				t.Fatalf("unexpected pair: %+v", pair)
			}
			return nil
		},
	}

	cmd := NewUpdateTokensCommand(svc)
	err := cmd.Execute(context.Background(), UpdateTokensMessage{
		AccountID: "acct_1",
		Pair:      core.TokenPair{AccessToken: "access-next", RefreshToken: "refresh-next"},
	})
	if err != nil {
		t.Fatalf("execute update tokens: %v", err)
	}
	if !called {
		t.Fatalf("expected update invocation")
	}
}

func TestProcessWebhookCommand_DelegatesAndStoresResult(t *testing.T) {
	expected := core.WebhookEvent{
		ProviderID: "ozow",
		Kind:       core.EventKindPayment,
		Payment: &core.PaymentEvent{
			ProviderID: "ozow",
			Reference:  "TX123",
			Status:     core.PaymentStatusCompleted,
		},
	}
	svc := stubMutatingService{
		processWebhookFn: func(_ context.Context, providerID string, req core.InboundRequest) (core.WebhookEvent, bool, error) {
			if providerID != "ozow" {
				t.Fatalf("expected provider ozow, got %q", providerID)
			}
			if req.Form["TransactionReference"] != "TX123" {
				t.Fatalf("unexpected request form: %#v", req.Form)
			}
			return expected, true, nil
		},
	}

	cmd := NewProcessWebhookCommand(svc)
	collector := gocmd.NewResult[WebhookOutcome]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, ProcessWebhookMessage{
		ProviderID: "ozow",
		Request: core.InboundRequest{
			Form: map[string]string{"TransactionReference": "TX123"},
		},
	})
	if err != nil {
		t.Fatalf("execute process webhook: %v", err)
	}
	outcome, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if !outcome.Verified {
		t.Fatalf("expected verified outcome")
	}
	if outcome.Event.Payment == nil || outcome.Event.Payment.Reference != "TX123" {
		t.Fatalf("unexpected outcome event: %#v", outcome.Event)
	}
}

func TestProcessWebhookCommand_MismatchStoresUnverifiedOutcome(t *testing.T) {
	svc := stubMutatingService{
		processWebhookFn: func(context.Context, string, core.InboundRequest) (core.WebhookEvent, bool, error) {
			return core.WebhookEvent{}, false, nil
		},
	}

	cmd := NewProcessWebhookCommand(svc)
	collector := gocmd.NewResult[WebhookOutcome]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, ProcessWebhookMessage{
		ProviderID: "payfast",
		Request:    core.InboundRequest{Form: map[string]string{"signature": "00"}},
	})
	if err != nil {
		t.Fatalf("execute process webhook: %v", err)
	}
	outcome, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if outcome.Verified {
		t.Fatalf("expected unverified outcome on signature mismatch")
	}
}

func TestMessages_Validate(t *testing.T) {
	tests := []struct {
		name    string
		message interface{ Validate() error }
		wantErr bool
	}{
		{"refresh valid", RefreshCredentialsMessage{AccountID: "acct_1"}, false},
		{"refresh missing account", RefreshCredentialsMessage{}, true},
		{"update valid", UpdateTokensMessage{AccountID: "acct_1", Pair: core.TokenPair{AccessToken: "a"}}, false},
		{"update missing account", UpdateTokensMessage{Pair: core.TokenPair{AccessToken: "a"}}, true},
		{"update missing access token", UpdateTokensMessage{AccountID: "acct_1"}, true},
		{"webhook valid form", ProcessWebhookMessage{ProviderID: "ozow", Request: core.InboundRequest{Form: map[string]string{"Hash": "00"}}}, false},
		{"webhook valid body", ProcessWebhookMessage{ProviderID: "yoco", Request: core.InboundRequest{Body: []byte("{}")}}, false},
		{"webhook missing provider", ProcessWebhookMessage{Request: core.InboundRequest{Body: []byte("{}")}}, true},
		{"webhook missing payload", ProcessWebhookMessage{ProviderID: "yoco"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.message.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestMessageTypes(t *testing.T) {
	if got := (RefreshCredentialsMessage{}).Type(); got != TypeRefreshCredentials {
		t.Fatalf("unexpected type %q", got)
	}
	if got := (UpdateTokensMessage{}).Type(); got != TypeUpdateTokens {
		t.Fatalf("unexpected type %q", got)
	}
	if got := (ProcessWebhookMessage{}).Type(); got != TypeProcessWebhook {
		t.Fatalf("unexpected type %q", got)
	}
}
