package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-gateways/core"
)

// MutatingService is the surface the commands mutate through. The root
// facade implements it over the credential registry and webhook pipeline.
type MutatingService interface {
	RefreshCredentials(ctx context.Context, accountID string) error
	UpdateTokens(ctx context.Context, accountID string, pair core.TokenPair) error
	ProcessWebhook(ctx context.Context, providerID string, req core.InboundRequest) (core.WebhookEvent, bool, error)
}

// WebhookOutcome is the stored result of a ProcessWebhook dispatch.
type WebhookOutcome struct {
	Event    core.WebhookEvent
	Verified bool
}

type RefreshCredentialsCommand struct {
	service MutatingService
}

func NewRefreshCredentialsCommand(service MutatingService) *RefreshCredentialsCommand {
	return &RefreshCredentialsCommand{service: service}
}

func (c *RefreshCredentialsCommand) Execute(ctx context.Context, msg RefreshCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credential refresh service is required")
	}
	return c.service.RefreshCredentials(ctx, msg.AccountID)
}

type UpdateTokensCommand struct {
	service MutatingService
}

func NewUpdateTokensCommand(service MutatingService) *UpdateTokensCommand {
	return &UpdateTokensCommand{service: service}
}

func (c *UpdateTokensCommand) Execute(ctx context.Context, msg UpdateTokensMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token update service is required")
	}
	return c.service.UpdateTokens(ctx, msg.AccountID, msg.Pair)
}

type ProcessWebhookCommand struct {
	service MutatingService
}

func NewProcessWebhookCommand(service MutatingService) *ProcessWebhookCommand {
	return &ProcessWebhookCommand{service: service}
}

func (c *ProcessWebhookCommand) Execute(ctx context.Context, msg ProcessWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: webhook service is required")
	}
	event, verified, err := c.service.ProcessWebhook(ctx, msg.ProviderID, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, WebhookOutcome{Event: event, Verified: verified})
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
