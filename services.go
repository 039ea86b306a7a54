package gateways

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-gateways/auth"
	"github.com/goliatone/go-gateways/command"
	"github.com/goliatone/go-gateways/core"
)

type Config = core.Config

type ProvidersConfig = core.ProvidersConfig

type Option = core.Option

type Service = core.Service

type InboundRequest = core.InboundRequest

type WebhookEvent = core.WebhookEvent

type TokenPair = core.TokenPair

type TokenGrant = core.TokenGrant

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorFactory    = core.WithErrorFactory
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithRawConfigLoader = core.WithRawConfigLoader
	WithOptionsResolver = core.WithOptionsResolver
	WithRegistry        = core.WithRegistry
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

// TokenStore is the persistence surface the runtime loads and saves token
// pairs through. The sqlstore package provides SQL and cached
// implementations.
type TokenStore interface {
	GetActive(ctx context.Context, accountID string) (core.TokenPair, error)
	SaveTokens(ctx context.Context, accountID string, pair core.TokenPair) error
}

// Runtime binds the webhook service, the token store, and per-account
// refreshable credentials into the mutating surface the commands execute
// against. Credentials are built lazily per account and cached; each one
// persists refreshed pairs back through the store.
type Runtime struct {
	service   *core.Service
	tokens    TokenStore
	exchanger core.TokenExchanger

	mu          sync.Mutex
	credentials map[string]*auth.TokenCredentials
}

func NewRuntime(service *core.Service, tokens TokenStore, exchanger core.TokenExchanger) (*Runtime, error) {
	if service == nil {
		return nil, fmt.Errorf("gateways: service is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("gateways: token store is required")
	}
	if exchanger == nil {
		return nil, fmt.Errorf("gateways: token exchanger is required")
	}
	return &Runtime{
		service:     service,
		tokens:      tokens,
		exchanger:   exchanger,
		credentials: make(map[string]*auth.TokenCredentials),
	}, nil
}

// Credentials returns the refreshable credentials for the account, loading
// the active pair from the store on first use.
func (r *Runtime) Credentials(ctx context.Context, accountID string) (*auth.TokenCredentials, error) {
	if r == nil {
		return nil, fmt.Errorf("gateways: runtime is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, core.NewConfigurationError("gateways: account id is required")
	}

	r.mu.Lock()
	existing, ok := r.credentials[accountID]
	r.mu.Unlock()
	if ok {
		return existing, nil
	}

	pair, err := r.tokens.GetActive(ctx, accountID)
	if err != nil {
		return nil, err
	}
	credentials, err := auth.NewTokenCredentials(pair, r.exchanger,
		auth.WithOnRefresh(func(ctx context.Context, refreshed core.TokenPair) error {
			return r.tokens.SaveTokens(ctx, accountID, refreshed)
		}),
		auth.WithRefreshLeadWindow(r.leadWindow()),
	)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// Another caller may have built credentials meanwhile; keep the first.
	if racing, ok := r.credentials[accountID]; ok {
		credentials = racing
	} else {
		r.credentials[accountID] = credentials
	}
	r.mu.Unlock()
	return credentials, nil
}

// Headers returns outbound authorization headers for the account, rotating
// stale credentials first.
func (r *Runtime) Headers(ctx context.Context, accountID string) (map[string]string, error) {
	credentials, err := r.Credentials(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return credentials.Headers(ctx)
}

// RefreshCredentials rotates the account credentials when they are inside
// the refresh lead window. Fresh credentials are left untouched.
func (r *Runtime) RefreshCredentials(ctx context.Context, accountID string) error {
	credentials, err := r.Credentials(ctx, accountID)
	if err != nil {
		return err
	}
	return credentials.Refresh(ctx)
}

// UpdateTokens installs an externally obtained pair, both in memory and in
// the store, bypassing the exchange path.
func (r *Runtime) UpdateTokens(ctx context.Context, accountID string, pair core.TokenPair) error {
	if r == nil {
		return fmt.Errorf("gateways: runtime is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return core.NewConfigurationError("gateways: account id is required")
	}
	if strings.TrimSpace(pair.AccessToken) == "" {
		return core.NewConfigurationError("gateways: access token is required")
	}

	if err := r.tokens.SaveTokens(ctx, accountID, pair); err != nil {
		return err
	}

	r.mu.Lock()
	credentials, ok := r.credentials[accountID]
	r.mu.Unlock()
	if ok {
		return credentials.UpdateTokens(pair)
	}
	return nil
}

// ProcessWebhook verifies and maps one delivery through the webhook
// service.
func (r *Runtime) ProcessWebhook(ctx context.Context, providerID string, req core.InboundRequest) (core.WebhookEvent, bool, error) {
	if r == nil || r.service == nil {
		return core.WebhookEvent{}, false, fmt.Errorf("gateways: runtime is not configured")
	}
	return r.service.ProcessWebhook(ctx, providerID, req)
}

func (r *Runtime) leadWindow() (window time.Duration) {
	window = core.DefaultRefreshLeadWindow
	if r == nil || r.service == nil {
		return window
	}
	if configured := r.service.Config().RefreshLeadWindow; configured > 0 {
		window = configured
	}
	return window
}

var _ command.MutatingService = (*Runtime)(nil)
