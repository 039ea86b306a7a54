package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-gateways/core"
)

// TokenCredentials holds a refreshable access/refresh token pair. All state
// transitions happen under a single per-instance guard: the guard is held
// for the whole refresh, network call included, so concurrent callers never
// observe a half-written pair and never race duplicate exchanges.
type TokenCredentials struct {
	mu         sync.Mutex
	pair       core.TokenPair
	exchanger  core.TokenExchanger
	onRefresh  core.PersistTokens
	leadWindow time.Duration
	now        func() time.Time
	logger     core.Logger
}

type TokenOption func(*TokenCredentials)

// WithRefreshLeadWindow overrides how far before expiry a refresh is
// triggered. The default is core.DefaultRefreshLeadWindow.
func WithRefreshLeadWindow(window time.Duration) TokenOption {
	return func(t *TokenCredentials) {
		if window > 0 {
			t.leadWindow = window
		}
	}
}

// WithOnRefresh installs the persistence callback invoked with the new
// pair after every successful refresh. Callback failures are logged and
// never roll back the in-memory state.
func WithOnRefresh(callback core.PersistTokens) TokenOption {
	return func(t *TokenCredentials) {
		t.onRefresh = callback
	}
}

func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenCredentials) {
		if now != nil {
			t.now = now
		}
	}
}

func WithLogger(logger core.Logger) TokenOption {
	return func(t *TokenCredentials) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func NewTokenCredentials(pair core.TokenPair, exchanger core.TokenExchanger, opts ...TokenOption) (*TokenCredentials, error) {
	if strings.TrimSpace(pair.AccessToken) == "" {
		return nil, core.NewConfigurationError("auth: access token is required")
	}
	_, logger := glog.Resolve("gateways.auth", nil, nil)
	credentials := &TokenCredentials{
		pair:       pair,
		exchanger:  exchanger,
		leadWindow: core.DefaultRefreshLeadWindow,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     glog.Ensure(logger),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(credentials)
	}
	return credentials, nil
}

func (t *TokenCredentials) Headers(ctx context.Context) (map[string]string, error) {
	if t == nil {
		return nil, core.NewConfigurationError("auth: token credentials are not configured")
	}
	if t.NeedsRefresh() {
		if err := t.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	token := t.pair.AccessToken
	t.mu.Unlock()
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

func (t *TokenCredentials) NeedsRefresh() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.needsRefreshLocked()
}

// needsRefreshLocked requires t.mu. No expiry means no proactive refresh:
// state only changes through UpdateTokens.
func (t *TokenCredentials) needsRefreshLocked() bool {
	if t.pair.ExpiresAt == nil {
		return false
	}
	return !t.pair.ExpiresAt.After(t.now().Add(t.leadWindow))
}

// Refresh rotates the pair through the token exchanger. Callers that
// queued behind an in-flight refresh find the state fresh after acquiring
// the guard and return without a second exchange. On failure the previous
// pair is left untouched.
func (t *TokenCredentials) Refresh(ctx context.Context) error {
	if t == nil {
		return core.NewConfigurationError("auth: token credentials are not configured")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.needsRefreshLocked() {
		return nil
	}
	if strings.TrimSpace(t.pair.RefreshToken) == "" {
		return core.NewConfigurationError("auth: refresh token is required")
	}
	if t.exchanger == nil {
		return core.NewConfigurationError("auth: token exchanger is not configured")
	}

	grant, err := t.exchanger.Exchange(ctx, t.pair.RefreshToken)
	if err != nil {
		if core.IsRefreshError(err) || core.IsConfigurationError(err) {
			return err
		}
		return core.NewRefreshError("auth: token exchange failed", err)
	}
	if strings.TrimSpace(grant.AccessToken) == "" {
		return core.NewRefreshError("auth: token exchange returned an empty access token", nil)
	}

	t.pair = grant.Pair(t.now())

	if t.onRefresh != nil {
		if callbackErr := t.onRefresh(ctx, t.pair); callbackErr != nil {
			t.logger.Error("token persistence callback failed", "error", callbackErr.Error())
		}
	}
	return nil
}

// UpdateTokens overwrites the pair from an externally obtained snapshot,
// bypassing the exchange path. Used when the caller manages refresh itself.
func (t *TokenCredentials) UpdateTokens(pair core.TokenPair) error {
	if t == nil {
		return core.NewConfigurationError("auth: token credentials are not configured")
	}
	if strings.TrimSpace(pair.AccessToken) == "" {
		return core.NewConfigurationError("auth: access token is required")
	}
	t.mu.Lock()
	t.pair = pair
	t.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current pair.
func (t *TokenCredentials) Snapshot() core.TokenPair {
	if t == nil {
		return core.TokenPair{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pair
}
