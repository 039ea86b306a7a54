package core

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// HeaderSource produces the authorization headers attached to every
// outbound request. Implementations must be safe for concurrent callers
// sharing one instance.
type HeaderSource interface {
	Headers(ctx context.Context) (map[string]string, error)
}

// TokenExchanger performs the network half of a refresh: it trades a
// refresh token for a new grant. Transport failures and non-2xx responses
// surface as refresh errors, never as partial grants.
type TokenExchanger interface {
	Exchange(ctx context.Context, refreshToken string) (TokenGrant, error)
}

// PersistTokens is the caller-supplied callback invoked with the new pair
// after every successful refresh. Its failure is best-effort notification:
// it never rolls back the in-memory credential state.
type PersistTokens func(ctx context.Context, pair TokenPair) error

// WebhookVerifier authenticates one inbound delivery. A false return means
// signature mismatch; configuration problems (missing secret material)
// surface as an error so operators can tell the two apart.
type WebhookVerifier interface {
	Verify(ctx context.Context, req InboundRequest) (bool, error)
}

// EventMapper converts a verified provider payload into a normalized
// webhook event. Mapping is pure: it never mutates the request and carries
// no state between calls.
type EventMapper interface {
	Map(req InboundRequest) (WebhookEvent, error)
}

// MetricsRecorder receives operational counters and timings.
type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

// ConfigProvider loads layered configuration on top of defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// RawConfigLoader supplies raw key/value configuration for cfgx building.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges defaults, loaded config, and runtime overrides.
type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
