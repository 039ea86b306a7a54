package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

var ErrProviderNotFound = errors.New("core: provider not registered")

// Service is the inbound trust boundary: it dispatches webhook deliveries
// to the verifier registered for the provider tag and, once verified, maps
// them into normalized events. Verification is stateless; the service is
// safe for concurrent use.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	registry        Registry
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("gateways", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("gateways"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = NewVerifierRegistry()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		registry:        builder.registry,
	}, nil
}

// Config returns the resolved configuration.
func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// Registry exposes the verifier registry for provider factories.
func (s *Service) Registry() Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

// RegisterWebhook binds a verifier (and optional mapper) to a provider tag.
func (s *Service) RegisterWebhook(reg WebhookRegistration) error {
	if s == nil || s.registry == nil {
		return fmt.Errorf("core: service is not configured")
	}
	if err := s.registry.Register(reg); err != nil {
		return s.mapError(err)
	}
	return nil
}

// VerifyWebhook authenticates one delivery against the verifier registered
// for providerID. False means signature mismatch; configuration problems
// surface as errors so callers can distinguish the two.
func (s *Service) VerifyWebhook(ctx context.Context, providerID string, req InboundRequest) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now()
	providerID = strings.TrimSpace(providerID)
	fields := map[string]any{"provider_id": providerID}

	entry, ok := s.lookupRegistration(providerID)
	if !ok {
		err := s.mapError(fmt.Errorf("%w: %s", ErrProviderNotFound, providerID))
		s.observeOperation(ctx, startedAt, "webhook.verify", err, fields)
		return false, err
	}

	req.ProviderID = providerID
	verified, err := entry.Verifier.Verify(ctx, req)
	if err != nil {
		mapped := s.mapError(err)
		s.observeOperation(ctx, startedAt, "webhook.verify", mapped, fields)
		return false, mapped
	}
	fields["verified"] = verified
	s.observeOperation(ctx, startedAt, "webhook.verify", nil, fields)
	return verified, nil
}

// ProcessWebhook verifies a delivery and, when the signature checks out,
// maps it into a normalized event. The boolean reports signature validity;
// an unverified delivery yields no event and no error.
func (s *Service) ProcessWebhook(ctx context.Context, providerID string, req InboundRequest) (WebhookEvent, bool, error) {
	if s == nil {
		return WebhookEvent{}, false, fmt.Errorf("core: service is nil")
	}
	providerID = strings.TrimSpace(providerID)

	verified, err := s.VerifyWebhook(ctx, providerID, req)
	if err != nil {
		return WebhookEvent{}, false, err
	}
	if !verified {
		return WebhookEvent{}, false, nil
	}

	entry, ok := s.lookupRegistration(providerID)
	if !ok || entry.Mapper == nil {
		return WebhookEvent{ProviderID: providerID}, true, nil
	}

	req.ProviderID = providerID
	event, err := entry.Mapper.Map(req)
	if err != nil {
		return WebhookEvent{}, true, s.mapError(err)
	}
	if strings.TrimSpace(event.ProviderID) == "" {
		event.ProviderID = providerID
	}
	return event, true, nil
}

func (s *Service) lookupRegistration(providerID string) (WebhookRegistration, bool) {
	if s == nil || s.registry == nil {
		return WebhookRegistration{}, false
	}
	return s.registry.Get(providerID)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}
