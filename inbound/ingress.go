package inbound

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-gateways/core"
)

// DefaultMaxBodyBytes caps how much of a delivery body the ingress reads.
const DefaultMaxBodyBytes = 1 << 20

// Processor handles one verified-or-rejected delivery for a provider.
// webhooks.Processor satisfies it.
type Processor interface {
	Process(ctx context.Context, req core.InboundRequest) (core.InboundResult, error)
}

// Ingress routes provider deliveries to their processors, both directly
// through Dispatch and as an http.Handler mounted at .../{provider}.
type Ingress struct {
	MaxBodyBytes int64

	mu     sync.RWMutex
	routes map[string]Processor
	logger core.Logger
}

type IngressOption func(*Ingress)

func WithIngressLogger(logger core.Logger) IngressOption {
	return func(i *Ingress) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func NewIngress(opts ...IngressOption) *Ingress {
	_, logger := glog.Resolve("gateways.inbound", nil, nil)
	ingress := &Ingress{
		MaxBodyBytes: DefaultMaxBodyBytes,
		routes:       make(map[string]Processor),
		logger:       glog.Ensure(logger),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(ingress)
	}
	return ingress
}

func (i *Ingress) Register(providerID string, processor Processor) error {
	if i == nil {
		return inboundInternal("inbound: ingress is nil", nil)
	}
	providerID = strings.TrimSpace(strings.ToLower(providerID))
	if providerID == "" {
		return inboundBadInput("inbound: provider id is required", nil)
	}
	if processor == nil {
		return inboundBadInput("inbound: processor is required", map[string]any{"provider_id": providerID})
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.routes[providerID]; exists {
		return inboundBadInput(
			fmt.Sprintf("inbound: processor already registered for provider %q", providerID),
			map[string]any{"provider_id": providerID},
		)
	}
	i.routes[providerID] = processor
	return nil
}

// Dispatch routes one delivery to the provider's processor.
func (i *Ingress) Dispatch(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if i == nil {
		return core.InboundResult{}, inboundInternal("inbound: ingress is nil", nil)
	}
	providerID := strings.TrimSpace(strings.ToLower(req.ProviderID))
	if providerID == "" {
		return core.InboundResult{}, inboundBadInput("inbound: provider id is required", nil)
	}

	i.mu.RLock()
	processor, ok := i.routes[providerID]
	i.mu.RUnlock()
	if !ok {
		return core.InboundResult{}, inboundNotFound(
			fmt.Sprintf("inbound: no processor registered for provider %q", providerID),
			map[string]any{"provider_id": providerID},
		)
	}

	req.ProviderID = providerID
	return processor.Process(ctx, req)
}

// ServeHTTP accepts POST deliveries at a path whose final segment is the
// provider tag, e.g. /webhooks/ozow.
func (i *Ingress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"accepted": false})
		return
	}

	providerID := providerFromPath(r.URL.Path)
	req, err := RequestFromHTTP(r, providerID, i.maxBodyBytes())
	if err != nil {
		i.logError("reject malformed delivery", providerID, err)
		writeJSON(w, statusFromError(err), map[string]any{"accepted": false})
		return
	}

	result, err := i.Dispatch(r.Context(), req)
	if err != nil {
		i.logError("delivery dispatch failed", providerID, err)
		writeJSON(w, statusFromError(err), map[string]any{"accepted": false})
		return
	}

	status := result.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	body := map[string]any{"accepted": result.Accepted}
	for key, value := range result.Metadata {
		body[key] = value
	}
	writeJSON(w, status, body)
}

// RequestFromHTTP flattens an HTTP delivery into the canonical inbound
// form: form-encoded payloads become the Form map, anything else is kept
// as the raw body for providers that sign unparsed bytes.
func RequestFromHTTP(r *http.Request, providerID string, maxBodyBytes int64) (core.InboundRequest, error) {
	if r == nil {
		return core.InboundRequest{}, inboundBadInput("inbound: http request is required", nil)
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	req := core.InboundRequest{
		ProviderID: strings.TrimSpace(strings.ToLower(providerID)),
		Headers:    make(map[string]string, len(r.Header)),
	}
	for name, values := range r.Header {
		if len(values) > 0 {
			req.Headers[name] = values[0]
		}
	}

	contentType := r.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return core.InboundRequest{}, inboundBadInput("inbound: parse form payload", map[string]any{
				"provider_id": req.ProviderID,
			})
		}
		req.Form = make(map[string]string, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				req.Form[key] = values[0]
			}
		}
		return req, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return core.InboundRequest{}, inboundBadInput("inbound: read delivery body", map[string]any{
			"provider_id": req.ProviderID,
		})
	}
	if int64(len(body)) > maxBodyBytes {
		return core.InboundRequest{}, inboundBadInput("inbound: delivery body too large", map[string]any{
			"provider_id": req.ProviderID,
		})
	}
	req.Body = body
	return req, nil
}

func (i *Ingress) maxBodyBytes() int64 {
	if i != nil && i.MaxBodyBytes > 0 {
		return i.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

func (i *Ingress) logError(message string, providerID string, err error) {
	if i == nil || i.logger == nil {
		return
	}
	i.logger.Warn(message, "provider_id", providerID, "error", err.Error())
}

func providerFromPath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	segments := strings.Split(trimmed, "/")
	return segments[len(segments)-1]
}

func statusFromError(err error) int {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Code != 0 {
		return rich.Code
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
