package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// WebhookRegistration binds a provider tag to its verifier and mapper.
type WebhookRegistration struct {
	ProviderID string
	Verifier   WebhookVerifier
	Mapper     EventMapper
}

// Registry resolves webhook verifiers and mappers by provider tag.
type Registry interface {
	Register(reg WebhookRegistration) error
	Get(providerID string) (WebhookRegistration, bool)
	Providers() []string
}

type VerifierRegistry struct {
	mu      sync.RWMutex
	entries map[string]WebhookRegistration
}

func NewVerifierRegistry() *VerifierRegistry {
	return &VerifierRegistry{entries: make(map[string]WebhookRegistration)}
}

func (r *VerifierRegistry) Register(reg WebhookRegistration) error {
	id := strings.TrimSpace(reg.ProviderID)
	if id == "" {
		return fmt.Errorf("core: provider id is required")
	}
	if reg.Verifier == nil {
		return fmt.Errorf("core: webhook verifier is required for provider %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("core: provider already registered: %s", id)
	}
	reg.ProviderID = id
	r.entries[id] = reg
	return nil
}

func (r *VerifierRegistry) Get(providerID string) (WebhookRegistration, bool) {
	id := strings.TrimSpace(providerID)
	if id == "" {
		return WebhookRegistration{}, false
	}
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	return entry, ok
}

func (r *VerifierRegistry) Providers() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

var _ Registry = (*VerifierRegistry)(nil)
