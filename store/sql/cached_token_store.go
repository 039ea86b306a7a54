package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-gateways/core"
)

const tokenCacheKeyPrefix = "go-gateways::tokens::v1"

// CachedTokenStore is a read-through cache over TokenStore. Saves write
// through to SQL and invalidate the account's cache entry.
type CachedTokenStore struct {
	base  *TokenStore
	cache repositorycache.CacheService
}

func NewCachedTokenStore(base *TokenStore, cacheService repositorycache.CacheService) (*CachedTokenStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base token store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: token cache service is required")
	}
	return &CachedTokenStore{base: base, cache: cacheService}, nil
}

// TokenCacheKey returns the deterministic cache key contract for active
// token reads: go-gateways::tokens::v1::<account_id> with the account
// segment URL-path escaped.
func TokenCacheKey(accountID string) (string, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", fmt.Errorf("sqlstore: account id is required")
	}
	return tokenCacheKeyPrefix + "::" + url.PathEscape(accountID), nil
}

func (s *CachedTokenStore) GetActive(ctx context.Context, accountID string) (core.TokenPair, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.TokenPair{}, fmt.Errorf("sqlstore: cached token store is not configured")
	}
	cacheKey, err := TokenCacheKey(accountID)
	if err != nil {
		return core.TokenPair{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.TokenPair, error) {
		return s.base.GetActive(ctx, accountID)
	})
}

func (s *CachedTokenStore) SaveTokens(ctx context.Context, accountID string, pair core.TokenPair) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached token store is not configured")
	}
	if err := s.base.SaveTokens(ctx, accountID, pair); err != nil {
		return err
	}
	cacheKey, err := TokenCacheKey(accountID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *CachedTokenStore) PersistCallback(accountID string) core.PersistTokens {
	return func(ctx context.Context, pair core.TokenPair) error {
		return s.SaveTokens(ctx, accountID, pair)
	}
}
