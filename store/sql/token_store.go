package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-gateways/core"
)

const (
	tokenStatusActive     = "active"
	tokenStatusSuperseded = "superseded"
)

// TokenStore persists credential pairs as an append-only version history.
// Every save writes a new version and demotes the previous active row, so
// a refresh that lands mid-read never exposes a half-written pair.
type TokenStore struct {
	db   *bun.DB
	repo repository.Repository[*gatewayTokenRecord]
}

func NewTokenStore(db *bun.DB) (*TokenStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*gatewayTokenRecord](db, tokenHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid token repository wiring: %w", err)
		}
	}
	return &TokenStore{db: db, repo: repo}, nil
}

func (s *TokenStore) SaveTokens(ctx context.Context, accountID string, pair core.TokenPair) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: token store is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return fmt.Errorf("sqlstore: account id is required")
	}
	if strings.TrimSpace(pair.AccessToken) == "" {
		return fmt.Errorf("sqlstore: access token is required")
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var version int
		err := tx.NewSelect().
			Model((*gatewayTokenRecord)(nil)).
			ColumnExpr("COALESCE(MAX(version), 0)").
			Where("account_id = ?", accountID).
			Scan(ctx, &version)
		if err != nil && err != sql.ErrNoRows {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.NewUpdate().
			Model((*gatewayTokenRecord)(nil)).
			Set("status = ?", tokenStatusSuperseded).
			Set("updated_at = ?", now).
			Where("account_id = ?", accountID).
			Where("status = ?", tokenStatusActive).
			Exec(ctx); err != nil {
			return err
		}

		record := &gatewayTokenRecord{
			ID:           uuid.NewString(),
			AccountID:    accountID,
			Version:      version + 1,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			Status:       tokenStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if pair.ExpiresAt != nil {
			expiresAt := pair.ExpiresAt.UTC()
			record.ExpiresAt = &expiresAt
		}
		_, err = tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
}

func (s *TokenStore) GetActive(ctx context.Context, accountID string) (core.TokenPair, error) {
	if s == nil || s.db == nil {
		return core.TokenPair{}, fmt.Errorf("sqlstore: token store is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return core.TokenPair{}, fmt.Errorf("sqlstore: account id is required")
	}

	record := &gatewayTokenRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.account_id = ?", accountID).
		Where("?TableAlias.status = ?", tokenStatusActive).
		OrderExpr("?TableAlias.version DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.TokenPair{}, fmt.Errorf("sqlstore: no active tokens for account %q", accountID)
		}
		return core.TokenPair{}, err
	}
	return tokenToDomain(record), nil
}

// History returns all versions for an account, newest first.
func (s *TokenStore) History(ctx context.Context, accountID string) ([]core.TokenPair, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: token store is not configured")
	}
	var records []*gatewayTokenRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.account_id = ?", strings.TrimSpace(accountID)).
		OrderExpr("?TableAlias.version DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pairs := make([]core.TokenPair, 0, len(records))
	for _, record := range records {
		pairs = append(pairs, tokenToDomain(record))
	}
	return pairs, nil
}

// PersistCallback adapts the store to the credentials refresh callback for
// one account.
func (s *TokenStore) PersistCallback(accountID string) core.PersistTokens {
	return func(ctx context.Context, pair core.TokenPair) error {
		return s.SaveTokens(ctx, accountID, pair)
	}
}

func tokenToDomain(record *gatewayTokenRecord) core.TokenPair {
	if record == nil {
		return core.TokenPair{}
	}
	pair := core.TokenPair{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
	}
	if record.ExpiresAt != nil {
		expiresAt := record.ExpiresAt.UTC()
		pair.ExpiresAt = &expiresAt
	}
	return pair
}
