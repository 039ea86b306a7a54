package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type gatewayTokenRecord struct {
	bun.BaseModel `bun:"table:gateway_tokens,alias:gt"`

	ID           string     `bun:"id,pk"`
	AccountID    string     `bun:"account_id,notnull"`
	Version      int        `bun:"version,notnull"`
	AccessToken  string     `bun:"access_token,notnull"`
	RefreshToken string     `bun:"refresh_token"`
	ExpiresAt    *time.Time `bun:"expires_at,nullzero"`
	Status       string     `bun:"status,notnull"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type webhookDeliveryRecord struct {
	bun.BaseModel `bun:"table:gateway_webhook_deliveries,alias:gwd"`

	ID            string     `bun:"id,pk"`
	ClaimID       string     `bun:"claim_id"`
	ProviderID    string     `bun:"provider_id,notnull"`
	DeliveryID    string     `bun:"delivery_id,notnull"`
	Status        string     `bun:"status,notnull"`
	Attempts      int        `bun:"attempts,notnull"`
	LastError     string     `bun:"last_error"`
	NextAttemptAt *time.Time `bun:"next_attempt_at,nullzero"`
	Payload       []byte     `bun:"payload"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
