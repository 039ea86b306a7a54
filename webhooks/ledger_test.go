package webhooks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLedgerClaimDedupe(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	first, claimed, err := ledger.Claim(ctx, "ozow", "TX123", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}
	if first.Status != DeliveryStatusProcessing || first.Attempts != 1 {
		t.Fatalf("unexpected record: %+v", first)
	}

	_, claimed, err = ledger.Claim(ctx, "ozow", "TX123", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim to dedupe while the lease holds")
	}

	// A different delivery id claims independently.
	_, claimed, err = ledger.Claim(ctx, "ozow", "TX124", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed {
		t.Fatal("expected distinct delivery to claim")
	}
}

func TestMemoryLedgerCompleteBlocksReplay(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	record, _, err := ledger.Claim(ctx, "yoco", "evt-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := ledger.Complete(ctx, record.ClaimID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := ledger.Get(ctx, "yoco", "evt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != DeliveryStatusProcessed {
		t.Fatalf("unexpected status %q", got.Status)
	}

	_, claimed, err := ledger.Claim(ctx, "yoco", "evt-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed {
		t.Fatal("processed deliveries must never be reclaimed")
	}
}

func TestMemoryLedgerFailSchedulesRetry(t *testing.T) {
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ledger := NewMemoryLedger()
	ledger.Now = func() time.Time { return current }
	ctx := context.Background()

	record, _, err := ledger.Claim(ctx, "payfast", "pf-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	nextAttempt := current.Add(2 * time.Second)
	if err := ledger.Fail(ctx, record.ClaimID, errors.New("handler blew up"), nextAttempt, 8); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, err := ledger.Get(ctx, "payfast", "pf-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != DeliveryStatusRetryReady {
		t.Fatalf("unexpected status %q", got.Status)
	}
	if got.LastError != "handler blew up" {
		t.Fatalf("unexpected last error %q", got.LastError)
	}

	// Before the retry window opens the delivery stays claimed.
	_, claimed, err := ledger.Claim(ctx, "payfast", "pf-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed {
		t.Fatal("expected claim to wait for the retry window")
	}

	current = current.Add(3 * time.Second)
	retried, claimed, err := ledger.Claim(ctx, "payfast", "pf-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed {
		t.Fatal("expected claim after the retry window")
	}
	if retried.Attempts != 2 {
		t.Fatalf("expected second attempt, got %d", retried.Attempts)
	}
}

func TestMemoryLedgerFailExhaustsToDead(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	record, _, err := ledger.Claim(ctx, "whatsapp", "wamid-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := ledger.Fail(ctx, record.ClaimID, errors.New("boom"), time.Now().Add(time.Second), 1); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, err := ledger.Get(ctx, "whatsapp", "wamid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != DeliveryStatusDead {
		t.Fatalf("expected dead delivery, got %q", got.Status)
	}

	_, claimed, err := ledger.Claim(ctx, "whatsapp", "wamid-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed {
		t.Fatal("dead deliveries must never be reclaimed")
	}
}

func TestMemoryLedgerValidation(t *testing.T) {
	ledger := NewMemoryLedger()
	if _, _, err := ledger.Claim(context.Background(), "", "d", nil, time.Minute); err == nil {
		t.Fatal("expected error for empty provider id")
	}
	if err := ledger.Complete(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown claim")
	}
}
