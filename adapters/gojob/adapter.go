package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	JobIDCredentialsRefresh = "gateways.credentials.refresh"
	JobIDWebhookRedrive     = "gateways.webhooks.redrive"
)

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// Normalize enforces bounded retry behavior for a nack at the given attempt.
func (p RetryPolicy) Normalize(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// NewRefreshMessage builds the execution message for a credential refresh.
// The idempotency key collapses duplicate refreshes for the same account
// while one is queued.
func NewRefreshMessage(accountID string) *job.ExecutionMessage {
	accountID = strings.TrimSpace(accountID)
	return &job.ExecutionMessage{
		JobID: JobIDCredentialsRefresh,
		Parameters: map[string]any{
			"account_id": accountID,
		},
		IdempotencyKey: JobIDCredentialsRefresh + "::" + accountID,
	}
}

// NewRedriveMessage builds the execution message that re-runs a stored
// webhook delivery through the processor.
func NewRedriveMessage(providerID string, deliveryID string) *job.ExecutionMessage {
	providerID = strings.TrimSpace(providerID)
	deliveryID = strings.TrimSpace(deliveryID)
	return &job.ExecutionMessage{
		JobID: JobIDWebhookRedrive,
		Parameters: map[string]any{
			"provider_id": providerID,
			"delivery_id": deliveryID,
		},
		IdempotencyKey: JobIDWebhookRedrive + "::" + providerID + "::" + deliveryID,
	}
}

// Enqueuer wraps a go-job queue enqueuer with the gateway job vocabulary.
type Enqueuer struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuer(enqueuer queue.Enqueuer) *Enqueuer {
	return &Enqueuer{enqueuer: enqueuer}
}

func (e *Enqueuer) EnqueueRefresh(ctx context.Context, accountID string) error {
	if e == nil || e.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if strings.TrimSpace(accountID) == "" {
		return fmt.Errorf("gojob: account id is required")
	}
	return e.enqueuer.Enqueue(ctx, NewRefreshMessage(accountID))
}

func (e *Enqueuer) EnqueueRedrive(ctx context.Context, providerID string, deliveryID string) error {
	if e == nil || e.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if strings.TrimSpace(providerID) == "" || strings.TrimSpace(deliveryID) == "" {
		return fmt.Errorf("gojob: provider id and delivery id are required")
	}
	return e.enqueuer.Enqueue(ctx, NewRedriveMessage(providerID, deliveryID))
}

// DeliveryAdapter bounds the retry behavior of a queue delivery through a
// RetryPolicy before handing the nack to the underlying queue.
type DeliveryAdapter struct {
	delivery queue.Delivery
	policy   RetryPolicy
}

func NewDeliveryAdapter(delivery queue.Delivery, policy RetryPolicy) *DeliveryAdapter {
	return &DeliveryAdapter{delivery: delivery, policy: policy}
}

func (d *DeliveryAdapter) Message() *job.ExecutionMessage {
	if d == nil || d.delivery == nil {
		return nil
	}
	return d.delivery.Message()
}

func (d *DeliveryAdapter) Ack(ctx context.Context) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Ack(ctx)
}

func (d *DeliveryAdapter) Nack(ctx context.Context, opts queue.NackOptions) error {
	return d.NackForAttempt(ctx, opts, 0)
}

func (d *DeliveryAdapter) NackForAttempt(ctx context.Context, opts queue.NackOptions, attempt int) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Nack(ctx, d.policy.Normalize(opts, attempt))
}

// LoggingHook emits structured lifecycle logs for gateway job executions.
type LoggingHook struct {
	logger glog.Logger
}

func NewLoggingHook(logger glog.Logger) *LoggingHook {
	return &LoggingHook{logger: glog.Ensure(logger)}
}

func (h *LoggingHook) OnStart(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Debug("job started", eventFields(event)...)
}

func (h *LoggingHook) OnSuccess(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info("job succeeded", eventFields(event)...)
}

func (h *LoggingHook) OnFailure(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Error("job failed", eventFields(event)...)
}

func (h *LoggingHook) OnRetry(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Warn("job retrying", eventFields(event)...)
}

func eventFields(event worker.Event) []any {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	fields := []any{"attempt", event.Attempt}
	if message != nil {
		fields = append(fields, "job_id", message.JobID)
	}
	if event.Err != nil {
		fields = append(fields, "error", event.Err.Error())
	}
	if event.Duration > 0 {
		fields = append(fields, "duration_ms", event.Duration.Milliseconds())
	}
	return fields
}

var (
	_ queue.Delivery = (*DeliveryAdapter)(nil)
	_ worker.Hook    = (*LoggingHook)(nil)
)
