// Package notify consumes auth events from Kafka and sends the account emails,
// handling each event at most once.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sportiify/internal/kafka"
)

// Outcome is the result of handling one message
type Outcome int

const (
	// OutcomeSent means the email went out
	OutcomeSent Outcome = iota
	// OutcomeIgnored covers malformed messages and event types that send nothing
	OutcomeIgnored
	// OutcomeDuplicate means the event was handled before
	OutcomeDuplicate
	// OutcomeDeadLettered means sending failed after all retries
	OutcomeDeadLettered
	// OutcomeRetry means the message must be read again; its offset is not committed
	OutcomeRetry
)

// Commit reports whether the message offset may be committed
func (o Outcome) Commit() bool {
	return o != OutcomeRetry
}

// DeadLetterPublisher receives events that could not be handled
type DeadLetterPublisher interface {
	PublishSync(topic, key string, event any) error
}

// Processor turns auth events into emails
type Processor struct {
	mailer     Mailer
	store      IdempotencyStore
	dlq        DeadLetterPublisher
	dlqTopic   string
	maxRetries int
	backoff    func(attempt int) time.Duration
	logger     *slog.Logger
}

// NewProcessor creates a processor. dlq may be nil, in which case failures are only logged.
func NewProcessor(mailer Mailer, store IdempotencyStore, dlq DeadLetterPublisher, dlqTopic string, logger *slog.Logger) *Processor {
	return &Processor{
		mailer:     mailer,
		store:      store,
		dlq:        dlq,
		dlqTopic:   dlqTopic,
		maxRetries: 3,
		backoff:    func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
		logger:     logger,
	}
}

// Handle processes one raw message value
func (p *Processor) Handle(ctx context.Context, value []byte) Outcome {
	var event kafka.UserEvent
	if err := json.Unmarshal(value, &event); err != nil {
		p.logger.Error("Failed to parse user event", "error", err, "raw_value", string(value))
		return OutcomeIgnored
	}
	if event.ID == "" || event.Email == "" {
		p.logger.Error("User event missing id or email", "type", event.Type, "user_id", event.UserID)
		return OutcomeIgnored
	}
	if event.Type != kafka.EventUserRegistered {
		return OutcomeIgnored
	}

	seen, err := p.store.IsProcessed(ctx, event.ID)
	if err != nil {
		p.logger.Error("Failed to check idempotency", "event_id", event.ID, "error", err)
		return OutcomeRetry
	}
	if seen {
		p.logger.Warn("Duplicate user event, skipping", "event_id", event.ID, "user_id", event.UserID)
		return OutcomeDuplicate
	}

	if err := p.sendWithRetry(ctx, event); err != nil {
		if errors.Is(err, context.Canceled) {
			return OutcomeRetry
		}
		p.logger.Error("Failed to send welcome email after retries", "event_id", event.ID, "error", err)
		if err := p.deadLetter(event, err); err != nil {
			return OutcomeRetry
		}
		return OutcomeDeadLettered
	}

	marked, err := p.store.MarkAsProcessed(ctx, event.ID, Processed{
		HandledAt: time.Now().UTC(),
		Recipient: event.Email,
		Type:      event.Type,
	})
	if err != nil {
		p.logger.Error("Failed to mark event as processed", "event_id", event.ID, "error", err)
		return OutcomeRetry
	}
	if !marked {
		p.logger.Warn("Event was handled concurrently by another consumer", "event_id", event.ID)
	}

	p.logger.Info("Welcome email handled", "event_id", event.ID, "user_id", event.UserID)
	return OutcomeSent
}

func (p *Processor) sendWithRetry(ctx context.Context, event kafka.UserEvent) error {
	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		err := p.mailer.SendWelcome(ctx, event.Email, event.Name)
		if err == nil {
			return nil
		}
		lastErr = err
		p.logger.Warn("Failed to send email, will retry", "event_id", event.ID, "attempt", attempt, "error", err)

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff(attempt)):
			}
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// deadLetter parks event on the DLQ topic. A publish failure is returned so the
// message is read again rather than committed and lost.
func (p *Processor) deadLetter(event kafka.UserEvent, cause error) error {
	if p.dlq == nil || p.dlqTopic == "" {
		return nil
	}

	payload := map[string]any{
		"original_event": event,
		"error":          cause.Error(),
		"failed_at":      time.Now().UTC(),
	}
	if err := p.dlq.PublishSync(p.dlqTopic, event.UserID, payload); err != nil {
		p.logger.Error("Failed to send to DLQ", "event_id", event.ID, "error", err)
		return err
	}
	p.logger.Warn("User event sent to DLQ", "event_id", event.ID, "dlq_topic", p.dlqTopic)
	return nil
}
