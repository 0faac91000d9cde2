// Package events announces committed and removed allocations on a Redis
// stream so sibling services (invoicing, reporting) can react. Publishing is
// best-effort: a failed publish never fails the user-facing operation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cowork-allocator/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TypeAllocationsCommitted = "allocation.committed"
	TypeAllocationRemoved    = "allocation.removed"
)

// CommittedEvent describes one committed allocation batch.
type CommittedEvent struct {
	EventID       string             `json:"event_id"`
	CustomerID    int64              `json:"customer_id"`
	BranchID      int64              `json:"branch_id"`
	AllocationIDs []int64            `json:"allocation_ids"`
	BookingType   domain.BookingType `json:"booking_type"`
	CommittedAt   time.Time          `json:"committed_at"`
}

// RemovedEvent describes one decommissioned allocation.
type RemovedEvent struct {
	EventID      string    `json:"event_id"`
	AllocationID int64     `json:"allocation_id"`
	BranchID     int64     `json:"branch_id"`
	RemovedAt    time.Time `json:"removed_at"`
}

// Publisher writes allocation events to a Redis stream via XADD.
type Publisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

func NewPublisher(client *redis.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// AllocationsCommitted publishes a committed-batch event.
func (p *Publisher) AllocationsCommitted(ctx context.Context, ev CommittedEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	return p.publish(ctx, TypeAllocationsCommitted, ev)
}

// AllocationRemoved publishes a removal event.
func (p *Publisher) AllocationRemoved(ctx context.Context, ev RemovedEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	return p.publish(ctx, TypeAllocationRemoved, ev)
}

func (p *Publisher) publish(ctx context.Context, eventType string, data any) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":      eventType,
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	p.logger.Debug("Published allocation event",
		zap.String("stream", p.stream),
		zap.String("type", eventType),
		zap.String("message_id", id),
	)

	return nil
}
