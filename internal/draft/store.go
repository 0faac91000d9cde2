package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cowork-allocator/internal/store"

	"go.uber.org/zap"
)

// ErrNoDraft indicates no parked draft exists for the customer.
var ErrNoDraft = errors.New("no draft for customer")

// Store parks in-progress drafts in the key-value store so an operator can
// resume editing across requests. Drafts expire after the configured TTL;
// an expired draft simply means starting over, nothing authoritative is
// lost.
type Store struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewStore(kv store.KV, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

func draftKey(customerID int64) string {
	return fmt.Sprintf("allocation:draft:%d", customerID)
}

// Save serializes and parks the draft under its customer id.
func (s *Store) Save(ctx context.Context, d *AllocationDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.kv.Set(ctx, draftKey(d.CustomerID), string(data), s.ttl); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	s.logger.Debug("Saved draft",
		zap.Int64("customer_id", d.CustomerID),
		zap.Int("lines", len(d.Lines)),
	)
	return nil
}

// Load retrieves the parked draft for a customer, ErrNoDraft when absent or
// expired.
func (s *Store) Load(ctx context.Context, customerID int64) (*AllocationDraft, error) {
	raw, err := s.kv.Get(ctx, draftKey(customerID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, ErrNoDraft
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var d AllocationDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &d, nil
}

// Delete discards the parked draft. Deleting an absent draft is a no-op.
func (s *Store) Delete(ctx context.Context, customerID int64) error {
	if err := s.kv.Del(ctx, draftKey(customerID)); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
