package allocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cowork-allocator/internal/catalog"
	"cowork-allocator/internal/domain"
	"cowork-allocator/internal/events"

	"go.uber.org/zap"
)

// RemovalState tracks the removal flow:
// Idle -> ConfirmPending -> Removing -> Idle.
type RemovalState int

const (
	RemovalIdle RemovalState = iota
	RemovalConfirmPending
	RemovalRemoving
)

// RemovalStatus classifies one removal attempt.
type RemovalStatus string

const (
	RemovalRemoved RemovalStatus = "removed"
	RemovalFailed  RemovalStatus = "failed"
	// RemovalIgnored: no matching staged removal, or one already in flight.
	RemovalIgnored RemovalStatus = "ignored"
)

// RemovalOutcome is the result value of one confirmed removal.
type RemovalOutcome struct {
	Status       RemovalStatus                `json:"status"`
	Notification *Notification                `json:"notification,omitempty"`
	Allocations  []domain.CustomerAllocations `json:"allocations,omitempty"`
	Catalog      *catalog.Snapshot            `json:"-"`
}

// RemovalService decommissions one confirmed allocation at a time. A delete
// is only issued for an id that was explicitly staged first, and the local
// view is never mutated ahead of server confirmation - capacity is restored
// implicitly because the server stays authoritative.
type RemovalService struct {
	api     AllocationAPI
	catalog CatalogFetcher
	events  EventSink
	logger  *zap.Logger

	mu        sync.Mutex
	state     RemovalState
	pendingID int64
}

func NewRemovalService(api AllocationAPI, cat CatalogFetcher, sink EventSink, logger *zap.Logger) *RemovalService {
	return &RemovalService{
		api:     api,
		catalog: cat,
		events:  sink,
		logger:  logger,
		state:   RemovalIdle,
	}
}

// State returns the current removal state.
func (s *RemovalService) State() RemovalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Request stages an allocation for removal and moves to ConfirmPending.
// While a removal is staged or in flight, further requests are ignored and
// reported via the returned flag.
func (s *RemovalService) Request(allocationID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != RemovalIdle {
		return false
	}
	s.state = RemovalConfirmPending
	s.pendingID = allocationID
	return true
}

// Cancel abandons a staged removal with no side effects.
func (s *RemovalService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == RemovalConfirmPending {
		s.state = RemovalIdle
		s.pendingID = 0
	}
}

// Confirm issues the delete for a previously staged allocation. On success
// the allocation list and catalog are re-fetched from the server; on
// failure the list is left unchanged and an error notification is raised.
func (s *RemovalService) Confirm(ctx context.Context, allocationID, branchID int64) *RemovalOutcome {
	s.mu.Lock()
	if s.state != RemovalConfirmPending || s.pendingID != allocationID {
		s.mu.Unlock()
		s.logger.Warn("Ignoring removal confirm without matching staged request",
			zap.Int64("allocation_id", allocationID),
		)
		return &RemovalOutcome{Status: RemovalIgnored}
	}
	s.state = RemovalRemoving
	s.mu.Unlock()

	finish := func() {
		s.mu.Lock()
		s.state = RemovalIdle
		s.pendingID = 0
		s.mu.Unlock()
	}

	if err := s.api.DeleteAllocation(ctx, allocationID); err != nil {
		finish()
		s.logger.Error("Allocation removal failed",
			zap.Int64("allocation_id", allocationID),
			zap.Error(err),
		)
		return &RemovalOutcome{Status: RemovalFailed, Notification: notificationFromError(err)}
	}

	outcome := &RemovalOutcome{
		Status: RemovalRemoved,
		Notification: &Notification{
			Message:  fmt.Sprintf("allocation %d removed", allocationID),
			Severity: SeveritySuccess,
		},
	}

	customers, err := s.api.ListAllocations(ctx, branchID)
	if err != nil {
		s.logger.Warn("Allocation list refresh after removal failed", zap.Error(err))
	} else {
		outcome.Allocations = customers
	}

	fresh, err := s.catalog.Fetch(ctx, branchID, 0)
	if err != nil {
		s.logger.Warn("Catalog refresh after removal failed", zap.Error(err))
	} else {
		outcome.Catalog = fresh
	}

	if s.events != nil {
		ev := events.RemovedEvent{
			AllocationID: allocationID,
			BranchID:     branchID,
			RemovedAt:    time.Now().UTC(),
		}
		if err := s.events.AllocationRemoved(ctx, ev); err != nil {
			s.logger.Warn("Failed to publish removed event", zap.Error(err))
		}
	}

	finish()
	return outcome
}
