package allocation

import (
	"context"
	"errors"
	"sync"
	"time"

	"cowork-allocator/internal/catalog"
	"cowork-allocator/internal/client"
	"cowork-allocator/internal/domain"
	"cowork-allocator/internal/draft"
	"cowork-allocator/internal/events"

	"go.uber.org/zap"
)

// CommitState tracks the commit flow: Idle -> Validating -> Submitting ->
// Committed | Failed.
type CommitState int

const (
	StateIdle CommitState = iota
	StateValidating
	StateSubmitting
	StateCommitted
	StateFailed
)

// CommitStatus is the outcome classification returned to callers.
type CommitStatus string

const (
	// StatusCommitted: the batch was accepted, draft cleared, views refreshed.
	StatusCommitted CommitStatus = "committed"
	// StatusRejected: local validation failed, nothing reached the network.
	StatusRejected CommitStatus = "rejected"
	// StatusFailed: the booking server rejected or was unreachable; the
	// draft is preserved unchanged for correction.
	StatusFailed CommitStatus = "failed"
	// StatusIgnored: another commit is already in flight.
	StatusIgnored CommitStatus = "ignored"
)

// AllocationAPI is the slice of the booking API the commit and removal
// services need (for test mocking).
type AllocationAPI interface {
	CreateAllocations(ctx context.Context, req client.CreateAllocationsRequest) (*client.CreateAllocationsResponse, error)
	DeleteAllocation(ctx context.Context, allocationID int64) error
	ListAllocations(ctx context.Context, branchID int64) ([]domain.CustomerAllocations, error)
}

// CatalogFetcher re-reads authoritative availability after mutating calls.
type CatalogFetcher interface {
	Fetch(ctx context.Context, branchID, customerID int64) (*catalog.Snapshot, error)
}

// EventSink publishes allocation lifecycle events. May be nil when no
// stream is configured.
type EventSink interface {
	AllocationsCommitted(ctx context.Context, ev events.CommittedEvent) error
	AllocationRemoved(ctx context.Context, ev events.RemovedEvent) error
}

// CommitOutcome is the result value of one submit attempt. Server-side
// failures arrive here as a notification, never as a panic or lost state.
type CommitOutcome struct {
	Status       CommitStatus                 `json:"status"`
	Errors       Errors                       `json:"errors,omitempty"`
	Notification *Notification                `json:"notification,omitempty"`
	CreatedIDs   []int64                      `json:"created_ids,omitempty"`
	Allocations  []domain.CustomerAllocations `json:"allocations,omitempty"`
	Catalog      *catalog.Snapshot            `json:"-"`
}

// CommitService validates a draft against the latest catalog snapshot and
// submits it as one atomic batch. Exactly one commit may be in flight at a
// time; further submit calls are ignored until resolution, preventing
// duplicate bookings from rapid repeated triggers.
type CommitService struct {
	api     AllocationAPI
	catalog CatalogFetcher
	events  EventSink
	logger  *zap.Logger

	now func() time.Time

	mu       sync.Mutex
	inFlight bool
	state    CommitState
}

func NewCommitService(api AllocationAPI, cat CatalogFetcher, sink EventSink, logger *zap.Logger) *CommitService {
	return &CommitService{
		api:     api,
		catalog: cat,
		events:  sink,
		logger:  logger,
		now:     time.Now,
		state:   StateIdle,
	}
}

// State returns the current commit state.
func (s *CommitService) State() CommitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *CommitService) setState(st CommitState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Submit validates the draft and, when clean, posts it as one batch.
//   - Validation errors: StatusRejected with the full field-error map; the
//     booking server is never called.
//   - Success: the draft is cleared, the catalog is re-fetched, and the
//     customer allocation list in the outcome comes from the server
//     response - never from local assumption.
//   - Failure: StatusFailed, the draft is preserved unchanged so no input
//     is lost, and a transient notification is raised. Capacity rejections
//     from a lost race are surfaced verbatim; no silent retry.
func (s *CommitService) Submit(ctx context.Context, d *draft.AllocationDraft, snap *catalog.Snapshot) *CommitOutcome {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn("Ignoring submit: commit already in flight",
			zap.Int64("customer_id", d.CustomerID),
		)
		return &CommitOutcome{Status: StatusIgnored}
	}
	s.inFlight = true
	s.state = StateValidating
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if errs := Validate(d, snap, s.now()); len(errs) > 0 {
		s.setState(StateIdle)
		return &CommitOutcome{Status: StatusRejected, Errors: errs}
	}

	s.setState(StateSubmitting)

	customerID := d.CustomerID
	branchID := d.BranchID
	bookingType := d.BookingType

	resp, err := s.api.CreateAllocations(ctx, buildCreateRequest(d))
	if err != nil {
		s.setState(StateFailed)
		s.logger.Error("Allocation commit failed",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
		return &CommitOutcome{Status: StatusFailed, Notification: notificationFromError(err)}
	}

	// The batch is confirmed: discard the local selection and restore
	// authoritative availability from the server.
	d.Clear()

	outcome := &CommitOutcome{
		Status:       StatusCommitted,
		CreatedIDs:   resp.AllocationIDs,
		Allocations:  resp.Customers,
		Notification: &Notification{Message: "allocation committed", Severity: SeveritySuccess},
	}

	fresh, err := s.catalog.Fetch(ctx, branchID, customerID)
	if err != nil {
		// The commit itself succeeded; a stale catalog only affects the next
		// fetch, which re-reads the server anyway.
		s.logger.Warn("Catalog refresh after commit failed", zap.Error(err))
	} else {
		outcome.Catalog = fresh
	}

	if s.events != nil {
		ev := events.CommittedEvent{
			CustomerID:    customerID,
			BranchID:      branchID,
			AllocationIDs: resp.AllocationIDs,
			BookingType:   bookingType,
			CommittedAt:   s.now().UTC(),
		}
		if err := s.events.AllocationsCommitted(ctx, ev); err != nil {
			s.logger.Warn("Failed to publish committed event", zap.Error(err))
		}
	}

	s.setState(StateCommitted)
	return outcome
}

func buildCreateRequest(d *draft.AllocationDraft) client.CreateAllocationsRequest {
	rooms := make([]client.AllocationLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		rooms = append(rooms, client.AllocationLine{
			RoomID:          l.RoomID,
			QuantityBooked:  l.QuantityBooked,
			Rate:            l.Rate,
			DiscountApplied: l.DiscountApplied,
		})
	}

	req := client.CreateAllocationsRequest{
		CustomerID:       d.CustomerID,
		CustomerBranchID: d.CustomerBranchID,
		MgmtID:           d.MgmtID,
		BranchID:         d.BranchID,
		Rooms:            rooms,
		BookingType:      d.BookingType,
		Frequency:        d.Frequency,
		RecurringInvoice: d.RecurringInvoice,
		PaymentTerm:      d.PaymentTerm,
	}
	if d.StartDate != nil {
		req.StartDate = d.StartDate.String()
	}
	if d.EndDate != nil {
		end := d.EndDate.String()
		req.EndDate = &end
	}
	return req
}

// notificationFromError converts a booking server failure into the uniform
// transient notification. Capacity conflicts keep the server's message
// verbatim so the operator sees the actual remaining amount.
func notificationFromError(err error) *Notification {
	var apiErr *client.APIError
	switch {
	case client.IsCapacityConflict(err) && errors.As(err, &apiErr):
		return &Notification{Message: apiErr.Message, Severity: SeverityError}
	case client.IsNotFound(err):
		return &Notification{Message: "allocation no longer exists", Severity: SeverityError}
	case client.IsNetwork(err):
		return &Notification{Message: "booking server unreachable, please retry", Severity: SeverityError}
	}
	return &Notification{Message: err.Error(), Severity: SeverityError}
}
