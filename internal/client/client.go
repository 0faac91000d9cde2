// Package client is the adapter to the booking server's allocation API.
// The server is the sole source of truth for remaining capacity; every
// mutating call here is followed by a fresh read on the caller's side.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cowork-allocator/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// envelope is the booking server's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// AllocationLine is one room entry in the batch create request.
type AllocationLine struct {
	RoomID          int64           `json:"room_id"`
	QuantityBooked  int             `json:"quantity_booked"`
	Rate            decimal.Decimal `json:"rate"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
}

// CreateAllocationsRequest is the body of the batch allocate call. Dates
// travel as ISO-8601 date strings; end_date is null for open-ended bookings.
type CreateAllocationsRequest struct {
	CustomerID       int64              `json:"customer_id"`
	CustomerBranchID int64              `json:"customer_branch_id"`
	MgmtID           int64              `json:"mgmt_id"`
	BranchID         int64              `json:"branch_id"`
	Rooms            []AllocationLine   `json:"rooms"`
	BookingType      domain.BookingType `json:"booking_type"`
	StartDate        string             `json:"start_date"`
	EndDate          *string            `json:"end_date"`
	Frequency        string             `json:"frequency"`
	RecurringInvoice bool               `json:"recurring_invoice"`
	PaymentTerm      int                `json:"payment_term"`
}

// CreateAllocationsResponse confirms a committed batch: the created
// allocation ids plus the refreshed customer-aggregated allocation list,
// so callers never update their view from local assumption.
type CreateAllocationsResponse struct {
	AllocationIDs []int64                      `json:"allocation_ids"`
	Customers     []domain.CustomerAllocations `json:"customers"`
}

// Client talks to the booking server over HTTP. Retries are deliberately
// disabled: a failed commit or removal requires manual user retry.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New creates a booking API client.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		logger: logger,
	}
}

// FetchAvailableRooms lists a branch's rooms with live availability.
// customerID is optional (zero = unscoped).
func (c *Client) FetchAvailableRooms(ctx context.Context, branchID, customerID int64) ([]domain.Room, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("branch_id", strconv.FormatInt(branchID, 10))
	if customerID != 0 {
		req.SetQueryParam("customer_id", strconv.FormatInt(customerID, 10))
	}

	var env envelope
	resp, err := req.SetResult(&env).SetError(&env).Get("/api/v1/rooms/available")
	if err := c.check(resp, err, &env); err != nil {
		return nil, err
	}

	var rooms []domain.Room
	if err := json.Unmarshal(env.Data, &rooms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rooms: %w", err)
	}
	return rooms, nil
}

// ListAllocations returns the customer-aggregated allocation list for a
// branch: customers with nested active allocations and their computed
// total_allocated_amount.
func (c *Client) ListAllocations(ctx context.Context, branchID int64) ([]domain.CustomerAllocations, error) {
	var env envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("branch_id", strconv.FormatInt(branchID, 10)).
		SetResult(&env).
		SetError(&env).
		Get("/api/v1/allocations")
	if err := c.check(resp, err, &env); err != nil {
		return nil, err
	}

	var customers []domain.CustomerAllocations
	if err := json.Unmarshal(env.Data, &customers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allocations: %w", err)
	}
	return customers, nil
}

// CreateAllocations submits one draft as a single atomic batch.
func (c *Client) CreateAllocations(ctx context.Context, req CreateAllocationsRequest) (*CreateAllocationsResponse, error) {
	c.logger.Info("Submitting allocation batch",
		zap.Int64("customer_id", req.CustomerID),
		zap.Int64("branch_id", req.BranchID),
		zap.Int("line_count", len(req.Rooms)),
	)

	var env envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&env).
		SetError(&env).
		Post("/api/v1/allocations")
	if err := c.check(resp, err, &env); err != nil {
		return nil, err
	}

	var created CreateAllocationsResponse
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal create response: %w", err)
	}

	c.logger.Info("Allocation batch committed",
		zap.Int64("customer_id", req.CustomerID),
		zap.Int("created_count", len(created.AllocationIDs)),
	)

	return &created, nil
}

// DeleteAllocation removes one confirmed allocation by id.
func (c *Client) DeleteAllocation(ctx context.Context, allocationID int64) error {
	var env envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&env).
		SetError(&env).
		Delete(fmt.Sprintf("/api/v1/allocations/%d", allocationID))
	return c.check(resp, err, &env)
}

// check maps the transport result onto the error taxonomy.
func (c *Client) check(resp *resty.Response, err error, env *envelope) error {
	if err != nil {
		return &NetworkError{Err: err}
	}
	if resp.IsError() {
		msg := env.Message
		if msg == "" {
			msg = resp.Status()
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
	}
	return nil
}
