package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation is a confirmed, server-owned booking linking one customer to a
// quantity of a room for a date range at a tariff and discount. Allocations
// are created only as part of a committed batch and destroyed only by the
// removal flow; there is no in-place edit.
type Allocation struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customer_id"`
	BranchID        int64           `json:"branch_id"`
	RoomID          int64           `json:"room_id"`
	RoomName        string          `json:"room_name"`
	RoomType        RoomType        `json:"room_type"`
	QuantityBooked  int             `json:"quantity_booked"`
	Rate            decimal.Decimal `json:"rate"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	BookingType     BookingType     `json:"booking_type"`
	StartDate       Date            `json:"start_date"`
	EndDate         *Date           `json:"end_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CustomerAllocations is the customer-aggregated view the booking server
// returns: one customer with their active allocations and the computed
// total across them.
type CustomerAllocations struct {
	CustomerID           int64           `json:"customer_id"`
	CustomerName         string          `json:"customer_name"`
	Email                string          `json:"email"`
	Allocations          []Allocation    `json:"allocations"`
	TotalAllocatedAmount decimal.Decimal `json:"total_allocated_amount"`
}
