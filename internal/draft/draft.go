package draft

import (
	"errors"

	"cowork-allocator/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrDuplicateRoom is returned by AddLine when the room is already drafted.
var ErrDuplicateRoom = errors.New("room already in draft")

// ErrLineNotFound is returned by the line setters when no line exists for
// the given room.
var ErrLineNotFound = errors.New("no draft line for room")

// Line is one room selection inside a draft. Lines are ephemeral and
// client-owned: they exist only until commit or discard.
type Line struct {
	RoomID          int64           `json:"room_id"`
	RoomName        string          `json:"room_name"`
	RoomType        domain.RoomType `json:"room_type"`
	QuantityBooked  int             `json:"quantity_booked"`
	Rate            decimal.Decimal `json:"rate"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
}

// AllocationDraft is the in-memory cart of room selections assembled for one
// customer before commit. It is a plain value owned by the calling context
// and passed explicitly into the pricing and commit functions; builder
// operations are synchronous and touch nothing outside the draft itself.
// Capacity is never checked here - that happens at commit-time validation,
// against the freshest catalog snapshot.
type AllocationDraft struct {
	CustomerID       int64              `json:"customer_id"`
	CustomerBranchID int64              `json:"customer_branch_id"`
	MgmtID           int64              `json:"mgmt_id"`
	BranchID         int64              `json:"branch_id"`
	BookingType      domain.BookingType `json:"booking_type"`
	StartDate        *domain.Date       `json:"start_date"`
	EndDate          *domain.Date       `json:"end_date"`
	Frequency        string             `json:"frequency"`
	RecurringInvoice bool               `json:"recurring_invoice"`
	PaymentTerm      int                `json:"payment_term"`
	Lines            []Line             `json:"lines"`
}

// New builds an empty draft for one customer against one branch.
func New(customerID, branchID int64, bookingType domain.BookingType) *AllocationDraft {
	return &AllocationDraft{
		CustomerID:  customerID,
		BranchID:    branchID,
		BookingType: bookingType,
	}
}

// AddLine appends a selection for the given room with quantity 1, zero
// discount, and the tariff matching the draft's current booking type.
// A draft holds at most one line per room.
func (d *AllocationDraft) AddLine(room domain.Room) error {
	if _, ok := d.Line(room.ID); ok {
		return ErrDuplicateRoom
	}
	d.Lines = append(d.Lines, Line{
		RoomID:          room.ID,
		RoomName:        room.RoomName,
		RoomType:        room.RoomType,
		QuantityBooked:  1,
		Rate:            room.Tariff(d.BookingType),
		DiscountApplied: decimal.Zero,
	})
	return nil
}

// RemoveLine drops the selection for the given room. Removing an absent
// room is a no-op, not an error.
func (d *AllocationDraft) RemoveLine(roomID int64) {
	for i, l := range d.Lines {
		if l.RoomID == roomID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the booked quantity on an existing line.
func (d *AllocationDraft) UpdateQuantity(roomID int64, quantity int) error {
	l, ok := d.Line(roomID)
	if !ok {
		return ErrLineNotFound
	}
	l.QuantityBooked = quantity
	return nil
}

// UpdateRate sets the rate on an existing line.
func (d *AllocationDraft) UpdateRate(roomID int64, rate decimal.Decimal) error {
	l, ok := d.Line(roomID)
	if !ok {
		return ErrLineNotFound
	}
	l.Rate = rate
	return nil
}

// UpdateDiscount sets the discount percentage on an existing line.
func (d *AllocationDraft) UpdateDiscount(roomID int64, percent decimal.Decimal) error {
	l, ok := d.Line(roomID)
	if !ok {
		return ErrLineNotFound
	}
	l.DiscountApplied = percent
	return nil
}

// SetBookingType switches the draft between monthly and hourly billing.
// Lines already in the draft keep their current rate: the operator may have
// hand-edited them, so re-rating silently would lose input. New lines pick
// up the tariff for the new booking type.
func (d *AllocationDraft) SetBookingType(bt domain.BookingType) {
	d.BookingType = bt
}

// Line returns a pointer to the selection for the given room, if present.
func (d *AllocationDraft) Line(roomID int64) (*Line, bool) {
	for i := range d.Lines {
		if d.Lines[i].RoomID == roomID {
			return &d.Lines[i], true
		}
	}
	return nil, false
}

// DraftedQuantity returns the quantity already drafted for the given room,
// zero when the room is not in the draft.
func (d *AllocationDraft) DraftedQuantity(roomID int64) int {
	if l, ok := d.Line(roomID); ok {
		return l.QuantityBooked
	}
	return 0
}

// IsEmpty reports whether the draft has no lines.
func (d *AllocationDraft) IsEmpty() bool {
	return len(d.Lines) == 0
}

// Clear drops all lines. Called after a successful commit; the draft value
// itself stays usable for a new selection.
func (d *AllocationDraft) Clear() {
	d.Lines = nil
}
