package allocation

import (
	"fmt"
	"time"

	"cowork-allocator/internal/catalog"
	"cowork-allocator/internal/domain"
	"cowork-allocator/internal/draft"

	"github.com/shopspring/decimal"
)

// Validate checks a draft against the given catalog snapshot and collects
// ALL errors into a field-keyed map - it never fails fast, so the operator
// sees every problem at once. An empty result means the draft may be
// submitted. Capacity is checked against the server-reported
// available_quantity in the snapshot; the server remains the final arbiter
// at commit time.
func Validate(d *draft.AllocationDraft, snap *catalog.Snapshot, now time.Time) Errors {
	errs := Errors{}
	today := domain.DateOf(now)

	if d.IsEmpty() {
		errs.add(Field{Name: FieldRooms}, KindRoomsRequired, "select at least one room")
	}

	if d.StartDate == nil {
		errs.add(Field{Name: FieldStartDate}, KindStartDateInvalid, "start date is required")
	} else if d.StartDate.Before(today.Time) {
		errs.add(Field{Name: FieldStartDate}, KindStartDateInvalid, "start date cannot be in the past")
	}

	if d.EndDate != nil && d.StartDate != nil && d.EndDate.Before(d.StartDate.Time) {
		errs.add(Field{Name: FieldEndDate}, KindEndDateInvalid, "end date cannot be before start date")
	}

	for _, l := range d.Lines {
		validateLine(errs, l, snap)
	}

	return errs
}

func validateLine(errs Errors, l draft.Line, snap *catalog.Snapshot) {
	if l.QuantityBooked <= 0 {
		errs.add(Field{Name: FieldQuantity, RoomID: l.RoomID}, KindQuantityInvalid,
			"quantity must be a positive integer")
	}
	if !l.Rate.GreaterThan(decimal.Zero) {
		errs.add(Field{Name: FieldRate, RoomID: l.RoomID}, KindRateInvalid,
			"rate must be greater than zero")
	}
	if l.DiscountApplied.LessThan(decimal.Zero) || l.DiscountApplied.GreaterThan(decimal.NewFromInt(100)) {
		errs.add(Field{Name: FieldDiscount, RoomID: l.RoomID}, KindDiscountInvalid,
			"discount must be between 0 and 100")
	}

	// Capacity check only when the quantity itself is plausible, so the two
	// errors cannot stack on one field key.
	if l.QuantityBooked <= 0 {
		return
	}
	room, ok := snap.Room(l.RoomID)
	if !ok {
		errs.add(Field{Name: FieldQuantity, RoomID: l.RoomID}, KindCapacityExceeded,
			fmt.Sprintf("room %q is no longer available", l.RoomName))
		return
	}
	if l.QuantityBooked > room.AvailableQuantity {
		errs.add(Field{Name: FieldQuantity, RoomID: l.RoomID}, KindCapacityExceeded,
			fmt.Sprintf("only %d available", room.AvailableQuantity))
	}
}
