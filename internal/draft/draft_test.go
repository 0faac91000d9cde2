package draft_test

import (
	"testing"

	"cowork-allocator/internal/domain"
	"cowork-allocator/internal/draft"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seaterRoom() domain.Room {
	return domain.Room{
		ID:                7,
		BranchID:          1,
		RoomName:          "Open Desk A",
		RoomType:          domain.RoomTypeSeater,
		SeaterCapacity:    4,
		TotalQuantity:     4,
		MonthlyCost:       decimal.RequireFromString("1000"),
		HourlyCost:        decimal.RequireFromString("25"),
		AvailableQuantity: 4,
	}
}

func TestAddLine_DefaultsQuantityAndTariff(t *testing.T) {
	d := draft.New(42, 1, domain.BookingMonthly)

	require.NoError(t, d.AddLine(seaterRoom()))

	l, ok := d.Line(7)
	require.True(t, ok)
	assert.Equal(t, 1, l.QuantityBooked)
	assert.True(t, l.Rate.Equal(decimal.RequireFromString("1000")))
	assert.True(t, l.DiscountApplied.IsZero())
}

func TestAddLine_HourlyDraftPicksHourlyTariff(t *testing.T) {
	d := draft.New(42, 1, domain.BookingHourly)

	require.NoError(t, d.AddLine(seaterRoom()))

	l, ok := d.Line(7)
	require.True(t, ok)
	assert.True(t, l.Rate.Equal(decimal.RequireFromString("25")))
}

func TestAddLine_DuplicateRoomRejected(t *testing.T) {
	d := draft.New(42, 1, domain.BookingMonthly)
	require.NoError(t, d.AddLine(seaterRoom()))

	err := d.AddLine(seaterRoom())
	assert.ErrorIs(t, err, draft.ErrDuplicateRoom)
	assert.Len(t, d.Lines, 1)
}

func TestRemoveLine_AbsentRoomIsNoOp(t *testing.T) {
	d := draft.New(42, 1, domain.BookingMonthly)
	require.NoError(t, d.AddLine(seaterRoom()))

	d.RemoveLine(999)
	assert.Len(t, d.Lines, 1)

	d.RemoveLine(7)
	assert.True(t, d.IsEmpty())
}

func TestUpdateQuantity_MissingLine(t *testing.T) {
	d := draft.New(42, 1, domain.BookingMonthly)
	assert.ErrorIs(t, d.UpdateQuantity(7, 3), draft.ErrLineNotFound)
}

func TestUpdateSetters_MutateLineInPlace(t *testing.T) {
	d := draft.New(42, 1, domain.BookingMonthly)
	require.NoError(t, d.AddLine(seaterRoom()))

	require.NoError(t, d.UpdateQuantity(7, 3))
	require.NoError(t, d.UpdateRate(7, decimal.RequireFromString("900")))
	require.NoError(t, d.UpdateDiscount(7, decimal.RequireFromString("10")))

	l, ok := d.Line(7)
	require.True(t, ok)
	assert.Equal(t, 3, l.QuantityBooked)
	assert.True(t, l.Rate.Equal(decimal.RequireFromString("900")))
	assert.True(t, l.DiscountApplied.Equal(decimal.RequireFromString("10")))
}

func TestSetBookingType_ExistingLinesKeepRate(t *testing.T) {
	d := draft.New(42, 1, domain.BookingMonthly)
	require.NoError(t, d.AddLine(seaterRoom()))

	d.SetBookingType(domain.BookingHourly)

	l, ok := d.Line(7)
	require.True(t, ok)
	assert.True(t, l.Rate.Equal(decimal.RequireFromString("1000")),
		"existing line must keep its rate after booking type switch")

	// new lines pick up the new tariff
	other := seaterRoom()
	other.ID = 8
	require.NoError(t, d.AddLine(other))
	l2, ok := d.Line(8)
	require.True(t, ok)
	assert.True(t, l2.Rate.Equal(decimal.RequireFromString("25")))
}

func TestDraftedQuantity(t *testing.T) {
	d := draft.New(42, 1, domain.BookingMonthly)
	require.NoError(t, d.AddLine(seaterRoom()))
	require.NoError(t, d.UpdateQuantity(7, 3))

	assert.Equal(t, 3, d.DraftedQuantity(7))
	assert.Equal(t, 0, d.DraftedQuantity(999))
}

func TestClear_DropsAllLines(t *testing.T) {
	d := draft.New(42, 1, domain.BookingMonthly)
	require.NoError(t, d.AddLine(seaterRoom()))

	d.Clear()

	assert.True(t, d.IsEmpty())
	assert.Equal(t, int64(42), d.CustomerID)
}
