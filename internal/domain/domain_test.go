package domain_test

import (
	"encoding/json"
	"testing"

	"cowork-allocator/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := domain.ParseDate("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", d.String())

	// full timestamps are truncated to the date
	d, err = domain.ParseDate("2026-09-01T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", d.String())

	_, err = domain.ParseDate("01/09/2026")
	assert.Error(t, err)
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := domain.NewDate(2026, 9, 1)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-09-01"`, string(data))

	var decoded domain.Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(d.Time))
}

func TestDateOf_TruncatesToUTCDate(t *testing.T) {
	d, err := domain.ParseDate("2026-09-01T23:59:59Z")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", d.String())
	assert.Equal(t, 0, d.Hour())
}

func TestRoom_Policy(t *testing.T) {
	seater := domain.Room{RoomType: domain.RoomTypeSeater}
	meeting := domain.Room{RoomType: domain.RoomTypeMeeting}

	assert.Equal(t, domain.PolicyPartialSeats, seater.Policy())
	assert.Equal(t, domain.PolicyFullRoom, meeting.Policy())
}

func TestRoom_Tariff(t *testing.T) {
	r := domain.Room{
		MonthlyCost: decimal.RequireFromString("1000"),
		HourlyCost:  decimal.RequireFromString("25"),
	}

	assert.True(t, r.Tariff(domain.BookingMonthly).Equal(decimal.RequireFromString("1000")))
	assert.True(t, r.Tariff(domain.BookingHourly).Equal(decimal.RequireFromString("25")))
}

func TestCustomer_CanBook(t *testing.T) {
	c := domain.Customer{ID: 42, BranchIDs: []int64{1, 3}}

	assert.True(t, c.CanBook(1))
	assert.True(t, c.CanBook(3))
	assert.False(t, c.CanBook(2))
}
