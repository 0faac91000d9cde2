package domain

import "github.com/shopspring/decimal"

// RoomType classifies a workspace unit.
type RoomType string

const (
	RoomTypeSeater  RoomType = "seater"
	RoomTypeMeeting RoomType = "meeting"
)

// AllocationPolicy controls how a room's capacity may be split across customers.
type AllocationPolicy string

const (
	// PolicyPartialSeats: divisible at seat granularity, shareable up to total capacity.
	PolicyPartialSeats AllocationPolicy = "partial_seats"
	// PolicyFullRoom: atomic whole units, one unit cannot be split across customers.
	PolicyFullRoom AllocationPolicy = "full_room"
)

// BookingType selects the tariff applied to a draft line.
type BookingType string

const (
	BookingMonthly BookingType = "monthly"
	BookingHourly  BookingType = "hourly"
)

// Room is a read-only view of a workspace unit as reported by the booking
// server. AvailableQuantity is server-derived and authoritative: it reflects
// all confirmed allocations at fetch time and never the caller's own
// uncommitted draft.
type Room struct {
	ID                int64           `json:"id"`
	BranchID          int64           `json:"branch_id"`
	RoomName          string          `json:"room_name"`
	RoomType          RoomType        `json:"room_type"`
	SeaterCapacity    int             `json:"seater_capacity"`
	TotalQuantity     int             `json:"total_quantity"`
	MonthlyCost       decimal.Decimal `json:"monthly_cost"`
	HourlyCost        decimal.Decimal `json:"hourly_cost"`
	AvailableQuantity int             `json:"available_quantity"`
}

// Policy derives the allocation policy from the room type.
func (r Room) Policy() AllocationPolicy {
	if r.RoomType == RoomTypeSeater {
		return PolicyPartialSeats
	}
	return PolicyFullRoom
}

// Tariff returns the rate matching the given booking type.
func (r Room) Tariff(bt BookingType) decimal.Decimal {
	if bt == BookingHourly {
		return r.HourlyCost
	}
	return r.MonthlyCost
}
