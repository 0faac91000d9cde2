// Package catalog provides the read-only view of rooms per branch with
// server-computed availability. Snapshots are fetched fresh from the booking
// server; this service never adjusts a capacity counter itself.
package catalog

import (
	"context"
	"fmt"
	"time"

	"cowork-allocator/internal/domain"
	"cowork-allocator/internal/draft"

	"go.uber.org/zap"
)

// RoomLister is the slice of the booking API the catalog needs
// (for test mocking).
type RoomLister interface {
	FetchAvailableRooms(ctx context.Context, branchID, customerID int64) ([]domain.Room, error)
}

// Snapshot is one fetch of a branch's rooms. AvailableQuantity in each room
// reflects all confirmed allocations at FetchedAt; it does NOT account for
// the caller's own uncommitted draft - use Headroom for that.
type Snapshot struct {
	BranchID  int64
	FetchedAt time.Time
	Rooms     []domain.Room

	byID map[int64]domain.Room
}

// NewSnapshot indexes the given rooms into a snapshot.
func NewSnapshot(branchID int64, rooms []domain.Room) *Snapshot {
	byID := make(map[int64]domain.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	return &Snapshot{
		BranchID:  branchID,
		FetchedAt: time.Now().UTC(),
		Rooms:     rooms,
		byID:      byID,
	}
}

// Room looks up a room by id.
func (s *Snapshot) Room(roomID int64) (domain.Room, bool) {
	r, ok := s.byID[roomID]
	return r, ok
}

// Headroom returns how many more units of the room the given draft may still
// take: server-reported availability minus the quantity already drafted for
// that room. Returns zero for rooms not in the snapshot.
func (s *Snapshot) Headroom(roomID int64, d *draft.AllocationDraft) int {
	r, ok := s.byID[roomID]
	if !ok {
		return 0
	}
	headroom := r.AvailableQuantity - d.DraftedQuantity(roomID)
	if headroom < 0 {
		return 0
	}
	return headroom
}

// Service fetches availability snapshots from the booking server.
type Service struct {
	api    RoomLister
	logger *zap.Logger
}

func NewService(api RoomLister, logger *zap.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Fetch retrieves the current room list for a branch. customerID is
// optional (zero = not scoped to a customer).
func (s *Service) Fetch(ctx context.Context, branchID, customerID int64) (*Snapshot, error) {
	rooms, err := s.api.FetchAvailableRooms(ctx, branchID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available rooms: %w", err)
	}

	s.logger.Debug("Fetched room catalog",
		zap.Int64("branch_id", branchID),
		zap.Int("room_count", len(rooms)),
	)

	return NewSnapshot(branchID, rooms), nil
}
