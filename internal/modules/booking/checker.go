package booking

import (
	"context"
	"log"
	"time"

	"hrdesk/internal/repository"
)

// Checker answers whether an interval collides with a booking that holds its room.
type Checker struct {
	store repository.BookingStore
}

// NewChecker binds the checker to a store: the base connection for advisory
// checks, or the store handed out by RunInTx inside a unit of work.
func NewChecker(store repository.BookingStore) *Checker {
	return &Checker{store: store}
}

// HasConflict reports whether [start,end) overlaps a pending or approved
// booking of the room other than excludeID. It fails safe: a malformed
// interval or a read error counts as a conflict.
func (c *Checker) HasConflict(ctx context.Context, roomID string, start, end time.Time, excludeID string) bool {
	conflict, _ := c.check(ctx, roomID, start, end, excludeID)
	return conflict
}

// check is HasConflict that also returns the read error, so callers can tell a
// deadline apart from a real collision.
func (c *Checker) check(ctx context.Context, roomID string, start, end time.Time, excludeID string) (bool, error) {
	if !start.Before(end) {
		log.Printf("booking_conflict_check invalid_interval room_id=%s start=%s end=%s",
			roomID, start.Format(time.RFC3339), end.Format(time.RFC3339))
		return true, nil
	}

	candidates, err := c.store.FindOverlapping(ctx, roomID, start, end)
	if err != nil {
		log.Printf("booking_conflict_check read_failed room_id=%s error=%q", roomID, err.Error())
		return true, err
	}

	for _, b := range candidates {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.Status.HoldsInterval() {
			continue
		}
		if b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}
