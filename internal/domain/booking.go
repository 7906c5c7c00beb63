package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// HoldsInterval reports whether a booking in this status occupies its room.
func (s BookingStatus) HoldsInterval() bool {
	return s == BookingPending || s == BookingApproved
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID          string        `json:"id"`
	RoomID      string        `json:"room_id"`
	RequesterID string        `json:"requester_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Status      BookingStatus `json:"status"`
	ReviewedBy  string        `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time    `json:"reviewed_at,omitempty"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Overlaps applies the half-open test: [a.start,a.end) and [start,end)
// intersect iff a.start < end && a.end > start.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// NormalizeTime converts t to the form bookings are stored and compared in.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
