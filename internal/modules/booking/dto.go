package booking

import (
	"time"

	"hrdesk/internal/domain"
)

// IntervalInput carries a booking interval either as one civil date with two
// clock times, or as two civil date-times. Both are read in the organisation
// timezone.
type IntervalInput struct {
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	StartAt string `json:"start_at,omitempty"`
	EndAt   string `json:"end_at,omitempty"`
}

type BookingInput struct {
	RoomID      string `json:"room_id" validate:"required,max=64"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	IntervalInput
}

type CheckConflictInput struct {
	RoomID           string `json:"room_id" validate:"required,max=64"`
	ExcludeBookingID string `json:"exclude_booking_id" validate:"max=64"`
	IntervalInput
}

type CheckConflictResponse struct {
	Conflict bool `json:"conflict"`
}

type ListBookingsQuery struct {
	RoomID      string `form:"room_id"`
	RequesterID string `form:"requester_id"`
	Status      string `form:"status"`
	From        string `form:"from"`
	To          string `form:"to"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

type BookingList struct {
	Items  []domain.Booking `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type BusySlot struct {
	BookingID string               `json:"booking_id"`
	Title     string               `json:"title"`
	Status    domain.BookingStatus `json:"status"`
	Start     time.Time            `json:"start"`
	End       time.Time            `json:"end"`
}

type WorkingHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type Availability struct {
	RoomID       string       `json:"room_id"`
	Date         string       `json:"date"`
	Timezone     string       `json:"timezone"`
	WorkingHours WorkingHours `json:"working_hours"`
	BusySlots    []BusySlot   `json:"busy_slots"`
	FreeSlots    []TimeSlot   `json:"free_slots"`
}
