package domain

import "time"

type NotificationType string

const (
	NotifBooking         NotificationType = "booking"
	NotifBookingApproved NotificationType = "booking_approved"
	NotifBookingRejected NotificationType = "booking_rejected"
)

type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message,omitempty"`
	Link        string           `json:"link,omitempty"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}
