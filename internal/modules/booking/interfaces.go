package booking

import (
	"context"

	"hrdesk/internal/domain"
	"hrdesk/internal/repository"
)

// BookingRepository is the booking store plus its transaction runner.
type BookingRepository interface {
	repository.BookingStore
	RunInTx(ctx context.Context, fn func(tx repository.BookingStore) error) error
}

type RoomReader interface {
	GetByID(ctx context.Context, id string) (*domain.Room, error)
}

// ReviewerLookup lists the users allowed to review bookings.
type ReviewerLookup interface {
	ListReviewers(ctx context.Context, excluding string) ([]string, error)
}

type NotificationSender interface {
	Notify(ctx context.Context, n domain.Notification) error
}
