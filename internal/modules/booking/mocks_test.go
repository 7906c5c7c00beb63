package booking

import (
	"context"
	"time"

	"hrdesk/internal/domain"
	"hrdesk/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

// RunInTx records the call and runs fn against the mock itself.
func (m *MockBookingRepository) RunInTx(ctx context.Context, fn func(tx repository.BookingStore) error) error {
	m.Called(ctx)
	return fn(m)
}

func (m *MockBookingRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, roomID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil && b.ID == "" {
		b.ID = "booking-999"
	}
	return args.Error(0)
}

func (m *MockBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, change repository.StatusChange) error {
	args := m.Called(ctx, id, change)
	return args.Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int64), args.Error(2)
}

type MockRoomReader struct {
	mock.Mock
}

func (m *MockRoomReader) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

type MockReviewerLookup struct {
	mock.Mock
}

func (m *MockReviewerLookup) ListReviewers(ctx context.Context, excluding string) ([]string, error) {
	args := m.Called(ctx, excluding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) Notify(ctx context.Context, n domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// fakeStore is an in-memory BookingStore that returns every booking of the
// room, leaving all filtering to the caller.
type fakeStore struct {
	bookings []domain.Booking
	err      error
}

func (f *fakeStore) FindOverlapping(_ context.Context, roomID string, _, _ time.Time) ([]domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(context.Context, *domain.Booking) error { return nil }
func (f *fakeStore) Update(context.Context, *domain.Booking) error { return nil }
func (f *fakeStore) GetByID(context.Context, string) (*domain.Booking, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeStore) GetByIDForUpdate(context.Context, string) (*domain.Booking, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeStore) UpdateStatus(context.Context, string, repository.StatusChange) error { return nil }
func (f *fakeStore) List(context.Context, repository.BookingFilter) ([]domain.Booking, int64, error) {
	return nil, 0, nil
}

func asActor(id string, role domain.Role) context.Context {
	return domain.ContextWithActor(context.Background(), domain.Actor{ID: id, Role: role})
}

func utc(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}
