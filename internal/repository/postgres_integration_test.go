//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"hrdesk/internal/database"
	"hrdesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS room_bookings, meeting_rooms, user_roles, notifications").Error)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		db.Exec("DROP TABLE IF EXISTS room_bookings, meeting_rooms, user_roles, notifications")
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgres_OverlapGuard(t *testing.T) {
	db := setupPostgres(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newBooking("room-1", "10:00", "11:00", domain.BookingApproved)))

	err := repo.Create(ctx, newBooking("room-1", "10:30", "10:45", domain.BookingPending))
	assert.ErrorIs(t, err, ErrOverlap)

	assert.NoError(t, repo.Create(ctx, newBooking("room-1", "11:00", "12:00", domain.BookingPending)))
	assert.NoError(t, repo.Create(ctx, newBooking("room-1", "10:15", "10:30", domain.BookingCancelled)))
	assert.NoError(t, repo.Create(ctx, newBooking("room-2", "10:00", "11:00", domain.BookingPending)))

	// Running the migration twice leaves the constraint in place.
	require.NoError(t, Migrate(db))
	err = repo.Create(ctx, newBooking("room-1", "10:59", "11:01", domain.BookingPending))
	assert.ErrorIs(t, err, ErrOverlap)
}
