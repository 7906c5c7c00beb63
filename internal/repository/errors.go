package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrOverlap is returned when the storage-level overlap guard rejects a write.
	ErrOverlap = errors.New("room booking overlap")
	// ErrRetryExhausted is returned when a transaction kept failing with
	// serialization or lock errors.
	ErrRetryExhausted = errors.New("transaction retries exhausted")

	errSerialization = errors.New("serialization failure")
)

const (
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	overlapConstraintName = "room_bookings_no_overlap"
	overlapTriggerMessage = "room_booking_overlap"
)

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return fmt.Errorf("%w: %s", ErrOverlap, pgErr.ConstraintName)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", errSerialization, pgErr.Message)
		}
		return err
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %s", errSerialization, sqErr.Error())
		}
	}

	if strings.Contains(err.Error(), overlapTriggerMessage) {
		return fmt.Errorf("%w: %s", ErrOverlap, overlapTriggerMessage)
	}
	return err
}

func isRetryable(err error) bool {
	return errors.Is(err, errSerialization)
}
