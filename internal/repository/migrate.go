package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the tables owned by this service and installs the
// storage-level guard against overlapping bookings.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&roomModel{},
		&bookingModel{},
		&userRoleModel{},
		&notificationModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return ensureOverlapGuard(db)
}

func ensureOverlapGuard(db *gorm.DB) error {
	var stmts []string
	switch db.Dialector.Name() {
	case "postgres":
		stmts = postgresOverlapGuard
	case "sqlite":
		stmts = sqliteOverlapGuard
	default:
		return fmt.Errorf("no overlap guard for dialect %q", db.Dialector.Name())
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("install overlap guard: %w", err)
		}
	}
	return nil
}

var postgresOverlapGuard = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + overlapConstraintName + `') THEN
		ALTER TABLE room_bookings
		ADD CONSTRAINT ` + overlapConstraintName + `
		EXCLUDE USING gist (
			room_id WITH =,
			tstzrange(start_time, end_time, '[)') WITH &&
		) WHERE (status IN ('pending', 'approved'));
	END IF;
END $$`,
}

const sqliteOverlapCondition = `
	SELECT RAISE(ABORT, '` + overlapTriggerMessage + `')
	WHERE EXISTS (
		SELECT 1 FROM room_bookings b
		WHERE b.room_id = NEW.room_id
		  AND b.id <> NEW.id
		  AND b.status IN ('pending', 'approved')
		  AND b.start_time < NEW.end_time
		  AND b.end_time > NEW.start_time
	);`

var sqliteOverlapGuard = []string{
	`CREATE TRIGGER IF NOT EXISTS room_bookings_no_overlap_insert
BEFORE INSERT ON room_bookings
WHEN NEW.status IN ('pending', 'approved')
BEGIN` + sqliteOverlapCondition + `
END`,
	`CREATE TRIGGER IF NOT EXISTS room_bookings_no_overlap_update
BEFORE UPDATE OF room_id, start_time, end_time, status ON room_bookings
WHEN NEW.status IN ('pending', 'approved')
BEGIN` + sqliteOverlapCondition + `
END`,
}
