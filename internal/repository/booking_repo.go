package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"hrdesk/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultTxRetries = 5

// BookingStore is the data access a booking unit of work needs.
type BookingStore interface {
	FindOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]domain.Booking, error)
	Create(ctx context.Context, b *domain.Booking) error
	Update(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, change StatusChange) error
	List(ctx context.Context, f BookingFilter) ([]domain.Booking, int64, error)
}

type StatusChange struct {
	Status domain.BookingStatus
	// ActorID is recorded as reviewer for approve/reject.
	ActorID string
	At      time.Time
}

type BookingFilter struct {
	RoomID      string
	RequesterID string
	Status      domain.BookingStatus
	From        time.Time
	To          time.Time
	Limit       int
	Offset      int
}

type BookingRepository struct {
	db         *gorm.DB
	maxRetries int
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db, maxRetries: defaultTxRetries}
}

// WithMaxRetries sets how many attempts RunInTx makes before giving up.
func (r *BookingRepository) WithMaxRetries(n int) *BookingRepository {
	if n < 1 {
		n = 1
	}
	return &BookingRepository{db: r.db, maxRetries: n}
}

type bookingModel struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(36)"`
	RoomID      string     `gorm:"column:room_id;type:varchar(36);not null;index:idx_room_bookings_room_start,priority:1"`
	RequesterID string     `gorm:"column:requester_id;type:varchar(36);not null;index"`
	Title       string     `gorm:"column:title;not null"`
	Description *string    `gorm:"column:description;type:text"`
	StartTime   time.Time  `gorm:"column:start_time;not null;index:idx_room_bookings_room_start,priority:2"`
	EndTime     time.Time  `gorm:"column:end_time;not null;check:chk_room_bookings_interval,start_time < end_time"`
	Status      string     `gorm:"column:status;type:varchar(16);not null;index"`
	ReviewedBy  *string    `gorm:"column:reviewed_by;type:varchar(36)"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "room_bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var description, reviewedBy string
	if m.Description != nil {
		description = *m.Description
	}
	if m.ReviewedBy != nil {
		reviewedBy = *m.ReviewedBy
	}

	return &domain.Booking{
		ID:          m.ID,
		RoomID:      m.RoomID,
		RequesterID: m.RequesterID,
		Title:       m.Title,
		Description: description,
		StartTime:   m.StartTime.UTC(),
		EndTime:     m.EndTime.UTC(),
		Status:      domain.BookingStatus(m.Status),
		ReviewedBy:  reviewedBy,
		ReviewedAt:  m.ReviewedAt,
		CancelledAt: m.CancelledAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var description, reviewedBy *string
	if b.Description != "" {
		v := b.Description
		description = &v
	}
	if b.ReviewedBy != "" {
		v := b.ReviewedBy
		reviewedBy = &v
	}

	return bookingModel{
		ID:          b.ID,
		RoomID:      b.RoomID,
		RequesterID: b.RequesterID,
		Title:       b.Title,
		Description: description,
		StartTime:   domain.NormalizeTime(b.StartTime),
		EndTime:     domain.NormalizeTime(b.EndTime),
		Status:      string(b.Status),
		ReviewedBy:  reviewedBy,
		ReviewedAt:  b.ReviewedAt,
		CancelledAt: b.CancelledAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// RunInTx runs fn in one transaction and retries the whole of it on
// serialization failures. PostgreSQL runs it SERIALIZABLE; SQLite connections
// are opened with _txlock=immediate so the transaction holds the write lock
// from BEGIN.
func (r *BookingRepository) RunInTx(ctx context.Context, fn func(tx BookingStore) error) error {
	var opts []*sql.TxOptions
	if r.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	for attempt := 1; ; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&BookingRepository{db: tx, maxRetries: r.maxRetries})
		}, opts...)
		if err == nil {
			return nil
		}

		err = translateError(err)
		if !isRetryable(err) {
			return err
		}
		if attempt >= r.maxRetries {
			return fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, attempt, err)
		}

		log.Printf("booking_tx_retry attempt=%d error=%q", attempt, err.Error())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * 10 * time.Millisecond):
		}
	}
}

// FindOverlapping returns every booking of the room, whatever its status,
// whose interval intersects [start,end), ordered by start time.
func (r *BookingRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("start_time < ? AND end_time > ?", domain.NormalizeTime(end), domain.NormalizeTime(start)).
		Order("start_time").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*b = *toDomainBooking(m)
	return nil
}

// Update writes the editable fields of b. Status is never touched here.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"room_id":     m.RoomID,
			"title":       m.Title,
			"description": m.Description,
			"start_time":  m.StartTime,
			"end_time":    m.EndTime,
			"updated_at":  now,
		})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	b.StartTime = m.StartTime
	b.EndTime = m.EndTime
	b.UpdatedAt = now
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainBooking(m), nil
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
// SQLite has no row locks; there the transaction already holds the write lock.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, change StatusChange) error {
	at := change.At
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	updates := map[string]any{
		"status":     string(change.Status),
		"updated_at": at,
	}
	switch change.Status {
	case domain.BookingApproved, domain.BookingRejected:
		updates["reviewed_by"] = change.ActorID
		updates["reviewed_at"] = at
	case domain.BookingCancelled:
		updates["cancelled_at"] = at
	}

	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(updates)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&bookingModel{})

	if f.RoomID != "" {
		query = query.Where("room_id = ?", f.RoomID)
	}
	if f.RequesterID != "" {
		query = query.Where("requester_id = ?", f.RequesterID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}
	if !f.From.IsZero() {
		query = query.Where("end_time > ?", domain.NormalizeTime(f.From))
	}
	if !f.To.IsZero() {
		query = query.Where("start_time < ?", domain.NormalizeTime(f.To))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var rows []bookingModel
	if err := query.
		Order("start_time").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, total, nil
}
