package repository

import (
	"context"
	"time"

	"hrdesk/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Name      string    `gorm:"column:name;not null"`
	Location  *string   `gorm:"column:location"`
	Capacity  int       `gorm:"column:capacity;not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "meeting_rooms" }

func toDomainRoom(m roomModel) *domain.Room {
	var location string
	if m.Location != nil {
		location = *m.Location
	}
	return &domain.Room{
		ID:        m.ID,
		Name:      m.Name,
		Location:  location,
		Capacity:  m.Capacity,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	m := roomModel{
		ID:       room.ID,
		Name:     room.Name,
		Capacity: room.Capacity,
		IsActive: room.IsActive,
	}
	if room.Location != "" {
		v := room.Location
		m.Location = &v
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*room = *toDomainRoom(m)
	return nil
}

// ListActive returns the bookable rooms ordered by name.
func (r *RoomRepository) ListActive(ctx context.Context) ([]domain.Room, error) {
	var rows []roomModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRoom(m))
	}
	return out, nil
}

// ListAll returns every room, inactive ones included, ordered by name.
func (r *RoomRepository) ListAll(ctx context.Context) ([]domain.Room, error) {
	var rows []roomModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRoom(m))
	}
	return out, nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) SetActive(ctx context.Context, id string, active bool) error {
	tx := r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
