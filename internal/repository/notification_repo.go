package repository

import (
	"context"
	"time"

	"hrdesk/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type notificationModel struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(36)"`
	RecipientID string     `gorm:"column:recipient_id;type:varchar(36);not null;index"`
	Type        string     `gorm:"column:type;type:varchar(32);not null"`
	Title       string     `gorm:"column:title;not null"`
	Message     string     `gorm:"column:message;type:text"`
	Link        string     `gorm:"column:link"`
	ReadAt      *time.Time `gorm:"column:read_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;index"`
}

func (notificationModel) TableName() string { return "notifications" }

func toDomainNotification(m notificationModel) *domain.Notification {
	return &domain.Notification{
		ID:          m.ID,
		RecipientID: m.RecipientID,
		Type:        domain.NotificationType(m.Type),
		Title:       m.Title,
		Message:     m.Message,
		Link:        m.Link,
		IsRead:      m.ReadAt != nil,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	m := notificationModel{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Link:        n.Link,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*n = *toDomainNotification(m)
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}

	var rows []notificationModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainNotification(m))
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&cnt).Error
	return cnt, translateError(err)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, id string) error {
	tx := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Where("read_at IS NULL").
		Update("read_at", time.Now().UTC())
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		var cnt int64
		if err := r.db.WithContext(ctx).Model(&notificationModel{}).
			Where("id = ? AND recipient_id = ?", id, recipientID).
			Count(&cnt).Error; err != nil {
			return translateError(err)
		}
		if cnt == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Update("read_at", time.Now().UTC())
	return tx.RowsAffected, translateError(tx.Error)
}

// DeleteReadBefore removes read notifications older than cutoff.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("read_at IS NOT NULL AND created_at < ?", cutoff.UTC()).
		Delete(&notificationModel{})
	return tx.RowsAffected, translateError(tx.Error)
}
