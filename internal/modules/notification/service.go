package notification

import (
	"context"
	"errors"
	"fmt"
	"log"

	"hrdesk/internal/domain"
	"hrdesk/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("notification not found")
)

type Store interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// Publisher forwards notifications to the message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Inbox struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

// Service persists notifications and fans them out to live clients and the
// broker. hub and publisher are optional.
type Service struct {
	store     Store
	hub       *Hub
	publisher Publisher
}

func NewService(store Store, hub *Hub, publisher Publisher) *Service {
	return &Service{store: store, hub: hub, publisher: publisher}
}

// Notify stores n and then pushes it. Only the store failure is returned;
// push and publish failures are logged.
func (s *Service) Notify(ctx context.Context, n domain.Notification) error {
	n.IsRead = false
	if err := s.store.Create(ctx, &n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if s.hub != nil {
		s.hub.SendToUser(n.RecipientID, Event{Type: EventNotification, Payload: n})
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, RoutingKey(n.Type), n); err != nil {
			log.Printf("notification_publish_failed notification_id=%s recipient_id=%s error=%q",
				n.ID, n.RecipientID, err.Error())
		}
	}
	return nil
}

func RoutingKey(t domain.NotificationType) string {
	return "notification." + string(t)
}

func (s *Service) Inbox(ctx context.Context, unreadOnly bool, limit, offset int) (*Inbox, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	list, err := s.store.ListByRecipient(ctx, actor.ID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Notifications: list, UnreadCount: unread}, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	err := s.store.MarkRead(ctx, actor.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return s.store.MarkAllRead(ctx, actor.ID)
}
