package catalog

import (
	"context"
	"errors"
	"strings"

	"hrdesk/internal/domain"
	"hrdesk/internal/repository"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomStore interface {
	ListActive(ctx context.Context) ([]domain.Room, error)
	GetByID(ctx context.Context, id string) (*domain.Room, error)
}

// Service is the read side of the meeting-room catalog.
type Service struct {
	rooms RoomStore
}

func NewService(rooms RoomStore) *Service {
	return &Service{rooms: rooms}
}

func (s *Service) ListActiveRooms(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.ListActive(ctx)
}

// GetRoom returns a room whether or not it is active.
func (s *Service) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRoomNotFound
	}
	room, err := s.rooms.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}
