package service

import (
	"context"
	"fmt"

	"github.com/couchsync/session-service/internal/domain"
	"github.com/couchsync/session-service/internal/memstore"
)

type RoomService struct {
	roomRepo *memstore.RoomRepository
}

func NewRoomService(roomRepo *memstore.RoomRepository) *RoomService {
	return &RoomService{roomRepo: roomRepo}
}

// CreateRoom creates a room with the given display name and a generated
// short ID. The name must be non-empty; shape validation happens before
// the registry is touched.
func (s *RoomService) CreateRoom(ctx context.Context, name string) (*domain.Room, error) {
	if name == "" {
		return nil, domain.ErrInvalidRoomName
	}

	room := &domain.Room{Name: name}
	if err := s.roomRepo.Create(room); err != nil {
		return nil, fmt.Errorf("roomRepo.Create: %w", err)
	}
	return room, nil
}

// GetRoom returns the room by its short ID.
func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	return s.roomRepo.Get(id)
}

// SetMedia records the media currently selected for the room. A missing
// room is silently ignored, matching the forwarding contract.
func (s *RoomService) SetMedia(ctx context.Context, id, url string) {
	s.roomRepo.SetMedia(id, url)
}

// ListRooms returns a snapshot of live rooms, newest first.
func (s *RoomService) ListRooms(ctx context.Context) []domain.Room {
	return s.roomRepo.List()
}
