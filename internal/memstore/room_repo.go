package memstore

import (
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/couchsync/session-service/internal/domain"
)

// Room IDs are short enough to read out loud, so the alphabet skips
// glyphs that are easy to confuse (0/O, 1/l/I).
const roomIDAlphabet = "23456789abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// RoomRepository is the authoritative in-memory room table. Rooms are
// never deleted; the table lives as long as the process.
type RoomRepository struct {
	mu       sync.RWMutex
	rooms    map[string]*domain.Room
	idLength int
}

func NewRoomRepository(idLength int) *RoomRepository {
	if idLength <= 0 {
		idLength = 6
	}
	return &RoomRepository{
		rooms:    make(map[string]*domain.Room),
		idLength: idLength,
	}
}

// Create fills in a fresh ID and CreatedAt and stores the room. The ID is
// regenerated until it does not collide with a live room.
func (r *RoomRepository) Create(room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		id, err := gonanoid.Generate(roomIDAlphabet, r.idLength)
		if err != nil {
			return err
		}
		if _, taken := r.rooms[id]; taken {
			continue
		}
		room.ID = id
		break
	}
	room.CreatedAt = time.Now()

	stored := *room
	r.rooms[room.ID] = &stored
	return nil
}

func (r *RoomRepository) Get(id string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *rm
	return &cp, nil
}

// SetMedia updates the room's current media reference. A missing room is
// a silent no-op: callers that care check existence first.
func (r *RoomRepository) SetMedia(id, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rm, ok := r.rooms[id]; ok {
		rm.MediaURL = url
	}
}

// List returns a snapshot of all live rooms, newest first.
func (r *RoomRepository) List() []domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, *rm)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
