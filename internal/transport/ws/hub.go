package ws

import (
	"sync"

	"github.com/couchsync/session-service/internal/domain"
	"github.com/couchsync/session-service/internal/protocol"
)

type Conn interface {
	ID() string
	Send(msg protocol.Message) error
	Close() error
}

// Membership resolves which connections are currently in a room. The
// connection repository implements it; the hub itself holds no room
// state, only the live transport handles.
type Membership interface {
	Members(roomID string) []string
}

type Hub struct {
	mu      sync.RWMutex
	conns   map[string]Conn // connID -> live connection
	members Membership
}

func NewHub(members Membership) *Hub {
	return &Hub{
		conns:   make(map[string]Conn),
		members: members,
	}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
}

// Broadcast delivers msg to every connection in roomID except
// excludeConnID. At-most-once: a recipient that already dropped is
// skipped, and one failed send does not abort the rest.
func (h *Hub) Broadcast(roomID, excludeConnID string, msg protocol.Message) {
	ids := h.members.Members(roomID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range ids {
		if id == excludeConnID {
			continue
		}
		if c, ok := h.conns[id]; ok {
			_ = c.Send(msg) // best-effort
		}
	}
}

// SendToConnection delivers msg to exactly one connection.
func (h *Hub) SendToConnection(connID string, msg protocol.Message) error {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()

	if !ok {
		return domain.ErrNotRegistered
	}
	return c.Send(msg)
}
