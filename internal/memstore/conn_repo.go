package memstore

import (
	"sync"
	"time"

	"github.com/couchsync/session-service/internal/domain"
)

// ConnectionRepository tracks live connections, their room membership and
// the per-room host slot. All mutation happens under one mutex so the
// host check-and-set cannot race with joins or disconnects.
type ConnectionRepository struct {
	mu      sync.Mutex
	conns   map[string]*domain.Connection
	members map[string]map[string]struct{} // roomID -> set of connIDs
	hosts   map[string]string              // roomID -> host connID
}

func NewConnectionRepository() *ConnectionRepository {
	return &ConnectionRepository{
		conns:   make(map[string]*domain.Connection),
		members: make(map[string]map[string]struct{}),
		hosts:   make(map[string]string),
	}
}

// Register creates the record for a new transport connection: no room,
// guest role.
func (r *ConnectionRepository) Register(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connID] = &domain.Connection{
		ID:   connID,
		Role: domain.RoleGuest,
	}
}

func (r *ConnectionRepository) Get(connID string) (*domain.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// Join associates the connection with roomID. Room existence is the
// caller's concern. A connection already in another room is moved: its
// old membership (and host slot, if it held one) is dropped first.
func (r *ConnectionRepository) Join(connID, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return domain.ErrNotRegistered
	}
	if c.RoomID != "" && c.RoomID != roomID {
		r.dropMembership(c)
	}
	c.RoomID = roomID
	c.JoinedAt = time.Now()

	set, ok := r.members[roomID]
	if !ok {
		set = make(map[string]struct{})
		r.members[roomID] = set
	}
	set[connID] = struct{}{}
	return nil
}

// AssignHostIfUnset grants the host role to connID if the room currently
// has no host. Returns true when the role was granted.
func (r *ConnectionRepository) AssignHostIfUnset(roomID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.hosts[roomID]; taken {
		return false
	}
	c, ok := r.conns[connID]
	if !ok {
		return false
	}
	r.hosts[roomID] = connID
	c.Role = domain.RoleHost
	return true
}

// HostOf reports the connection currently holding the room's host slot.
func (r *ConnectionRepository) HostOf(roomID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.hosts[roomID]
	return id, ok
}

// ReassignHost forces the host slot to connID regardless of the current
// holder. Extension hook; no protocol path calls it.
func (r *ConnectionRepository) ReassignHost(roomID, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return domain.ErrNotRegistered
	}
	if prevID, ok := r.hosts[roomID]; ok {
		if prev, ok := r.conns[prevID]; ok {
			prev.Role = domain.RoleGuest
		}
	}
	r.hosts[roomID] = connID
	c.Role = domain.RoleHost
	return nil
}

// Unregister removes the connection record and its room membership. The
// host slot is cleared if the connection held it; no re-election happens,
// the room stays hostless until another join claims the slot.
func (r *ConnectionRepository) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return
	}
	r.dropMembership(c)
	delete(r.conns, connID)
}

func (r *ConnectionRepository) dropMembership(c *domain.Connection) {
	if c.RoomID == "" {
		return
	}
	if set, ok := r.members[c.RoomID]; ok {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(r.members, c.RoomID)
		}
	}
	if r.hosts[c.RoomID] == c.ID {
		delete(r.hosts, c.RoomID)
	}
	c.RoomID = ""
	c.Role = domain.RoleGuest
}

// Members returns the connection IDs currently joined to roomID.
func (r *ConnectionRepository) Members(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.members[roomID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
