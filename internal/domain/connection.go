package domain

import "time"

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Connection is the record of one live transport connection. RoomID is
// empty until the connection joins a room; a connection belongs to at
// most one room at a time.
type Connection struct {
	ID       string
	RoomID   string
	Role     Role
	JoinedAt time.Time
}
