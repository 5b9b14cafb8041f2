package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchsync/session-service/internal/domain"
	"github.com/couchsync/session-service/internal/memstore"
	"github.com/couchsync/session-service/internal/protocol"
)

// Broadcaster is the fan-out surface the protocol handler drives. The ws
// hub implements it.
type Broadcaster interface {
	Broadcast(roomID, excludeConnID string, msg protocol.Message)
	SendToConnection(connID string, msg protocol.Message) error
}

// SessionService is the protocol state machine: it interprets inbound
// session events, mutates the room registry and connection records, and
// emits the resulting messages through the broadcaster. Errors are
// connection-local; nothing here takes a whole room down.
type SessionService struct {
	rooms *RoomService
	conns *memstore.ConnectionRepository
	bc    Broadcaster
}

func NewSessionService(rooms *RoomService, conns *memstore.ConnectionRepository, bc Broadcaster) *SessionService {
	return &SessionService{
		rooms: rooms,
		conns: conns,
		bc:    bc,
	}
}

// Register records a new transport connection. Called once per connect,
// before any protocol event is handled.
func (s *SessionService) Register(ctx context.Context, connID string) {
	s.conns.Register(connID)
}

// CreateRoom handles create-room: validates the name, creates the room
// and confirms with a unicast room-created. The creator enters the room's
// broadcast group but does not take the host slot; only a join does that.
func (s *SessionService) CreateRoom(ctx context.Context, connID string, p protocol.CreateRoomPayload) error {
	room, err := s.rooms.CreateRoom(ctx, p.RoomName)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRoomName) {
			_ = s.bc.SendToConnection(connID, protocol.Error(protocol.ErrMsgInvalidRoomName))
			return err
		}
		return err
	}

	if err := s.conns.Join(connID, room.ID); err != nil {
		return err
	}
	slog.Info("room created", "room", room.ID, "name", room.Name, "conn", connID)

	return s.bc.SendToConnection(connID, protocol.Message{
		Type: protocol.TypeRoomCreated,
		Payload: protocol.RoomCreatedPayload{
			ShortID:  room.ID,
			RoomName: room.Name,
		},
	})
}

// JoinRoom handles join-room: confirms to the joiner with room-details,
// announces user-connected to the rest of the room, and grants the host
// slot to the first joiner of a hostless room.
func (s *SessionService) JoinRoom(ctx context.Context, connID string, p protocol.JoinRoomPayload) error {
	room, err := s.rooms.GetRoom(ctx, p.ShortID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			_ = s.bc.SendToConnection(connID, protocol.Error(protocol.ErrMsgRoomNotFound))
		}
		return err
	}

	if err := s.conns.Join(connID, room.ID); err != nil {
		return err
	}

	if err := s.bc.SendToConnection(connID, protocol.Message{
		Type: protocol.TypeRoomDetails,
		Payload: protocol.RoomDetailsPayload{
			ShortID:  room.ID,
			RoomName: room.Name,
		},
	}); err != nil {
		slog.Debug("room-details send failed", "room", room.ID, "conn", connID, "err", err)
	}

	s.bc.Broadcast(room.ID, connID, protocol.Message{
		Type:    protocol.TypeUserConnected,
		Payload: protocol.UserConnectedPayload{UserID: p.UserID},
	})

	if s.conns.AssignHostIfUnset(room.ID, connID) {
		slog.Info("host assigned", "room", room.ID, "conn", connID, "user", p.UserID)
	}
	return nil
}

// SetVideo handles set-video: the URL is recorded as the room's current
// media and forwarded verbatim to everyone else in the room. No URL or
// membership validation, matching the forwarding contract.
func (s *SessionService) SetVideo(ctx context.Context, connID string, p protocol.SetVideoPayload) {
	s.rooms.SetMedia(ctx, p.RoomID, p.URL)
	s.bc.Broadcast(p.RoomID, connID, protocol.Message{
		Type: protocol.TypeSetVideo,
		Payload: protocol.SetVideoPayload{
			RoomID: p.RoomID,
			URL:    p.URL,
		},
	})
}

// VideoEvent handles video-event: the playback-control event is forwarded
// verbatim to the rest of the room. The event kind stays an open string
// and the position is never re-encoded, so receivers see it exactly.
func (s *SessionService) VideoEvent(ctx context.Context, connID string, p protocol.VideoEventPayload) {
	s.bc.Broadcast(p.RoomID, connID, protocol.Message{
		Type: protocol.TypeVideoEvent,
		Payload: protocol.VideoEventPayload{
			RoomID: p.RoomID,
			Event:  p.Event,
			Time:   p.Time,
		},
	})
}

// Disconnect releases the connection's record and room membership. The
// host slot is not re-elected; a hostless room hands the slot to its next
// joiner.
func (s *SessionService) Disconnect(ctx context.Context, connID string) {
	s.conns.Unregister(connID)
}

// ReassignHost moves the host slot to another connection. Extension hook;
// no protocol event triggers it.
func (s *SessionService) ReassignHost(ctx context.Context, roomID, connID string) error {
	return s.conns.ReassignHost(roomID, connID)
}
