// Package protocol defines the wire catalog of the session protocol: the
// envelope and per-event payloads exchanged with clients.
package protocol

import "encoding/json"

const (
	TypeCreateRoom    = "create-room"    // client -> server
	TypeRoomCreated   = "room-created"   // server -> client, unicast
	TypeJoinRoom      = "join-room"      // client -> server
	TypeRoomDetails   = "room-details"   // server -> client, unicast
	TypeUserConnected = "user-connected" // server -> room, excl. sender
	TypeSetVideo      = "set-video"      // both directions
	TypeVideoEvent    = "video-event"    // both directions
	TypeError         = "error"          // server -> client, unicast
)

const (
	ErrMsgInvalidRoomName = "Invalid room name"
	ErrMsgRoomNotFound    = "Room not found"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type CreateRoomPayload struct {
	RoomName string `json:"roomName"`
}

type RoomCreatedPayload struct {
	ShortID  string `json:"shortId"`
	RoomName string `json:"roomName"`
}

type JoinRoomPayload struct {
	ShortID string `json:"shortId"`
	UserID  string `json:"userId"`
}

type RoomDetailsPayload struct {
	ShortID  string `json:"shortId"`
	RoomName string `json:"roomName"`
}

type UserConnectedPayload struct {
	UserID string `json:"userId"`
}

type SetVideoPayload struct {
	RoomID string `json:"roomId,omitempty"`
	URL    string `json:"url"`
}

// VideoEventPayload carries a playback-control event. Event is an open
// string (play/pause/seek today, forwarded verbatim either way); Time is
// the media position in seconds, kept as float64 end to end.
type VideoEventPayload struct {
	RoomID string  `json:"roomId,omitempty"`
	Event  string  `json:"event"`
	Time   float64 `json:"time"`
}

// Inbound is the envelope before the payload is decoded; the payload is
// kept raw until the type is known.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func Error(msg string) Message {
	return Message{Type: TypeError, Payload: msg}
}
