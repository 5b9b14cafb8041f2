package domain

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidRoomName = errors.New("invalid room name")
	ErrNotRegistered   = errors.New("connection not registered")
)
