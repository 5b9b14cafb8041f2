package http

import "time"

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type RoomItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MediaURL  string    `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomsListResponse struct {
	Items []RoomItem `json:"items"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
