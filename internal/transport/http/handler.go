package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchsync/session-service/internal/domain"
	"github.com/couchsync/session-service/internal/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	roomSvc *service.RoomService
}

func NewHandler(room *service.RoomService) *Handler {
	return &Handler{roomSvc: room}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	room, err := h.roomSvc.CreateRoom(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRoomName) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid room name"})
			return
		}
		slog.Error("handler.CreateRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, RoomItem{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
	})
}

// GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.roomSvc.ListRooms(r.Context())

	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Items = append(resp.Items, RoomItem{
			ID:        rm.ID,
			Name:      rm.Name,
			MediaURL:  rm.MediaURL,
			CreatedAt: rm.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, err := h.roomSvc.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, RoomItem{
		ID:        room.ID,
		Name:      room.Name,
		MediaURL:  room.MediaURL,
		CreatedAt: room.CreatedAt,
	})
}
