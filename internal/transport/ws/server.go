package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/couchsync/session-service/config"
	"github.com/couchsync/session-service/internal/protocol"
	"github.com/couchsync/session-service/internal/service"
)

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	sessions *service.SessionService

	pingEvery    time.Duration
	writeTimeout time.Duration
	maxMsgBytes  int64
}

func NewServer(hub *Hub, sessions *service.SessionService, cfg config.Session) *Server {
	return &Server{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:    cfg.PingEvery(),
		writeTimeout: cfg.WriteDeadline(),
		maxMsgBytes:  cfg.MaxMessageKiB << 10,
	}
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	connID := uuid.NewString()
	c := newWsConn(conn, connID, s.writeTimeout)

	s.sessions.Register(r.Context(), connID)
	s.hub.Add(c)
	slog.Info("connection opened", "conn", connID, "remote", r.RemoteAddr)

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	// transport gone: release everything this connection held
	s.hub.Remove(connID)
	s.sessions.Disconnect(r.Context(), connID)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", connID, "err", err)
	}
	slog.Info("connection closed", "conn", connID)
}

// readLoop handles inbound events one at a time, so two messages on the
// same connection are never processed out of order.
func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(s.maxMsgBytes)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var in protocol.Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}
		s.dispatch(ctx, c, in)
	}
}

// dispatch decodes the payload for the known event types and drives the
// session service. Payload decoding is best-effort: a wrong-shaped
// payload dispatches the zero value and the service applies its own
// validation (a non-string room name ends up as the empty name).
func (s *Server) dispatch(ctx context.Context, c *wsConn, in protocol.Inbound) {
	switch in.Type {
	case protocol.TypeCreateRoom:
		var p protocol.CreateRoomPayload
		decode(in.Payload, &p)
		if err := s.sessions.CreateRoom(ctx, c.id, p); err != nil {
			slog.Debug("create-room rejected", "conn", c.id, "err", err)
		}
	case protocol.TypeJoinRoom:
		var p protocol.JoinRoomPayload
		decode(in.Payload, &p)
		if err := s.sessions.JoinRoom(ctx, c.id, p); err != nil {
			slog.Debug("join-room rejected", "conn", c.id, "room", p.ShortID, "err", err)
		}
	case protocol.TypeSetVideo:
		var p protocol.SetVideoPayload
		decode(in.Payload, &p)
		s.sessions.SetVideo(ctx, c.id, p)
	case protocol.TypeVideoEvent:
		var p protocol.VideoEventPayload
		decode(in.Payload, &p)
		s.sessions.VideoEvent(ctx, c.id, p)
	default:
		// ignore
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func decode(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

type wsConn struct {
	conn         *websocket.Conn
	id           string
	writeTimeout time.Duration
	sendMu       chan struct{}
	closed       chan struct{}
}

func newWsConn(c *websocket.Conn, id string, writeTimeout time.Duration) *wsConn {
	return &wsConn{
		conn:         c,
		id:           id,
		writeTimeout: writeTimeout,
		sendMu:       make(chan struct{}, 1),
		closed:       make(chan struct{}),
	}
}

func (c *wsConn) Send(msg protocol.Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string { return c.id }
