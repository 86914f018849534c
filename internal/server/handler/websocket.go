package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// WebSocketHandler compiles sources sent over a websocket and replies with
// the diagnostics, for editors that re-check on every keystroke
type WebSocketHandler struct {
	service    *Service
	logger     *mdwlog.Logger
	upgrader   websocket.Upgrader
	maxMessage int64
}

// NewWebSocketHandler creates a new WebSocket handler. maxMessage limits the
// size of incoming messages; zero means no limit.
func NewWebSocketHandler(service *Service, maxMessage int64) *WebSocketHandler {
	return &WebSocketHandler{
		service: service,
		logger:  service.logger.WithName("websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		maxMessage: maxMessage,
	}
}

// WSMessage represents an incoming WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`    // "compile", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSResponse represents an outgoing WebSocket message
type WSResponse struct {
	Type    string      `json:"type"`              // "hello", "result", "error", "pong"
	ID      string      `json:"id,omitempty"`      // echoes the request id
	Payload interface{} `json:"payload,omitempty"` // Response-specific payload
}

// WSHelloPayload is sent once after the upgrade
type WSHelloPayload struct {
	Session string `json:"session"`
}

// WSCompilePayload is the payload of a compile message
type WSCompilePayload struct {
	ID string `json:"id,omitempty"`
	CompileRequest
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", mdwlog.Err(err))
		return
	}
	h.handleConnection(r.Context(), conn)
}

// session serializes writes to one connection
type session struct {
	id     string
	conn   *websocket.Conn
	logger *mdwlog.Logger
	mu     sync.Mutex
}

func (s *session) send(resp WSResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := s.conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket send failed", mdwlog.Err(err))
	}
}

func (s *session) sendError(id, code, message string) {
	s.send(WSResponse{
		Type:    "error",
		ID:      id,
		Payload: WSErrorPayload{Code: code, Message: message},
	})
}

// handleConnection reads messages until the client goes away. Messages are
// handled in order so replies arrive in request order.
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	s := &session{id: uuid.NewString(), conn: conn}
	s.logger = h.logger.WithField("session", s.id)
	s.logger.Info("websocket connection established", mdwlog.Field("remote", conn.RemoteAddr().String()))

	if h.maxMessage > 0 {
		conn.SetReadLimit(h.maxMessage)
	}
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	s.send(WSResponse{Type: "hello", Payload: WSHelloPayload{Session: s.id}})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", mdwlog.Err(err))
			} else {
				s.logger.Info("websocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "ping":
			s.send(WSResponse{Type: "pong"})

		case "compile":
			var payload WSCompilePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				s.sendError("", "invalid_payload", "Invalid compile payload")
				continue
			}
			h.handleCompile(ctx, s, payload)

		default:
			s.sendError("", "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

func (h *WebSocketHandler) handleCompile(ctx context.Context, s *session, payload WSCompilePayload) {
	resp, err := h.service.Compile(ctx, payload.CompileRequest)
	if err != nil {
		s.sendError(payload.ID, string(mdwerror.GetCode(err)), err.Error())
		return
	}
	s.send(WSResponse{Type: "result", ID: payload.ID, Payload: resp})
}
