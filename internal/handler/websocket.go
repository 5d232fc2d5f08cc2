package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"skill_swap/internal/auth"
	"skill_swap/internal/domain"
	"skill_swap/internal/realtime"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

const (
	wsErrInvalidFrame = "invalid_frame"
	wsErrForbidden    = "forbidden"
	wsErrUnknownType  = "unknown_type"
	wsErrUnavailable  = "unavailable"
)

// WebSocketHandler обслуживает живой канал. Соединение аутентифицируется до upgrade,
// join регистрирует его в реестре только под собственным userId.
type WebSocketHandler struct {
	hub           *realtime.Hub
	authenticator auth.Authenticator
	upgrader      websocket.Upgrader
	sendBuffer    int
	log           logger.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, authenticator auth.Authenticator, sendBuffer int, allowedOrigins []string, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		authenticator: authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		sendBuffer: sendBuffer,
		log:        log.With("component", "websocket"),
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

func (h *WebSocketHandler) Handle(c *gin.Context) {
	user, err := h.authenticator.Authenticate(c.Request)
	if err != nil {
		apiErr := apperrors.FromError(err)
		c.AbortWithStatusJSON(apiErr.Code, apiErr)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Failed to upgrade connection", "error", err)
		return
	}

	client := realtime.NewClient(ws, h.sendBuffer)
	client.Start()
	defer func() {
		h.hub.Leave(client)
		client.Close()
	}()

	h.log.Debug("Live connection opened", "user_id", user.ID, "client_id", client.ID)

	for {
		data, err := client.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Live connection closed unexpectedly", "error", err, "user_id", user.ID)
			}
			return
		}
		h.handleFrame(client, user, data)
	}
}

func (h *WebSocketHandler) handleFrame(client *realtime.Client, user *domain.User, data []byte) {
	var frame realtime.InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.sendError(client, wsErrInvalidFrame, "malformed JSON frame")
		return
	}

	switch frame.Type {
	case realtime.FrameTypeJoin:
		h.join(client, user, frame)
	default:
		h.sendError(client, wsErrUnknownType, "unsupported frame type")
	}
}

// join без userId регистрирует соединение за аутентифицированным пользователем
func (h *WebSocketHandler) join(client *realtime.Client, user *domain.User, frame realtime.InboundFrame) {
	if frame.UserID != "" {
		userID, err := uuid.Parse(frame.UserID)
		if err != nil {
			h.sendError(client, wsErrInvalidFrame, "userId must be a valid UUID")
			return
		}
		if userID != user.ID {
			h.log.Warn("Join as another user rejected", "user_id", user.ID, "requested_user_id", userID)
			h.sendError(client, wsErrForbidden, "cannot join as another user")
			return
		}
	}

	if err := h.hub.Join(user.ID, client); err != nil {
		h.sendError(client, wsErrUnavailable, "server is shutting down")
		return
	}

	h.send(client, realtime.AckFrame{Type: realtime.FrameTypeJoined, UserID: user.ID})
}

func (h *WebSocketHandler) sendError(client *realtime.Client, code, message string) {
	h.send(client, realtime.ErrorFrame{Type: realtime.FrameTypeError, Code: code, Error: message})
}

func (h *WebSocketHandler) send(client *realtime.Client, frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("Failed to encode frame", "error", err)
		return
	}
	if err := client.Send(payload); err != nil {
		h.log.Debug("Dropped frame", "error", err, "client_id", client.ID)
	}
}
