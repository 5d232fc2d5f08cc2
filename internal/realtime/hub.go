package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/pkg/logger"
)

var ErrHubClosed = errors.New("realtime hub is shut down")

// Conn - открытое живое соединение. Send не должен блокироваться.
type Conn interface {
	Send(payload []byte) error
	Close()
}

// Hub - реестр userID -> набор соединений текущего процесса.
// Событие о новом сообщении получают все соединения обоих участников переписки,
// включая остальные вкладки отправителя.
type Hub struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]map[Conn]struct{}
	closed bool
	log    logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		users: make(map[uuid.UUID]map[Conn]struct{}),
		log:   log,
	}
}

// Join регистрирует соединение за пользователем. Соединение принадлежит одному пользователю,
// повторный join под другим userID переносит его.
func (h *Hub) Join(userID uuid.UUID, conn Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}

	h.removeLocked(conn)

	set, ok := h.users[userID]
	if !ok {
		set = make(map[Conn]struct{})
		h.users[userID] = set
	}
	set[conn] = struct{}{}

	h.log.Debug("Connection joined", "user_id", userID, "connections", len(set))
	return nil
}

func (h *Hub) Leave(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn)
}

// removeLocked обходит всех пользователей и удаляет пустые наборы
func (h *Hub) removeLocked(conn Conn) {
	for userID, set := range h.users {
		if _, ok := set[conn]; !ok {
			continue
		}
		delete(set, conn)
		if len(set) == 0 {
			delete(h.users, userID)
		}
		h.log.Debug("Connection left", "user_id", userID, "connections", len(set))
	}
}

// Deliver отправляет payload всем соединениям получателей. Ошибка одного соединения
// не прерывает рассылку. Возвращает число принятых отправок.
func (h *Hub) Deliver(recipients []uuid.UUID, payload []byte) int {
	targets := h.snapshot(recipients)

	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(payload); err != nil {
			h.log.Debug("Dropped live event", "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) snapshot(recipients []uuid.UUID) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{}, len(recipients))
	var targets []Conn
	for _, userID := range recipients {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		for conn := range h.users[userID] {
			targets = append(targets, conn)
		}
	}
	return targets
}

func (h *Hub) NotifyNewMessage(ctx context.Context, conv *domain.Conversation, msg *domain.Message) {
	payload, err := EncodeNewMessage(msg)
	if err != nil {
		h.log.Error("Failed to encode live event", "error", err, "message_id", msg.ID)
		return
	}

	delivered := h.Deliver(conv.Participants(), payload)
	h.log.Debug("Live event delivered", "conversation_id", conv.ID, "message_id", msg.ID, "connections", delivered)
}

func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users)
}

// Shutdown закрывает все соединения и очищает реестр; после него Join возвращает ErrHubClosed
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	var conns []Conn
	for _, set := range h.users {
		for conn := range set {
			conns = append(conns, conn)
		}
	}
	h.users = make(map[uuid.UUID]map[Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	h.log.Info("Realtime hub shut down", "closed_connections", len(conns))
}
