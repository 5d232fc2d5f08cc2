package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"skill_swap/internal/config"
	"skill_swap/internal/domain"
	"skill_swap/internal/repository/repotest"
	"skill_swap/pkg/logger"
)

type notification struct {
	conv *domain.Conversation
	msg  *domain.Message
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) NotifyNewMessage(_ context.Context, conv *domain.Conversation, msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{conv: conv, msg: msg})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification, len(n.events))
	copy(out, n.events)
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    24 * time.Hour,
			Issuer:        "skill-swap",
		},
	}
}

func newTestServices(t *testing.T) (*Services, *repotest.Store, *recordingNotifier) {
	t.Helper()
	store := repotest.NewStore()
	notifier := &recordingNotifier{}
	services := NewServices(store.Repositories(), notifier, testConfig(), logger.NewNop())
	return services, store, notifier
}
