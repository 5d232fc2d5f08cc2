package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"skill_swap/internal/auth"
	"skill_swap/internal/config"
	"skill_swap/internal/domain"
	"skill_swap/internal/middleware"
	"skill_swap/internal/realtime"
	"skill_swap/internal/repository/repotest"
	"skill_swap/internal/service"
	"skill_swap/pkg/jwt"
	"skill_swap/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router *gin.Engine
	store  *repotest.Store
	hub    *realtime.Hub
	cfg    *config.Config
}

func testConfig(mode string) *config.Config {
	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{AllowedOrigins: []string{"*"}},
		JWT: config.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
			Issuer:        "skill-swap",
		},
		Auth:      config.AuthConfig{Mode: mode},
		Realtime:  config.RealtimeConfig{Backend: config.RealtimeBackendMemory, SendBuffer: 16},
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
	}
}

func newTestApp(t *testing.T, mode string) *testApp {
	t.Helper()
	log := logger.NewNop()
	cfg := testConfig(mode)
	store := repotest.NewStore()
	hub := realtime.NewHub(log)
	t.Cleanup(hub.Shutdown)

	services := service.NewServices(store.Repositories(), hub, cfg, log)
	authenticator, err := auth.New(cfg, services, log)
	require.NoError(t, err)

	handlers := NewHandlers(services, hub, authenticator, cfg, log)
	router := NewRouter(cfg, handlers, services, middleware.NewAuthMiddleware(authenticator, log), log)

	return &testApp{router: router, store: store, hub: hub, cfg: cfg}
}

func (a *testApp) token(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(user.ID, user.Email, a.cfg.JWT.Issuer, a.cfg.JWT.AccessSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
