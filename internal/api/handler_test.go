package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursedesk/chat-service/internal/auth"
	"github.com/coursedesk/chat-service/internal/domain"
	"github.com/coursedesk/chat-service/internal/presence"
	"github.com/coursedesk/chat-service/internal/repository"
	"github.com/coursedesk/chat-service/internal/unread"
	"github.com/coursedesk/chat-service/internal/userdir"
	"github.com/coursedesk/chat-service/internal/ws"
)

const testSecret = "test-secret"

type testEnvelope struct {
	StatusCode int              `json:"statusCode"`
	Message    string           `json:"message"`
	Data       []domain.Message `json:"data"`
}

func newTestServer(t *testing.T) (*Server, *repository.MemoryMessageRepository) {
	t.Helper()
	log := zap.NewNop().Sugar()
	jv, err := auth.NewJWTValidatorHS256(testSecret)
	require.NoError(t, err)

	registry := presence.NewRegistry()
	repo := repository.NewMemoryMessageRepository()
	dir := userdir.NewMemoryDirectory()
	hub := ws.NewHub(16, nil, log)
	t.Cleanup(hub.Close)
	gw := ws.NewGateway(hub, registry, repo, dir,
		unread.NewCoordinator(registry, dir, log), nil, nil, log, ws.Options{})

	return NewServer(jv, gw, repo, log), repo
}

func bearerToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func getChats(t *testing.T, s *Server, target, authHeader string) (*http.Response, testEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env testEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return resp, env
}

func seedMessages(t *testing.T, repo *repository.MemoryMessageRepository, roomID string, n int) {
	t.Helper()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		repo.SetClock(func() time.Time { return ts })
		_, err := repo.Append(context.Background(), domain.NewMessage{
			RoomID:   roomID,
			SenderID: "u1",
			Body:     fmt.Sprintf("m%02d", i),
		})
		require.NoError(t, err)
	}
	repo.SetClock(time.Now)
}

func TestHistoryRequiresBearerToken(t *testing.T) {
	s, _ := newTestServer(t)

	resp, env := getChats(t, s, "/v1/chats/u1", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)

	resp, _ = getChats(t, s, "/v1/chats/u1", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHistoryEmptyRoomReturnsEmptyData(t *testing.T) {
	s, _ := newTestServer(t)

	resp, env := getChats(t, s, "/v1/chats/u1", bearerToken(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.NotNil(t, env.Data)
	assert.Empty(t, env.Data)
}

func TestHistoryDefaultsAndPaginates(t *testing.T) {
	s, repo := newTestServer(t)
	seedMessages(t, repo, "u1", 15)

	_, env := getChats(t, s, "/v1/chats/u1", bearerToken(t))
	require.Len(t, env.Data, 10)
	// newest first
	assert.Equal(t, "m14", env.Data[0].Body)
	assert.Equal(t, "m05", env.Data[9].Body)

	_, env = getChats(t, s, "/v1/chats/u1?page=2", bearerToken(t))
	require.Len(t, env.Data, 5)
	assert.Equal(t, "m04", env.Data[0].Body)
	assert.Equal(t, "m00", env.Data[4].Body)
}

func TestHistoryPastEndIsEmptyNotError(t *testing.T) {
	s, repo := newTestServer(t)
	seedMessages(t, repo, "u1", 3)

	resp, env := getChats(t, s, "/v1/chats/u1?page=9&limit=10", bearerToken(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, env.Data)
}

func TestHistoryClampsBadQueryValues(t *testing.T) {
	s, repo := newTestServer(t)
	seedMessages(t, repo, "u1", 5)

	for _, target := range []string{
		"/v1/chats/u1?page=0&limit=0",
		"/v1/chats/u1?page=-2&limit=-9",
		"/v1/chats/u1?page=abc&limit=xyz",
	} {
		resp, env := getChats(t, s, target, bearerToken(t))
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
		assert.Len(t, env.Data, 5, target)
		assert.Equal(t, "m04", env.Data[0].Body, target)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
