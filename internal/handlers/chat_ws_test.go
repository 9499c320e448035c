package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-mood/internal/handlers"
	"github.com/AnshRaj112/serenify-mood/internal/middleware"
	"github.com/AnshRaj112/serenify-mood/internal/routes"
)

func dialChat(t *testing.T, srv *httptest.Server, token, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat?token=" + token
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func TestChatWebSocket(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{chunks: []string{"One ", "step"}}, nil)
	token := s.signup(t, "alice@example.com")
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	conn, _, err := dialChat(t, srv, token, "http://localhost:3000")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var evt handlers.ChatServerEvent
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "pong", evt.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "message", "message": "hello"}))
	var got []handlers.ChatServerEvent
	for {
		var e handlers.ChatServerEvent
		require.NoError(t, conn.ReadJSON(&e))
		got = append(got, e)
		if e.Type != "chunk" {
			break
		}
	}
	require.Len(t, got, 3)
	assert.Equal(t, "One ", got[0].Text)
	assert.Equal(t, "step", got[1].Text)
	assert.Equal(t, "done", got[2].Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "message", "message": " "}))
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "error", evt.Type)
}

func TestChatWebSocket_Rejected(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{}, nil)
	token := s.signup(t, "alice@example.com")
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	_, resp, err := dialChat(t, srv, "", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dialChat(t, srv, token, "https://evil.example")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func readReply(t *testing.T, conn *websocket.Conn) handlers.ChatServerEvent {
	t.Helper()
	for {
		var e handlers.ChatServerEvent
		require.NoError(t, conn.ReadJSON(&e))
		if e.Type != "chunk" {
			return e
		}
	}
}

func TestChatWebSocket_SharesChatBudget(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{chunks: []string{"ok"}}, nil)
	token := s.signup(t, "alice@example.com")

	budget := middleware.NewChatBudget()
	s.handler.ChatLimit = budget
	r := chi.NewRouter()
	r.Use(middleware.ChatRateLimit(false, budget))
	routes.SetupRoutes(r, s.handler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := dialChat(t, srv, token, "")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	for i := 0; i < 5; i++ {
		require.NoError(t, conn.WriteJSON(map[string]string{"type": "message", "message": "hello"}))
		assert.Equal(t, "done", readReply(t, conn).Type, "message %d", i)
	}

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "message", "message": "hello"}))
	evt := readReply(t, conn)
	assert.Equal(t, "error", evt.Type)
	assert.Equal(t, middleware.ChatRateLimitMessage, evt.Message)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", readReply(t, conn).Type, "socket stays open")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/chat-simple", strings.NewReader(`{"message":"hello"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "HTTP chat draws from the same budget")
}
