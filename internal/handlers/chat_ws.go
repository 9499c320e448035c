package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
	"github.com/AnshRaj112/serenify-mood/pkg/clientip"
)

const (
	wsReadLimit   = 64 * 1024
	wsReadTimeout = 90 * time.Second
	wsWriteWait   = 10 * time.Second

	chatRateLimitMessage = "Too many chat requests. Please slow down."
)

// Client to server message types.
const (
	wsTypeMessage = "message"
	wsTypePing    = "ping"
)

// Server to client event types.
const (
	wsEventChunk = "chunk"
	wsEventDone  = "done"
	wsEventError = "error"
	wsEventPong  = "pong"
)

// ChatClientMessage is a frame sent by the browser over the chat socket.
type ChatClientMessage struct {
	Type string `json:"type"` // "message" or "ping"
	models.ChatRequest
}

// ChatServerEvent is a frame sent back to the browser.
type ChatServerEvent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
}

// checkOrigin accepts non-browser clients (no Origin header) and browsers
// on an allowed origin.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}

// ChatWebSocket streams assistant replies over a WebSocket. The session
// token comes from the Authorization header or the token query parameter.
// Each "message" frame is answered by a run of "chunk" events followed by
// "done" or "error".
func (h *Handler) ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	if !h.Chat.Configured() {
		writeServiceError(w, services.ErrChatNotConfigured)
		return
	}
	sess := sessionOf(r)
	clientKey := clientip.FromRequest(r, h.TrustProxy)
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg ChatClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if writeWS(conn, ChatServerEvent{Type: wsEventError, Message: "Invalid message"}) != nil {
				return
			}
			continue
		}

		switch msg.Type {
		case wsTypeMessage:
			if h.ChatLimit != nil && !h.ChatLimit.Allow(clientKey) {
				if writeWS(conn, ChatServerEvent{Type: wsEventError, Message: chatRateLimitMessage}) != nil {
					return
				}
				continue
			}
			if !h.streamOverSocket(ctx, conn, sess, msg.ChatRequest) {
				return
			}
		case wsTypePing:
			if writeWS(conn, ChatServerEvent{Type: wsEventPong}) != nil {
				return
			}
		default:
			// Ignore unknown types
		}
	}
}

// streamOverSocket relays one reply. It returns false once the connection
// is no longer writable.
func (h *Handler) streamOverSocket(ctx context.Context, conn *websocket.Conn, sess models.Session, req models.ChatRequest) bool {
	chunks, err := h.Chat.Stream(ctx, sess, req)
	if err != nil {
		return writeWS(conn, ChatServerEvent{Type: wsEventError, Message: err.Error()}) == nil
	}
	for chunk := range chunks {
		evt := ChatServerEvent{Type: wsEventChunk, Text: chunk.Text}
		if chunk.Err != nil {
			evt = ChatServerEvent{Type: wsEventError, Message: "Failed to generate a response"}
		}
		if err := writeWS(conn, evt); err != nil {
			logger.Log.Debugw("Chat socket write failed", "user_id", sess.Owner(), "error", err)
			return false
		}
		if chunk.Err != nil {
			return true
		}
	}
	return writeWS(conn, ChatServerEvent{Type: wsEventDone}) == nil
}

func writeWS(conn *websocket.Conn, evt ChatServerEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(evt)
}
