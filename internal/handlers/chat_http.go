package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

// streamFrame mirrors the OpenAI chat-completion chunk so clients written
// against the upstream stream keep working.
type streamFrame struct {
	Choices []streamChoice `json:"choices,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type streamChoice struct {
	Delta streamDelta `json:"delta"`
}

type streamDelta struct {
	Content string `json:"content"`
}

const streamDone = "[DONE]"

// ChatStream answers as server-sent events, one "data:" frame per chunk,
// terminated by "data: [DONE]".
func (h *Handler) ChatStream(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	chunks, err := h.Chat.Stream(r.Context(), sessionOf(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for chunk := range chunks {
		frame := streamFrame{Choices: []streamChoice{{Delta: streamDelta{Content: chunk.Text}}}}
		if chunk.Err != nil {
			frame = streamFrame{Error: "Failed to generate a response"}
		}
		if err := writeEvent(w, frame); err != nil {
			logger.Log.Warnw("Chat stream write failed", "error", err)
			return
		}
		flusher.Flush()
	}
	fmt.Fprintf(w, "data: %s\n\n", streamDone)
	flusher.Flush()
}

func writeEvent(w http.ResponseWriter, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

type ChatSimpleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Crisis  bool   `json:"crisis,omitempty"`
}

// ChatSimple answers in a single JSON response.
func (h *Handler) ChatSimple(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.Chat.Reply(r.Context(), sessionOf(r), req)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidEntry), errors.Is(err, services.ErrChatNotConfigured):
		writeServiceError(w, err)
		return
	default:
		// upstream errors are logged by the service and not shown to clients
		writeError(w, http.StatusInternalServerError, "Failed to process your message")
		return
	}
	writeJSON(w, http.StatusOK, ChatSimpleResponse{
		Success: true,
		Message: reply.Message,
		Crisis:  reply.Crisis,
	})
}

// GetChatHistory returns the caller's stored conversation, oldest first.
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	msgs := h.Chat.History(r.Context(), sessionOf(r))
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": msgs,
	})
}

// ClearChatHistory forgets the caller's conversation.
func (h *Handler) ClearChatHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.Chat.ClearHistory(r.Context(), sessionOf(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Chat history cleared",
	})
}
