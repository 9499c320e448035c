package services

import (
	"context"
	"sync"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/pkg/utils"
)

const chatHistoryMaxLen = 50

// ChatHistory keeps the last 50 chat messages per user under
// chatMessages_<id>. With a cipher, message bodies are encrypted at rest.
type ChatHistory struct {
	store  database.Store
	cipher *utils.Cipher
	mu     sync.Mutex
}

func NewChatHistory(store database.Store, cipher *utils.Cipher) *ChatHistory {
	return &ChatHistory{store: store, cipher: cipher}
}

func (h *ChatHistory) load(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	if err := loadJSON(ctx, h.store, ChatMessagesKey(userID), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Get returns the transcript oldest-first. Unreadable transcripts come
// back empty.
func (h *ChatHistory) Get(ctx context.Context, userID string) []models.ChatMessage {
	msgs, err := h.load(ctx, userID)
	if err != nil {
		logger.Log.Warnw("Error loading chat history", "user_id", userID, "error", err)
		return []models.ChatMessage{}
	}
	out := make([]models.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if h.cipher != nil {
			plain, err := h.cipher.Decrypt(m.Content)
			if err != nil {
				logger.Log.Warnw("Skipping undecryptable chat message", "user_id", userID, "error", err)
				continue
			}
			m.Content = plain
		}
		out = append(out, m)
	}
	return out
}

// Append adds messages and trims the transcript to the newest 50.
func (h *ChatHistory) Append(ctx context.Context, userID string, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	existing, err := h.load(ctx, userID)
	if err != nil {
		logger.Log.Warnw("Resetting unreadable chat history", "user_id", userID, "error", err)
		existing = nil
	}
	for _, m := range msgs {
		if h.cipher != nil {
			sealed, err := h.cipher.Encrypt(m.Content)
			if err != nil {
				return err
			}
			m.Content = sealed
		}
		existing = append(existing, m)
	}
	if len(existing) > chatHistoryMaxLen {
		existing = existing[len(existing)-chatHistoryMaxLen:]
	}
	return saveJSON(ctx, h.store, ChatMessagesKey(userID), existing, 0)
}

// Clear deletes the user's transcript.
func (h *ChatHistory) Clear(ctx context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Delete(ctx, ChatMessagesKey(userID))
}
