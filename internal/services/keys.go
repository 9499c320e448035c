package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AnshRaj112/serenify-mood/internal/database"
)

// Store keys. These are the de facto schema shared with the web client's
// backup files; renaming any of them orphans existing data.
const (
	KeyMoods           = "moods"
	KeyEmotions        = "emotions"
	KeyPreferences     = "preferences"
	KeyRegisteredUsers = "registeredUsers"
)

// ProfileKey is the key of a user's profile document.
func ProfileKey(userID string) string {
	return "profile_" + userID
}

// ChatMessagesKey is the key of a user's chat transcript.
func ChatMessagesKey(userID string) string {
	return "chatMessages_" + userID
}

// loadJSON decodes the value at key into dest. A missing key leaves dest
// untouched and is not an error.
func loadJSON(ctx context.Context, store database.Store, key string, dest interface{}) error {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	return nil
}

func saveJSON(ctx context.Context, store database.Store, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data), ttl); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
