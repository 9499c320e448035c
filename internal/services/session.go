package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/models"
)

const (
	// DefaultSessionDuration is 7 days
	DefaultSessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the store key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the store key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// SessionManager issues opaque bearer tokens and resolves them back to a
// models.Session. A user holds at most one live token.
type SessionManager struct {
	store database.Store
	ttl   time.Duration
}

func NewSessionManager(store database.Store, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	return &SessionManager{store: store, ttl: ttl}
}

// CreateSession stores a new session for the user and returns its token.
// Any previous session of the same user is invalidated, so the expiry
// timer restarts from this login.
func (m *SessionManager) CreateSession(ctx context.Context, sess models.Session) (string, error) {
	if err := m.InvalidateUserSessions(ctx, sess.UserID); err != nil {
		return "", err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, SessionKeyPrefix+token, string(payload), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := m.store.Set(ctx, UserSessionKeyPrefix+sess.UserID, token, m.ttl); err != nil {
		return "", fmt.Errorf("store user session: %w", err)
	}
	return token, nil
}

// ValidateSession resolves a token. An unknown or expired token reports
// ok=false with a nil error.
func (m *SessionManager) ValidateSession(ctx context.Context, token string) (models.Session, bool, error) {
	if token == "" {
		return models.Session{}, false, nil
	}
	raw, ok, err := m.store.Get(ctx, SessionKeyPrefix+token)
	if err != nil {
		return models.Session{}, false, err
	}
	if !ok {
		return models.Session{}, false, nil
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return models.Session{}, false, fmt.Errorf("parse session: %w", err)
	}
	return sess, true, nil
}

// RefreshSession extends the session expiration by the full TTL from now.
func (m *SessionManager) RefreshSession(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session token is empty")
	}
	raw, ok, err := m.store.Get(ctx, SessionKeyPrefix+token)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session not found")
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}
	if err := m.store.Set(ctx, SessionKeyPrefix+token, raw, m.ttl); err != nil {
		return err
	}
	return m.store.Set(ctx, UserSessionKeyPrefix+sess.UserID, token, m.ttl)
}

// InvalidateSession removes a session (logout).
func (m *SessionManager) InvalidateSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sess, ok, err := m.ValidateSession(ctx, token)
	if err == nil && ok && sess.UserID != "" {
		current, found, _ := m.store.Get(ctx, UserSessionKeyPrefix+sess.UserID)
		if found && current == token {
			if err := m.store.Delete(ctx, UserSessionKeyPrefix+sess.UserID); err != nil {
				return err
			}
		}
	}
	return m.store.Delete(ctx, SessionKeyPrefix+token)
}

// InvalidateUserSessions drops the user's current session, if any.
func (m *SessionManager) InvalidateUserSessions(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	token, ok, err := m.store.Get(ctx, UserSessionKeyPrefix+userID)
	if err != nil {
		return err
	}
	if ok && token != "" {
		return m.store.Delete(ctx, SessionKeyPrefix+token, UserSessionKeyPrefix+userID)
	}
	return m.store.Delete(ctx, UserSessionKeyPrefix+userID)
}
