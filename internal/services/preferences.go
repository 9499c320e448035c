package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
)

// preferenceTable is the stored shape: user id -> key -> value.
type preferenceTable map[string]map[string]json.RawMessage

// PreferenceService stores free-form per-user settings.
type PreferenceService struct {
	store database.Store
	mu    sync.Mutex
}

func NewPreferenceService(store database.Store) *PreferenceService {
	return &PreferenceService{store: store}
}

func (p *PreferenceService) load(ctx context.Context) (preferenceTable, error) {
	table := preferenceTable{}
	if err := loadJSON(ctx, p.store, KeyPreferences, &table); err != nil {
		return nil, err
	}
	if table == nil {
		table = preferenceTable{}
	}
	return table, nil
}

// SavePreference sets key for the session owner. value must be valid JSON.
func (p *PreferenceService) SavePreference(ctx context.Context, sess models.Session, key string, value json.RawMessage) error {
	if key == "" {
		return ErrInvalidEntry
	}
	if !json.Valid(value) {
		return ErrInvalidEntry
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	table, err := p.load(ctx)
	if err != nil {
		return err
	}
	owner := sess.Owner()
	if table[owner] == nil {
		table[owner] = map[string]json.RawMessage{}
	}
	table[owner][key] = value
	return saveJSON(ctx, p.store, KeyPreferences, table, 0)
}

// GetPreference returns the stored value of key, or nil when unset.
func (p *PreferenceService) GetPreference(ctx context.Context, sess models.Session, key string) json.RawMessage {
	table, err := p.load(ctx)
	if err != nil {
		logger.Log.Warnw("Error fetching preference", "key", key, "error", err)
		return nil
	}
	return table[sess.Owner()][key]
}

// GetAllPreferences returns every preference of the session owner.
func (p *PreferenceService) GetAllPreferences(ctx context.Context, sess models.Session) map[string]json.RawMessage {
	table, err := p.load(ctx)
	if err != nil {
		logger.Log.Warnw("Error fetching preferences", "error", err)
		return map[string]json.RawMessage{}
	}
	prefs := table[sess.Owner()]
	if prefs == nil {
		return map[string]json.RawMessage{}
	}
	return prefs
}
