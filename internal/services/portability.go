package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
)

// ExportData bundles the owner's moods and emotions into a backup document.
// The special account exports sample data for a collection it has not
// written anything to yet.
func (r *RecordStore) ExportData(ctx context.Context, sess models.Session) models.ExportDocument {
	owner := sess.Owner()
	doc := models.ExportDocument{
		Moods:      []models.MoodEntry{},
		Emotions:   []models.EmotionEntry{},
		ExportDate: r.now(),
	}

	moods, err := r.loadMoods(ctx)
	if err != nil {
		logger.Log.Warnw("Error reading moods for export", "user_id", owner, "error", err)
	}
	for _, m := range moods {
		if m.UserID == owner {
			doc.Moods = append(doc.Moods, m)
		}
	}

	emotions, err := r.loadEmotions(ctx)
	if err != nil {
		logger.Log.Warnw("Error reading emotions for export", "user_id", owner, "error", err)
	}
	for _, e := range emotions {
		if e.UserID == owner {
			doc.Emotions = append(doc.Emotions, e)
		}
	}

	if sess.SpecialAccess && len(doc.Moods) == 0 {
		doc.Moods = r.sampleMoods(owner)
	}
	if sess.SpecialAccess && len(doc.Emotions) == 0 {
		doc.Emotions = r.sampleEmotions(owner)
	}
	return doc
}

// ParseExportDocument decodes a backup file and checks that it carries a
// moods array.
func ParseExportDocument(rd io.Reader) (models.ImportDocument, error) {
	var doc models.ImportDocument
	if err := json.NewDecoder(rd).Decode(&doc); err != nil {
		return models.ImportDocument{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if !isJSONArray(doc.Moods) {
		return models.ImportDocument{}, ErrInvalidImport
	}
	return doc, nil
}

// ImportData replaces the owner's records with the ones in doc. Records of
// other users are left alone. Emotions are only touched when doc carries an
// emotions array.
func (r *RecordStore) ImportData(ctx context.Context, sess models.Session, doc models.ImportDocument) (imported int, err error) {
	if !isJSONArray(doc.Moods) {
		return 0, ErrInvalidImport
	}
	var incomingMoods []models.MoodEntry
	if err := json.Unmarshal(doc.Moods, &incomingMoods); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	var incomingEmotions []models.EmotionEntry
	withEmotions := isJSONArray(doc.Emotions)
	if withEmotions {
		if err := json.Unmarshal(doc.Emotions, &incomingEmotions); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
	}

	owner := sess.Owner()
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Both collections are read before anything is written so a failed
	// read leaves the previous data in place.
	existing, err := r.loadMoods(ctx)
	if err != nil {
		return 0, err
	}
	var existingEmotions []models.EmotionEntry
	if withEmotions {
		if existingEmotions, err = r.loadEmotions(ctx); err != nil {
			return 0, err
		}
	}

	moods := make([]models.MoodEntry, 0, len(existing)+len(incomingMoods))
	for _, m := range existing {
		if m.UserID != owner {
			moods = append(moods, m)
		}
	}
	for _, m := range incomingMoods {
		m.UserID = owner
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.Activities == nil {
			m.Activities = []string{}
		}
		moods = append(moods, m)
	}
	if err := saveJSON(ctx, r.store, KeyMoods, moods, 0); err != nil {
		return 0, err
	}
	imported = len(incomingMoods)

	if !withEmotions {
		return imported, nil
	}

	emotions := make([]models.EmotionEntry, 0, len(existingEmotions)+len(incomingEmotions))
	for _, e := range existingEmotions {
		if e.UserID != owner {
			emotions = append(emotions, e)
		}
	}
	for _, e := range incomingEmotions {
		e.UserID = owner
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		emotions = append(emotions, e)
	}
	if err := saveJSON(ctx, r.store, KeyEmotions, emotions, 0); err != nil {
		return imported, err
	}
	return imported + len(incomingEmotions), nil
}

// ClearAllData removes the owner's moods and emotions.
func (r *RecordStore) ClearAllData(ctx context.Context, sess models.Session) error {
	owner := sess.Owner()

	r.mu.Lock()
	defer r.mu.Unlock()

	moods, err := r.loadMoods(ctx)
	if err != nil {
		return err
	}
	emotions, err := r.loadEmotions(ctx)
	if err != nil {
		return err
	}

	keptMoods := make([]models.MoodEntry, 0, len(moods))
	for _, m := range moods {
		if m.UserID != owner {
			keptMoods = append(keptMoods, m)
		}
	}
	keptEmotions := make([]models.EmotionEntry, 0, len(emotions))
	for _, e := range emotions {
		if e.UserID != owner {
			keptEmotions = append(keptEmotions, e)
		}
	}

	if err := saveJSON(ctx, r.store, KeyMoods, keptMoods, 0); err != nil {
		return err
	}
	return saveJSON(ctx, r.store, KeyEmotions, keptEmotions, 0)
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
