package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
)

const (
	DefaultMoodLimit    = 30
	DefaultEmotionLimit = 30
	DefaultRecentLimit  = 20
)

// RecordStore reads and writes the shared moods and emotions collections.
// Every read is filtered to the session owner; writes rewrite the whole
// collection, so they are serialized per process.
type RecordStore struct {
	store database.Store
	now   func() time.Time

	mu    sync.Mutex
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewRecordStore(store database.Store) *RecordStore {
	return &RecordStore{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock replaces the time source. Used by tests and the CLI.
func (r *RecordStore) WithClock(now func() time.Time) *RecordStore {
	r.now = now
	return r
}

// WithRand replaces the random source used for sample data.
func (r *RecordStore) WithRand(rng *rand.Rand) *RecordStore {
	r.rng = rng
	return r
}

func (r *RecordStore) loadMoods(ctx context.Context) ([]models.MoodEntry, error) {
	var all []models.MoodEntry
	if err := loadJSON(ctx, r.store, KeyMoods, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (r *RecordStore) loadEmotions(ctx context.Context) ([]models.EmotionEntry, error) {
	var all []models.EmotionEntry
	if err := loadJSON(ctx, r.store, KeyEmotions, &all); err != nil {
		return nil, err
	}
	return all, nil
}

// GetMoods returns the owner's moods newest-first. The special account also
// sees generated sample moods on dates it has no real entry for.
func (r *RecordStore) GetMoods(ctx context.Context, sess models.Session, limit int) []models.MoodEntry {
	if limit <= 0 {
		limit = DefaultMoodLimit
	}
	all, err := r.loadMoods(ctx)
	if err != nil {
		logger.Log.Warnw("Error fetching moods", "error", err)
		all = nil
	}

	owner := sess.Owner()
	userMoods := make([]models.MoodEntry, 0, len(all))
	for _, m := range all {
		if m.UserID == owner {
			userMoods = append(userMoods, m)
		}
	}
	sortMoodsNewestFirst(userMoods)

	if sess.SpecialAccess {
		userMoods = append(userMoods, r.sampleMoods(owner)...)
		sort.SliceStable(userMoods, func(i, j int) bool {
			return userMoods[i].Date > userMoods[j].Date
		})
		userMoods = uniqueMoodDates(userMoods)
	}

	if len(userMoods) > limit {
		userMoods = userMoods[:limit]
	}
	return userMoods
}

// GetEmotions mirrors GetMoods for emotion entries.
func (r *RecordStore) GetEmotions(ctx context.Context, sess models.Session, limit int) []models.EmotionEntry {
	if limit <= 0 {
		limit = DefaultEmotionLimit
	}
	all, err := r.loadEmotions(ctx)
	if err != nil {
		logger.Log.Warnw("Error fetching emotions", "error", err)
		all = nil
	}

	owner := sess.Owner()
	userEmotions := make([]models.EmotionEntry, 0, len(all))
	for _, e := range all {
		if e.UserID == owner {
			userEmotions = append(userEmotions, e)
		}
	}
	sortEmotionsNewestFirst(userEmotions)

	if sess.SpecialAccess {
		userEmotions = append(userEmotions, r.sampleEmotions(owner)...)
		sort.SliceStable(userEmotions, func(i, j int) bool {
			return userEmotions[i].Date > userEmotions[j].Date
		})
		userEmotions = uniqueEmotionDates(userEmotions)
	}

	if len(userEmotions) > limit {
		userEmotions = userEmotions[:limit]
	}
	return userEmotions
}

// RecentEmotions returns the owner's real emotion entries by capture time,
// newest first.
func (r *RecordStore) RecentEmotions(ctx context.Context, sess models.Session, limit int) []models.EmotionEntry {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	all, err := r.loadEmotions(ctx)
	if err != nil {
		logger.Log.Warnw("Error fetching emotions", "error", err)
		return []models.EmotionEntry{}
	}
	owner := sess.Owner()
	out := make([]models.EmotionEntry, 0)
	for _, e := range all {
		if e.UserID == owner {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SaveMood upserts by (owner, date): an existing entry for that day is
// merged with the incoming fields, otherwise a new entry is appended.
func (r *RecordStore) SaveMood(ctx context.Context, sess models.Session, entry models.MoodEntry) (models.MoodEntry, error) {
	if err := validateMood(entry); err != nil {
		return models.MoodEntry{}, err
	}
	owner := sess.Owner()
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadMoods(ctx)
	if err != nil {
		return models.MoodEntry{}, err
	}

	var saved models.MoodEntry
	idx := -1
	for i, m := range all {
		if m.Date == entry.Date && m.UserID == owner {
			idx = i
			break
		}
	}

	if idx >= 0 {
		merged := all[idx]
		merged.Mood = entry.Mood
		merged.Intensity = entry.Intensity
		merged.Note = entry.Note
		merged.Activities = entry.Activities
		if merged.Activities == nil {
			merged.Activities = []string{}
		}
		merged.UserID = owner
		merged.UpdatedAt = &now
		all[idx] = merged
		saved = merged
	} else {
		entry.ID = uuid.NewString()
		entry.UserID = owner
		entry.CreatedAt = now
		entry.UpdatedAt = nil
		if entry.Activities == nil {
			entry.Activities = []string{}
		}
		all = append(all, entry)
		saved = entry
	}

	if err := saveJSON(ctx, r.store, KeyMoods, all, 0); err != nil {
		return models.MoodEntry{}, err
	}
	return saved, nil
}

// AddMood always stores a new entry, even when the owner already has one
// for that date.
func (r *RecordStore) AddMood(ctx context.Context, sess models.Session, entry models.MoodEntry) (models.MoodEntry, error) {
	if err := validateMood(entry); err != nil {
		return models.MoodEntry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadMoods(ctx)
	if err != nil {
		return models.MoodEntry{}, err
	}

	entry.ID = uuid.NewString()
	entry.UserID = sess.Owner()
	entry.CreatedAt = r.now()
	entry.UpdatedAt = nil
	if entry.Activities == nil {
		entry.Activities = []string{}
	}

	all = append([]models.MoodEntry{entry}, all...)
	if err := saveJSON(ctx, r.store, KeyMoods, all, 0); err != nil {
		return models.MoodEntry{}, err
	}
	return entry, nil
}

// UpdateMood patches one of the owner's entries by id.
func (r *RecordStore) UpdateMood(ctx context.Context, sess models.Session, id string, patch models.MoodPatch) (models.MoodEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadMoods(ctx)
	if err != nil {
		return models.MoodEntry{}, err
	}

	owner := sess.Owner()
	for i, m := range all {
		if m.ID != id || m.UserID != owner {
			continue
		}
		if patch.Date != nil {
			m.Date = *patch.Date
		}
		if patch.Mood != nil {
			m.Mood = *patch.Mood
		}
		if patch.Intensity != nil {
			m.Intensity = *patch.Intensity
		}
		if patch.Note != nil {
			m.Note = *patch.Note
		}
		if patch.Activities != nil {
			m.Activities = *patch.Activities
		}
		if err := validateMood(m); err != nil {
			return models.MoodEntry{}, err
		}
		now := r.now()
		m.UpdatedAt = &now
		all[i] = m
		if err := saveJSON(ctx, r.store, KeyMoods, all, 0); err != nil {
			return models.MoodEntry{}, err
		}
		return m, nil
	}
	return models.MoodEntry{}, ErrMoodNotFound
}

// DeleteMood removes one of the owner's entries by id.
func (r *RecordStore) DeleteMood(ctx context.Context, sess models.Session, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadMoods(ctx)
	if err != nil {
		return err
	}

	owner := sess.Owner()
	kept := make([]models.MoodEntry, 0, len(all))
	for _, m := range all {
		if m.ID == id && m.UserID == owner {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == len(all) {
		return ErrMoodNotFound
	}
	return saveJSON(ctx, r.store, KeyMoods, kept, 0)
}

// SaveEmotion appends a new emotion entry. A blank date defaults to today.
func (r *RecordStore) SaveEmotion(ctx context.Context, sess models.Session, entry models.EmotionEntry) (models.EmotionEntry, error) {
	now := r.now()
	if entry.Date == "" {
		entry.Date = now.Format(models.DateLayout)
	}
	if err := validateEmotion(entry); err != nil {
		return models.EmotionEntry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadEmotions(ctx)
	if err != nil {
		return models.EmotionEntry{}, err
	}

	entry.ID = uuid.NewString()
	entry.UserID = sess.Owner()
	entry.CreatedAt = now
	all = append(all, entry)

	if err := saveJSON(ctx, r.store, KeyEmotions, all, 0); err != nil {
		return models.EmotionEntry{}, err
	}
	return entry, nil
}

func (r *RecordStore) sampleMoods(owner string) []models.MoodEntry {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return GenerateSampleMoods(owner, r.now(), r.rng)
}

func (r *RecordStore) sampleEmotions(owner string) []models.EmotionEntry {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return GenerateSampleEmotions(owner, r.now(), r.rng)
}

func validateMood(m models.MoodEntry) error {
	if _, err := time.Parse(models.DateLayout, m.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEntry)
	}
	if strings.TrimSpace(m.Mood) == "" {
		return fmt.Errorf("%w: mood is required", ErrInvalidEntry)
	}
	if m.Intensity < 1 || m.Intensity > 10 {
		return fmt.Errorf("%w: intensity must be between 1 and 10", ErrInvalidEntry)
	}
	return nil
}

func validateEmotion(e models.EmotionEntry) error {
	if _, err := time.Parse(models.DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.Emotion) == "" {
		return fmt.Errorf("%w: emotion is required", ErrInvalidEntry)
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidEntry)
	}
	return nil
}

func sortMoodsNewestFirst(list []models.MoodEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date > list[j].Date
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func sortEmotionsNewestFirst(list []models.EmotionEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date > list[j].Date
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

// uniqueMoodDates keeps the first entry per date; callers order real
// entries ahead of samples.
func uniqueMoodDates(list []models.MoodEntry) []models.MoodEntry {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, m := range list {
		if _, ok := seen[m.Date]; ok {
			continue
		}
		seen[m.Date] = struct{}{}
		out = append(out, m)
	}
	return out
}

func uniqueEmotionDates(list []models.EmotionEntry) []models.EmotionEntry {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, e := range list {
		if _, ok := seen[e.Date]; ok {
			continue
		}
		seen[e.Date] = struct{}{}
		out = append(out, e)
	}
	return out
}
