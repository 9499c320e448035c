package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-mood/internal/models"
)

func TestEmotionToMood(t *testing.T) {
	tests := []struct {
		expression string
		confidence float64
		mood       models.Mood
		intensity  int
	}{
		{"surprised", 0.9, models.MoodExcited, 10},
		{"happy", 0.5, models.MoodHappy, 8},
		{"sad", 0.0, models.MoodSad, 5},
		{"angry", 1.0, models.MoodAngry, 10},
		{"fearful", 0.3, models.MoodAnxious, 7},
		{"disgusted", 0.8, models.MoodTired, 9},
		{"neutral", 0.2, models.MoodNeutral, 6},
		{"Happy", 0.5, models.MoodHappy, 8},
		{"confused", 0.5, models.MoodNeutral, 8},
		{"happy", -5, models.MoodHappy, 1},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			mood, intensity := EmotionToMood(tt.expression, tt.confidence)
			assert.Equal(t, tt.mood, mood)
			assert.Equal(t, tt.intensity, intensity)
		})
	}
}

func TestDominantExpression(t *testing.T) {
	expr, conf, ok := DominantExpression(map[string]float64{"happy": 0.2, "sad": 0.7, "neutral": 0.1})
	require.True(t, ok)
	assert.Equal(t, "sad", expr)
	assert.InDelta(t, 0.7, conf, 1e-9)

	expr, _, ok = DominantExpression(map[string]float64{"angry": 0.5, "happy": 0.5})
	require.True(t, ok)
	assert.Equal(t, "angry", expr, "ties go to the first label alphabetically")

	expr, conf, ok = DominantExpression(map[string]float64{"confused": 0.9, "happy": 0.1})
	require.True(t, ok)
	assert.Equal(t, "neutral", expr)
	assert.InDelta(t, 0.9, conf, 1e-9)

	_, _, ok = DominantExpression(nil)
	assert.False(t, ok)
}

func TestSaveMoodFromExpressions(t *testing.T) {
	r, _ := newTestRecords(t)
	ctx := context.Background()

	mood, emotion, err := r.SaveMoodFromExpressions(ctx, alice, map[string]float64{"surprised": 0.9, "happy": 0.05}, "")
	require.NoError(t, err)

	assert.Equal(t, "excited", mood.Mood)
	assert.Equal(t, 10, mood.Intensity)
	assert.Equal(t, day(0), mood.Date)
	assert.Equal(t, "Automatically detected from facial expression (Surprised)", mood.Note)
	assert.Equal(t, "surprised", emotion.Emotion)

	// A second detection the same day updates the entry.
	mood2, _, err := r.SaveMoodFromExpressions(ctx, alice, map[string]float64{"sad": 0.4}, "https://img.example/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, mood.ID, mood2.ID)
	assert.Equal(t, "sad", mood2.Mood)
	assert.Equal(t, 7, mood2.Intensity)

	assert.Len(t, r.GetMoods(ctx, alice, 0), 1)
	emotions := r.RecentEmotions(ctx, alice, 0)
	require.Len(t, emotions, 2)
	assert.Equal(t, "https://img.example/x.jpg", emotions[0].ImageURL)

	_, _, err = r.SaveMoodFromExpressions(ctx, alice, map[string]float64{}, "")
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestSaveMoodFromExpressions_DefaultConfidence(t *testing.T) {
	r, _ := newTestRecords(t)

	mood, emotion, err := r.SaveMoodFromExpressions(context.Background(), alice, map[string]float64{"happy": 0}, "")
	require.NoError(t, err)
	assert.Equal(t, 8, mood.Intensity)
	assert.InDelta(t, defaultConfidence, emotion.Confidence, 1e-9)
}
