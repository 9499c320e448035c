package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/AnshRaj112/serenify-mood/internal/models"
)

// defaultConfidence is used when the detector gave no score for the label.
const defaultConfidence = 0.5

var expressionMoods = map[string]models.Mood{
	models.ExpressionHappy:     models.MoodHappy,
	models.ExpressionSad:       models.MoodSad,
	models.ExpressionAngry:     models.MoodAngry,
	models.ExpressionSurprised: models.MoodExcited,
	models.ExpressionFearful:   models.MoodAnxious,
	models.ExpressionDisgusted: models.MoodTired,
	models.ExpressionNeutral:   models.MoodNeutral,
}

// EmotionToMood maps a detected expression to a mood and an intensity of
// round(5 + confidence*5). Unknown expressions map to neutral.
func EmotionToMood(expression string, confidence float64) (models.Mood, int) {
	mood, ok := expressionMoods[strings.ToLower(expression)]
	if !ok {
		mood = models.MoodNeutral
	}
	intensity := int(math.Round(5 + confidence*5))
	if intensity < 1 {
		intensity = 1
	}
	if intensity > 10 {
		intensity = 10
	}
	return mood, intensity
}

// ExpressionLabel is the display name of an expression, e.g. "Happy".
func ExpressionLabel(expression string) string {
	if expression == "" {
		return ""
	}
	return strings.ToUpper(expression[:1]) + expression[1:]
}

// DominantExpression returns the highest-scoring expression. Ties go to
// the alphabetically first label; a label outside the known set is
// reported as neutral. ok is false for an empty map.
func DominantExpression(scores map[string]float64) (expression string, confidence float64, ok bool) {
	if len(scores) == 0 {
		return "", 0, false
	}
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, label := range labels[1:] {
		if scores[label] > scores[best] {
			best = label
		}
	}
	confidence = scores[best]
	best = strings.ToLower(best)
	if _, known := expressionMoods[best]; !known {
		best = models.ExpressionNeutral
	}
	return best, confidence, true
}

// SaveMoodFromExpressions turns one detector result into today's mood
// entry and records the raw emotion next to it.
func (r *RecordStore) SaveMoodFromExpressions(ctx context.Context, sess models.Session, scores map[string]float64, imageURL string) (models.MoodEntry, models.EmotionEntry, error) {
	expression, confidence, ok := DominantExpression(scores)
	if !ok {
		return models.MoodEntry{}, models.EmotionEntry{}, fmt.Errorf("%w: no expressions detected", ErrInvalidEntry)
	}
	if confidence <= 0 || confidence > 1 {
		confidence = defaultConfidence
	}

	mood, intensity := EmotionToMood(expression, confidence)
	today := r.now().Format(models.DateLayout)

	emotion, err := r.SaveEmotion(ctx, sess, models.EmotionEntry{
		Date:       today,
		Emotion:    expression,
		Confidence: confidence,
		ImageURL:   imageURL,
	})
	if err != nil {
		return models.MoodEntry{}, models.EmotionEntry{}, err
	}

	entry, err := r.SaveMood(ctx, sess, models.MoodEntry{
		Date:       today,
		Mood:       string(mood),
		Intensity:  intensity,
		Activities: []string{},
		Note:       fmt.Sprintf("Automatically detected from facial expression (%s)", ExpressionLabel(expression)),
	})
	if err != nil {
		return models.MoodEntry{}, emotion, err
	}
	return entry, emotion, nil
}
