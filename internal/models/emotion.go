package models

import "time"

// Expression labels produced by the face-analysis model.
const (
	ExpressionHappy     = "happy"
	ExpressionSad       = "sad"
	ExpressionAngry     = "angry"
	ExpressionSurprised = "surprised"
	ExpressionFearful   = "fearful"
	ExpressionDisgusted = "disgusted"
	ExpressionNeutral   = "neutral"
)

// Expressions lists every label the detector can emit.
var Expressions = []string{
	ExpressionHappy,
	ExpressionSad,
	ExpressionAngry,
	ExpressionSurprised,
	ExpressionFearful,
	ExpressionDisgusted,
	ExpressionNeutral,
}

// EmotionEntry is one webcam classification result.
type EmotionEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
