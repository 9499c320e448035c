package models

import "time"

// DateLayout is the ISO day format used for MoodEntry.Date and EmotionEntry.Date.
const DateLayout = "2006-01-02"

// Mood is the self-reported mood vocabulary.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodAnxious Mood = "anxious"
	MoodNeutral Mood = "neutral"
	MoodExcited Mood = "excited"
	MoodTired   Mood = "tired"
	MoodContent Mood = "content"
)

// Moods lists the vocabulary in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodAngry, MoodAnxious, MoodNeutral, MoodExcited, MoodTired, MoodContent}

// MoodEntry is a user's self-reported state for one day.
type MoodEntry struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Date       string     `json:"date"`
	Mood       string     `json:"mood"`
	Intensity  int        `json:"intensity"`
	Note       string     `json:"note,omitempty"`
	Activities []string   `json:"activities"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// MoodPatch carries the fields an update may change; nil means unchanged.
type MoodPatch struct {
	Date       *string   `json:"date,omitempty"`
	Mood       *string   `json:"mood,omitempty"`
	Intensity  *int      `json:"intensity,omitempty"`
	Note       *string   `json:"note,omitempty"`
	Activities *[]string `json:"activities,omitempty"`
}

// ActivityOptions are the activity tags offered by the mood form.
var ActivityOptions = []string{
	"Exercise",
	"Reading",
	"Studying",
	"Socializing",
	"Gaming",
	"Cooking",
	"Cleaning",
	"Working",
	"Shopping",
	"Meditating",
	"Watching TV",
	"Family time",
	"Outdoor activity",
	"Creative hobby",
	"Music",
}
