package models

import (
	"encoding/json"
	"time"
)

// ExportDocument is the backup file format.
type ExportDocument struct {
	Moods      []MoodEntry    `json:"moods"`
	Emotions   []EmotionEntry `json:"emotions"`
	ExportDate time.Time      `json:"exportDate"`
}

// ImportDocument is ExportDocument as received from a client: the arrays
// stay raw so a missing or non-array field can be told apart from an empty one.
type ImportDocument struct {
	Moods    json.RawMessage `json:"moods"`
	Emotions json.RawMessage `json:"emotions"`
}
