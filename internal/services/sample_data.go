package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/AnshRaj112/serenify-mood/internal/models"
)

const (
	sampleMoodDays    = 30
	sampleEmotionDays = 15

	// e.g. "Sun Mar 01 2026"
	sampleNoteLayout = "Mon Jan 02 2006"
)

// GenerateSampleMoods builds the demo mood history shown to the special
// account: one entry on most of the last 30 days, following a sine wave
// so the charts have a visible trend.
func GenerateSampleMoods(owner string, now time.Time, rng *rand.Rand) []models.MoodEntry {
	today := now.UTC()
	out := make([]models.MoodEntry, 0, sampleMoodDays)
	for i := sampleMoodDays - 1; i >= 0; i-- {
		if i%4 == 0 {
			continue
		}
		day := today.AddDate(0, 0, -i)
		date := day.Format(models.DateLayout)

		intensity := sampleIntensity(i)
		mood := sampleMood(i, intensity)

		activities := sampleActivities(rng)

		out = append(out, models.MoodEntry{
			ID:         fmt.Sprintf("sample-%d", i),
			UserID:     owner,
			Date:       date,
			Mood:       string(mood),
			Intensity:  intensity,
			Note:       "Generated sample data for " + day.Format(sampleNoteLayout),
			Activities: activities,
			CreatedAt:  day,
		})
	}
	return out
}

// GenerateSampleEmotions builds the demo facial-expression history for the
// special account over the last 15 days.
func GenerateSampleEmotions(owner string, now time.Time, rng *rand.Rand) []models.EmotionEntry {
	today := now.UTC()
	out := make([]models.EmotionEntry, 0, sampleEmotionDays)
	for i := sampleEmotionDays - 1; i >= 0; i-- {
		if i%3 == 0 {
			continue
		}
		day := today.AddDate(0, 0, -i)
		out = append(out, models.EmotionEntry{
			ID:         fmt.Sprintf("sample-%d", i),
			UserID:     owner,
			Date:       day.Format(models.DateLayout),
			Emotion:    models.Expressions[rng.Intn(len(models.Expressions))],
			Confidence: 0.6 + rng.Float64()*0.4,
			CreatedAt:  day,
		})
	}
	return out
}

func sampleIntensity(i int) int {
	v := int(math.Round(5 + 4*math.Sin(2*math.Pi*float64(i)/sampleMoodDays)))
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func sampleMood(i, intensity int) models.Mood {
	var mood models.Mood
	switch {
	case intensity >= 8:
		mood = models.MoodHappy
	case intensity >= 6:
		mood = models.MoodContent
	case intensity >= 5:
		mood = models.MoodNeutral
	case intensity >= 3:
		mood = models.MoodTired
	default:
		mood = models.MoodSad
	}
	switch {
	case i%13 == 0:
		mood = models.MoodAngry
	case i%11 == 0:
		mood = models.MoodAnxious
	case i%7 == 0:
		mood = models.MoodExcited
	}
	return mood
}

// sampleActivities draws up to three activities; repeated draws collapse.
func sampleActivities(rng *rand.Rand) []string {
	n := rng.Intn(4)
	out := make([]string, 0, n)
	for j := 0; j < n; j++ {
		a := models.ActivityOptions[rng.Intn(len(models.ActivityOptions))]
		dup := false
		for _, have := range out {
			if have == a {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, a)
		}
	}
	return out
}
