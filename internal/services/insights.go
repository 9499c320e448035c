package services

import (
	"math"
	"sort"
	"time"

	"github.com/AnshRaj112/serenify-mood/internal/models"
)

// MoodCount is how often a mood was recorded.
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}

// ActivityCorrelation summarises the moods recorded alongside an activity.
type ActivityCorrelation struct {
	Activity        string      `json:"activity"`
	Total           int         `json:"total"`
	AvgIntensity    float64     `json:"avg_intensity"`
	MoodCorrelation []MoodCount `json:"mood_correlation"`
}

// WeekdayPattern aggregates entries falling on one day of the week.
type WeekdayPattern struct {
	Day          string  `json:"day"`
	DayNum       int     `json:"day_num"`
	Count        int     `json:"count"`
	AvgIntensity float64 `json:"avg_intensity"`
	DominantMood string  `json:"dominant_mood"`
}

// MoodStats is the payload of the statistics endpoint.
type MoodStats struct {
	Total        int                   `json:"total"`
	AvgIntensity float64               `json:"avg_intensity"`
	Distribution []MoodCount           `json:"distribution"`
	Activities   []ActivityCorrelation `json:"activities"`
	Weekly       []WeekdayPattern      `json:"weekly"`
}

// ComputeStats runs every aggregation over entries.
func ComputeStats(entries []models.MoodEntry) MoodStats {
	total := 0
	for _, e := range entries {
		total += e.Intensity
	}
	return MoodStats{
		Total:        len(entries),
		AvgIntensity: average(total, len(entries)),
		Distribution: MoodDistribution(entries),
		Activities:   ActivityCorrelations(entries),
		Weekly:       WeeklyPattern(entries),
	}
}

// MoodDistribution counts entries per mood. Every mood of the vocabulary
// is present, in vocabulary order; moods outside it are ignored.
func MoodDistribution(entries []models.MoodEntry) []MoodCount {
	counts := make(map[string]int, len(models.Moods))
	for _, e := range entries {
		counts[e.Mood]++
	}
	out := make([]MoodCount, 0, len(models.Moods))
	for _, m := range models.Moods {
		out = append(out, MoodCount{Mood: string(m), Count: counts[string(m)]})
	}
	return out
}

// ActivityCorrelations groups entries by activity. Within an activity the
// moods are sorted by count; activities are sorted by total entries. Ties
// fall back to name order so the output is stable.
func ActivityCorrelations(entries []models.MoodEntry) []ActivityCorrelation {
	type acc struct {
		total     int
		intensity int
		moods     map[string]int
	}
	byActivity := map[string]*acc{}
	for _, e := range entries {
		for _, a := range e.Activities {
			cur, ok := byActivity[a]
			if !ok {
				cur = &acc{moods: map[string]int{}}
				byActivity[a] = cur
			}
			cur.total++
			cur.intensity += e.Intensity
			cur.moods[e.Mood]++
		}
	}

	out := make([]ActivityCorrelation, 0, len(byActivity))
	for activity, a := range byActivity {
		moods := make([]MoodCount, 0, len(a.moods))
		for mood, n := range a.moods {
			moods = append(moods, MoodCount{Mood: mood, Count: n})
		}
		sort.Slice(moods, func(i, j int) bool {
			if moods[i].Count != moods[j].Count {
				return moods[i].Count > moods[j].Count
			}
			return moods[i].Mood < moods[j].Mood
		})
		out = append(out, ActivityCorrelation{
			Activity:        activity,
			Total:           a.total,
			AvgIntensity:    average(a.intensity, a.total),
			MoodCorrelation: moods,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}

// WeeklyPattern returns Sunday..Saturday aggregates. Days without entries
// report neutral as their dominant mood.
func WeeklyPattern(entries []models.MoodEntry) []WeekdayPattern {
	var (
		counts     [7]int
		intensity  [7]int
		moodCounts [7]map[string]int
	)
	for _, e := range entries {
		day, err := time.Parse(models.DateLayout, e.Date)
		if err != nil {
			continue
		}
		wd := int(day.Weekday())
		counts[wd]++
		intensity[wd] += e.Intensity
		if moodCounts[wd] == nil {
			moodCounts[wd] = map[string]int{}
		}
		moodCounts[wd][e.Mood]++
	}

	out := make([]WeekdayPattern, 7)
	for wd := 0; wd < 7; wd++ {
		dominant, best := string(models.MoodNeutral), 0
		for _, m := range models.Moods {
			if n := moodCounts[wd][string(m)]; n > best {
				dominant, best = string(m), n
			}
		}
		out[wd] = WeekdayPattern{
			Day:          time.Weekday(wd).String(),
			DayNum:       wd,
			Count:        counts[wd],
			AvgIntensity: average(intensity[wd], counts[wd]),
			DominantMood: dominant,
		}
	}
	return out
}

// average rounds to one decimal like the charts display it.
func average(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}
