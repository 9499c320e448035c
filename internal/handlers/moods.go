package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

type MoodRequest struct {
	Date       string   `json:"date"`
	Mood       string   `json:"mood"`
	Intensity  int      `json:"intensity"`
	Note       string   `json:"note,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

type MoodResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Mood    *models.MoodEntry `json:"mood,omitempty"`
}

// GetMoods lists the caller's moods newest first. ?limit= caps the result.
func (h *Handler) GetMoods(w http.ResponseWriter, r *http.Request) {
	moods := h.Records.GetMoods(r.Context(), sessionOf(r), queryLimit(r))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"moods":   moods,
		"total":   len(moods),
	})
}

// SaveMood records the mood for a day, replacing that day's earlier entry.
func (h *Handler) SaveMood(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	saved, err := h.Records.SaveMood(r.Context(), sessionOf(r), models.MoodEntry{
		Date:       req.Date,
		Mood:       req.Mood,
		Intensity:  req.Intensity,
		Note:       req.Note,
		Activities: req.Activities,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MoodResponse{Success: true, Message: "Mood saved", Mood: &saved})
}

// AddMood appends a mood without replacing the day's earlier entries.
func (h *Handler) AddMood(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	added, err := h.Records.AddMood(r.Context(), sessionOf(r), models.MoodEntry{
		Date:       req.Date,
		Mood:       req.Mood,
		Intensity:  req.Intensity,
		Note:       req.Note,
		Activities: req.Activities,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MoodResponse{Success: true, Message: "Mood added", Mood: &added})
}

// UpdateMood patches one of the caller's moods by id.
func (h *Handler) UpdateMood(w http.ResponseWriter, r *http.Request) {
	var patch models.MoodPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.Records.UpdateMood(r.Context(), sessionOf(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MoodResponse{Success: true, Message: "Mood updated", Mood: &updated})
}

// DeleteMood removes one of the caller's moods by id.
func (h *Handler) DeleteMood(w http.ResponseWriter, r *http.Request) {
	if err := h.Records.DeleteMood(r.Context(), sessionOf(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MoodResponse{Success: true, Message: "Mood deleted"})
}

// MoodStats summarizes the caller's recent moods for the insights view.
func (h *Handler) MoodStats(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r)
	if limit == 0 {
		limit = services.DefaultMoodLimit
	}
	stats := services.ComputeStats(h.Records.GetMoods(r.Context(), sessionOf(r), limit))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}
