package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

// GetProfile returns the caller's profile, or 404 when none was saved yet.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionOf(r)
	profile, ok, err := h.Profiles.GetProfile(r.Context(), sess.Owner())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profile,
	})
}

// UpdateProfile applies the fields present in the body.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	profile, err := h.Profiles.UpdateProfile(r.Context(), sessionOf(r), upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated",
		"profile": profile,
	})
}

// GetPreferences returns every preference of the caller.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs := h.Preferences.GetAllPreferences(r.Context(), sessionOf(r))
	if prefs == nil {
		prefs = map[string]json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"preferences": prefs,
	})
}

// GetPreference returns one preference; an unset key yields a null value.
func (h *Handler) GetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value := h.Preferences.GetPreference(r.Context(), sessionOf(r), key)
	if value == nil {
		value = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"key":     key,
		"value":   value,
	})
}

type preferenceRequest struct {
	Value json.RawMessage `json:"value"`
}

// SavePreference stores {"value": <any JSON>} under the key.
func (h *Handler) SavePreference(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Value) == 0 {
		writeServiceError(w, services.ErrInvalidEntry)
		return
	}
	key := chi.URLParam(r, "key")
	if err := h.Preferences.SavePreference(r.Context(), sessionOf(r), key, req.Value); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Preference saved",
	})
}
