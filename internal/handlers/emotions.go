package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

// maxUploadForm bounds multipart bodies; the image itself is capped by
// services.MaxImageBytes.
const maxUploadForm = 10 << 20

type EmotionRequest struct {
	Date       string  `json:"date,omitempty"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	ImageURL   string  `json:"image_url,omitempty"`
}

type DetectRequest struct {
	Expressions map[string]float64 `json:"expressions"`
	ImageURL    string             `json:"image_url,omitempty"`
}

type DetectResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Mood    models.MoodEntry    `json:"mood"`
	Emotion models.EmotionEntry `json:"emotion"`
}

// GetEmotions lists the caller's emotion snapshots newest first.
func (h *Handler) GetEmotions(w http.ResponseWriter, r *http.Request) {
	emotions := h.Records.GetEmotions(r.Context(), sessionOf(r), queryLimit(r))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"emotions": emotions,
		"total":    len(emotions),
	})
}

// RecentEmotions lists the caller's captured emotions by capture time,
// without demo samples.
func (h *Handler) RecentEmotions(w http.ResponseWriter, r *http.Request) {
	emotions := h.Records.RecentEmotions(r.Context(), sessionOf(r), queryLimit(r))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"emotions": emotions,
		"total":    len(emotions),
	})
}

// SaveEmotion records one classification result as is.
func (h *Handler) SaveEmotion(w http.ResponseWriter, r *http.Request) {
	var req EmotionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	saved, err := h.Records.SaveEmotion(r.Context(), sessionOf(r), models.EmotionEntry{
		Date:       req.Date,
		Emotion:    req.Emotion,
		Confidence: req.Confidence,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Emotion saved",
		"emotion": saved,
	})
}

// DetectMood takes the detector's expression scores and saves today's mood
// from the strongest one.
func (h *Handler) DetectMood(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.saveDetected(w, r, req.Expressions, req.ImageURL)
}

// DetectMoodWithImage is DetectMood for a multipart form carrying the
// webcam snapshot ("image") and the scores as JSON ("expressions"). The
// snapshot goes to Cloudinary first.
func (h *Handler) DetectMoodWithImage(w http.ResponseWriter, r *http.Request) {
	if h.Uploader == nil {
		writeServiceError(w, services.ErrUploadUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadForm)
	if err := r.ParseMultipartForm(maxUploadForm); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	var scores map[string]float64
	if err := json.Unmarshal([]byte(r.FormValue("expressions")), &scores); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expressions")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer file.Close()

	url, err := h.Uploader.UploadImage(r.Context(), file, services.EmotionImageFolder)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.saveDetected(w, r, scores, url)
}

func (h *Handler) saveDetected(w http.ResponseWriter, r *http.Request, scores map[string]float64, imageURL string) {
	sess := sessionOf(r)
	mood, emotion, err := h.Records.SaveMoodFromExpressions(r.Context(), sess, scores, imageURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logger.Log.Infow("Mood detected from expression", "user_id", sess.Owner(), "emotion", emotion.Emotion, "mood", mood.Mood)
	writeJSON(w, http.StatusOK, DetectResponse{
		Success: true,
		Message: "Detected " + services.ExpressionLabel(emotion.Emotion) + ", saved mood " + mood.Mood,
		Mood:    mood,
		Emotion: emotion,
	})
}
