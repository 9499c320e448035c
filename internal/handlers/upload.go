package handlers

import (
	"net/http"

	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

type UploadResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	URL     string          `json:"url,omitempty"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// UploadProfileImage stores the "file" form field on Cloudinary and sets it
// as the caller's profile picture.
func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	if h.Uploader == nil {
		writeServiceError(w, services.ErrUploadUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadForm)
	if err := r.ParseMultipartForm(maxUploadForm); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	url, err := h.Uploader.UploadImage(r.Context(), file, services.ProfileImageFolder)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	profile, err := h.Profiles.UpdateProfile(r.Context(), sessionOf(r), models.ProfileUpdate{ProfileImageURL: &url})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		URL:     url,
		Profile: &profile,
	})
}
