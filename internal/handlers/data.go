package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

// maxImportBody bounds an uploaded backup file.
const maxImportBody = 10 << 20

// ExportData downloads the caller's moods and emotions as a JSON backup.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	doc := h.Records.ExportData(r.Context(), sessionOf(r))
	filename := fmt.Sprintf("mood-data-%s.json", doc.ExportDate.Format(models.DateLayout))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, doc)
}

// ImportData replaces the caller's records with a previously exported
// backup, sent either as the raw JSON body or as the "file" field of a
// multipart form.
func (h *Handler) ImportData(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer file.Close()
		src = file
	}

	doc, err := services.ParseExportDocument(src)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sess := sessionOf(r)
	n, err := h.Records.ImportData(r.Context(), sess, doc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logger.Log.Infow("Data imported", "user_id", sess.Owner(), "records", n)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Data imported successfully",
		"imported": n,
	})
}

// ClearData deletes every mood and emotion of the caller.
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	sess := sessionOf(r)
	if err := h.Records.ClearAllData(r.Context(), sess); err != nil {
		writeServiceError(w, err)
		return
	}
	logger.Log.Infow("Data cleared", "user_id", sess.Owner())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "All data cleared",
	})
}
