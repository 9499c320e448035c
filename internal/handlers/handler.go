package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
	"github.com/AnshRaj112/serenify-mood/pkg/utils"
)

// Handler serves the HTTP API on top of the services layer.
type Handler struct {
	Auth        *services.AuthService
	Profiles    *services.ProfileService
	Preferences *services.PreferenceService
	Records     *services.RecordStore
	Chat        *services.ChatService

	// Uploader is nil when Cloudinary is not configured.
	Uploader services.Uploader

	// AllowedOrigins is checked on WebSocket upgrades.
	AllowedOrigins []string

	// ChatLimit is charged once per chat socket message, keyed by client
	// IP. Nil means unlimited.
	ChatLimit  ChatLimiter
	TrustProxy bool
}

// ChatLimiter is satisfied by middleware.ChatBudget.
type ChatLimiter interface {
	Allow(key string) bool
}

type contextKey int

const sessionContextKey contextKey = iota

// maxJSONBody caps request bodies other than uploads and imports.
const maxJSONBody = 1 << 20

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// requestToken reads the bearer token, falling back to the token query
// parameter for browser WebSocket clients.
func requestToken(r *http.Request) string {
	if token := extractBearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// RequireSession resolves the session token and stores the session in the
// request context. Requests without a valid session get 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		sess, ok, err := h.Auth.Resolve(r.Context(), token)
		if err != nil {
			logger.Log.Errorw("Session lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to validate session")
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(models.Session)
	return sess, ok
}

func sessionOf(r *http.Request) models.Session {
	sess, _ := SessionFromContext(r.Context())
	return sess
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnw("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeServiceError maps a services error onto a status code and message.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrInvalidEntry), errors.Is(err, services.ErrInvalidImport):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrMoodNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUploadUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, services.ErrChatNotConfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		logger.Log.Errorw("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// queryLimit parses ?limit=; missing or invalid values give 0, which the
// record store turns into its default.
func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
