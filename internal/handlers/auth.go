package handlers

import (
	"net/http"

	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Name            string `json:"name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token,omitempty"`
	User    *models.Session `json:"user,omitempty"`
	Profile *models.Profile `json:"profile,omitempty"`
}

func authResponse(message string, res services.AuthResult) AuthResponse {
	return AuthResponse{
		Success: true,
		Message: message,
		Token:   res.Token,
		User:    &res.Session,
		Profile: &res.Profile,
	}
}

// Signup registers a new account and signs it in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Auth.SignUp(r.Context(), services.SignUpInput{
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logger.Log.Infow("User signed up", "user_id", res.Session.UserID)
	writeJSON(w, http.StatusCreated, authResponse("Account created successfully", res))
}

// Signin checks credentials and issues a session token.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	res, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse("Signed in successfully", res))
}

// Logout drops the caller's session. Missing or unknown tokens succeed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), requestToken(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Signed out",
	})
}

// Me returns the current session and profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := sessionOf(r)
	if err := h.Auth.Refresh(r.Context(), requestToken(r)); err != nil {
		logger.Log.Warnw("Failed to refresh session", "user_id", sess.Owner(), "error", err)
	}
	resp := AuthResponse{Success: true, User: &sess}
	profile, ok, err := h.Profiles.GetProfile(r.Context(), sess.Owner())
	if err != nil {
		logger.Log.Warnw("Failed to load profile", "user_id", sess.Owner(), "error", err)
	}
	if ok {
		resp.Profile = &profile
	}
	writeJSON(w, http.StatusOK, resp)
}
