package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/serenify-mood/internal/handlers"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	// Health check (no auth)
	r.Get("/health", handlers.Health)

	// Auth routes
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/signin", h.Signin)
	r.Post("/api/auth/logout", h.Logout)

	// Everything below acts on the signed-in user's data
	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Get("/api/auth/me", h.Me)

		// Profile and preferences
		r.Get("/api/profile", h.GetProfile)
		r.Put("/api/profile", h.UpdateProfile)
		r.Post("/api/upload", h.UploadProfileImage)
		r.Get("/api/preferences", h.GetPreferences)
		r.Get("/api/preferences/{key}", h.GetPreference)
		r.Put("/api/preferences/{key}", h.SavePreference)

		// Mood log
		r.Get("/api/moods", h.GetMoods)
		r.Post("/api/moods", h.SaveMood)
		r.Post("/api/moods/entries", h.AddMood)
		r.Get("/api/moods/stats", h.MoodStats)
		r.Put("/api/moods/{id}", h.UpdateMood)
		r.Delete("/api/moods/{id}", h.DeleteMood)

		// Emotion detection
		r.Get("/api/emotions", h.GetEmotions)
		r.Post("/api/emotions", h.SaveEmotion)
		r.Get("/api/emotions/recent", h.RecentEmotions)
		r.Post("/api/emotions/detect", h.DetectMood)
		r.Post("/api/emotions/image", h.DetectMoodWithImage)

		// Backup
		r.Get("/api/data/export", h.ExportData)
		r.Post("/api/data/import", h.ImportData)
		r.Delete("/api/data", h.ClearData)

		// Assistant chat
		r.Post("/api/chat", h.ChatStream)
		r.Post("/api/chat-simple", h.ChatSimple)
		r.Get("/api/chat/history", h.GetChatHistory)
		r.Delete("/api/chat/history", h.ClearChatHistory)
		r.Get("/ws/chat", h.ChatWebSocket)
	})
}
