package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/AnshRaj112/serenify-mood/internal/config"
	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/handlers"
	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/middleware"
	"github.com/AnshRaj112/serenify-mood/internal/routes"
	"github.com/AnshRaj112/serenify-mood/internal/services"
	"github.com/AnshRaj112/serenify-mood/pkg/utils"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Log.Infow("Connecting to store...", "backend", cfg.StoreBackend)
	store, closeStore, err := database.OpenStore(database.StoreOptions{
		Backend:     cfg.StoreBackend,
		RedisURI:    cfg.RedisURI,
		PostgresURI: cfg.PostgresURI,
		MongoURI:    cfg.MongoURI,
	})
	if err != nil {
		logger.Log.Fatalw("Failed to connect to store", "backend", cfg.StoreBackend, "error", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Log.Warnw("Failed to close store", "error", err)
		}
	}()

	// Chat transcripts are only encrypted when a valid key is configured
	var cipher *utils.Cipher
	if cfg.EncryptionKey == "" {
		logger.Log.Warn("⚠️  ENCRYPTION_KEY not set. Chat history is stored in plain text. Generate one with: openssl rand -base64 32")
	} else if cipher, err = utils.NewCipher(cfg.EncryptionKey); err != nil {
		logger.Log.Fatalw("ENCRYPTION_KEY is invalid (must be base64-encoded 32 bytes)", "error", err)
	} else {
		logger.Log.Info("✅ Encryption key configured")
	}

	sessions := services.NewSessionManager(store, cfg.SessionTTL)
	profiles := services.NewProfileService(store)
	records := services.NewRecordStore(store)

	var special services.SpecialAccount
	if cfg.HasSpecialAccount() {
		special = services.SpecialAccount{
			Email:    cfg.SpecialAccountEmail,
			Password: cfg.SpecialAccountPassword,
			Name:     cfg.SpecialAccountName,
			Bio:      cfg.SpecialAccountBio,
			ImageURL: cfg.SpecialAccountImage,
		}
	}
	auth := services.NewAuthService(store, sessions, profiles, special)
	if err := auth.EnsureSpecialAccount(context.Background()); err != nil {
		logger.Log.Warnw("Failed to seed demo account", "error", err)
	}

	// A nil completer leaves the chat endpoints answering "API key is not configured"
	var completer services.Completer
	if c, err := services.NewLangchainCompleter(cfg.ChatAPIKey, cfg.ChatBaseURL, cfg.ChatModel, cfg.ChatMaxTokens); err == nil {
		completer = c
		logger.Log.Infow("✅ Chat assistant configured", "model", cfg.ChatModel)
	} else if errors.Is(err, services.ErrChatNotConfigured) {
		logger.Log.Warn("API_KEY not set. Chat will not be available")
	} else {
		logger.Log.Warnw("Failed to initialize chat client", "error", err)
	}
	chat := services.NewChatService(completer, records, services.NewChatHistory(store, cipher))

	h := &handlers.Handler{
		Auth:           auth,
		Profiles:       profiles,
		Preferences:    services.NewPreferenceService(store),
		Records:        records,
		Chat:           chat,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
	}
	// one budget for the HTTP chat routes and the chat socket
	chatBudget := middleware.NewChatBudget()
	h.ChatLimit = chatBudget

	if cfg.HasCloudinary() {
		uploader, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Log.Warnw("Failed to initialize Cloudinary. File uploads will not be available", "error", err)
		} else {
			h.Uploader = uploader
			logger.Log.Info("✅ Cloudinary service initialized")
		}
	} else {
		logger.Log.Warn("Cloudinary credentials not found. File uploads will not be available")
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(cfg.TrustProxy))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only, when Redis is the store
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.TrustProxy) {
			r.Use(mw)
		}
		logger.Log.Info("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else if database.RedisClient != nil {
		r.Use(middleware.RedisRateLimit(database.RedisClient, cfg.TrustProxy))
	}
	r.Use(middleware.ChatRateLimit(cfg.TrustProxy, chatBudget))

	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("🚀 Serenify mood tracker running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalw("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Warnw("Server shutdown failed", "error", err)
	}
	// let in-flight chat replies finish writing their history
	chat.Wait()
}
