package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string

	StoreBackend string // redis, postgres, mongo or memory
	RedisURI     string
	PostgresURI  string
	MongoURI     string

	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	TrustProxy     bool     // take the client IP from X-Forwarded-For

	ChatAPIKey    string
	ChatBaseURL   string
	ChatModel     string
	ChatMaxTokens int

	SpecialAccountEmail    string
	SpecialAccountPassword string
	SpecialAccountName     string
	SpecialAccountBio      string
	SpecialAccountImage    string

	SessionTTL time.Duration

	// EncryptionKey is a base64 AES-256 key; when set, chat transcripts
	// are encrypted at rest.
	EncryptionKey string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	LogLevel string
	LogFile  string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		Environment:  env,
		Port:         getEnv("PORT", "8080"),
		StoreBackend: strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "redis"))),
		RedisURI:     getEnv("REDIS_URI", "redis://localhost:6379/0"),
		PostgresURI:  getEnv("POSTGRES_URI", "postgres://localhost:5432/serenify?sslmode=disable"),
		MongoURI:     getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/serenify")),

		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,
		TrustProxy:     strings.EqualFold(getEnv("TRUST_PROXY", "false"), "true"),

		ChatAPIKey:    getEnv("API_KEY", ""),
		ChatBaseURL:   getEnv("CHAT_BASE_URL", "https://api.groq.com/openai/v1"),
		ChatModel:     getEnv("CHAT_MODEL", "llama3-8b-8192"),
		ChatMaxTokens: getEnvInt("CHAT_MAX_TOKENS", 1000),

		SpecialAccountEmail:    strings.ToLower(strings.TrimSpace(getEnv("SPECIAL_ACCOUNT_EMAIL", ""))),
		SpecialAccountPassword: getEnv("SPECIAL_ACCOUNT_PASSWORD", ""),
		SpecialAccountName:     getEnv("SPECIAL_ACCOUNT_NAME", "Demo User"),
		SpecialAccountBio:      getEnv("SPECIAL_ACCOUNT_BIO", "Mental health enthusiast and app tester"),
		SpecialAccountImage:    getEnv("SPECIAL_ACCOUNT_IMAGE", ""),

		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 7*24)) * time.Hour,
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// HasCloudinary reports whether all Cloudinary credentials are present.
func (c *Config) HasCloudinary() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// HasSpecialAccount reports whether the sample-data demo account is configured.
func (c *Config) HasSpecialAccount() bool {
	return c.SpecialAccountEmail != "" && c.SpecialAccountPassword != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
