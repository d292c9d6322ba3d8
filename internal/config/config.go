package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr    string
	PublicURL   string
	FrontendURL string

	DBDriver string
	DBDSN    string

	JWTSecret string

	EnableLocalAuth bool
	LocalUser       string
	LocalPassHash   string // bcrypt

	EnableGoogleAuth   bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string // e.g., PUBLIC_URL + "/auth/google/callback"

	// LLM scoring (OpenAI-compatible endpoint; Hugging Face router by default).
	EnableLLMScoring bool
	LLMBaseURL       string
	LLMAPIKey        string
	LLMModel         string
	LLMTimeoutSec    int

	CORSOrigins []string

	// Default lookahead window for event listing and calendar sync.
	DefaultWindowHours int
}

func FromEnv() Config {
	pub := os.Getenv("PUBLIC_URL")
	if pub == "" {
		pub = "http://localhost:8000"
	}
	return Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8000"),
		PublicURL:   pub,
		FrontendURL: envOr("FRONTEND_URL", "http://localhost:5173"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		JWTSecret: envOr("SESSION_SECRET", "dev-secret"),

		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", false),
		LocalUser:       envOr("LOCAL_USER", "dev"),
		LocalPassHash:   os.Getenv("LOCAL_PASS_HASH"),

		EnableGoogleAuth:   envBool("ENABLE_GOOGLE_AUTH", true),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  envOr("GOOGLE_REDIRECT_URI", strings.TrimSuffix(pub, "/")+"/auth/google/callback"),

		EnableLLMScoring: envBool("USE_LLM_SCORING", true),
		LLMBaseURL:       envOr("HF_BASE_URL", "https://router.huggingface.co/v1"),
		LLMAPIKey:        os.Getenv("HF_TOKEN"),
		LLMModel:         envOr("HF_MODEL", "google/gemma-2-2b-it"),
		LLMTimeoutSec:    envInt("LLM_TIMEOUT_SECONDS", 20),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),

		DefaultWindowHours: envInt("DEFAULT_WINDOW_HOURS", 24),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
