package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/jayvenma/SocialBatteryForecaster/internal/api/http"
	"github.com/jayvenma/SocialBatteryForecaster/internal/audit"
	"github.com/jayvenma/SocialBatteryForecaster/internal/auth"
	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/calendar"
	"github.com/jayvenma/SocialBatteryForecaster/internal/config"
	"github.com/jayvenma/SocialBatteryForecaster/internal/db"
	"github.com/jayvenma/SocialBatteryForecaster/internal/event"
	"github.com/jayvenma/SocialBatteryForecaster/internal/llm"
	"github.com/jayvenma/SocialBatteryForecaster/internal/profile"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded .env")
	}
	cfg := config.FromEnv()

	if cfg.EnableGoogleAuth && (cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "") {
		log.Fatal("missing GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET")
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Stores + services ---
	authSvc := authmw.NewAuthService(cfg.JWTSecret)
	tokens := auth.NewTokenStore(dbh)
	profiles := profile.NewStore(dbh)
	activity := audit.NewLog(dbh)
	eventStore := event.NewSQLStore(dbh)

	var remote event.RemoteScorer
	if cfg.EnableLLMScoring && cfg.LLMAPIKey != "" {
		remote = llm.NewScorer(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel,
			time.Duration(cfg.LLMTimeoutSec)*time.Second)
		log.Printf("llm scoring enabled (model=%s)", cfg.LLMModel)
	} else {
		log.Printf("llm scoring disabled; using deterministic engine")
	}
	events := event.NewService(eventStore, profiles, remote, cfg.LLMModel, activity)

	oauthCfg := auth.GoogleOAuthConfig(cfg)
	gcal := calendar.NewClient(oauthCfg, tokens)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", api.HealthHandler(cfg))

	// Auth surface
	if cfg.EnableGoogleAuth {
		r.Get("/auth/google/login", auth.GoogleLoginHandler(oauthCfg))
		r.Get("/auth/google/callback", auth.GoogleCallbackHandler(authSvc, oauthCfg, tokens, cfg))
	}
	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LocalLoginHandler(authSvc, cfg))
	}
	r.Get("/auth/status", auth.StatusHandler(authSvc, tokens))
	r.Get("/auth/logout", auth.LogoutHandler(authSvc, tokens, cfg))

	// Protected API
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		pr.Get("/api/me", api.MeHandler(profiles))
		pr.Post("/api/onboarding", api.OnboardingHandler(profiles, activity))

		pr.Get("/api/events", api.ListEventsHandler(events, cfg.DefaultWindowHours))
		pr.Post("/api/events", api.CreateEventHandler(events))
		pr.Put("/api/events/google_overrides/{eventID}", api.GoogleOverridesHandler(events))
		pr.Put("/api/events/{eventID}", api.UpdateEventHandler(events))
		pr.Delete("/api/events/{eventID}", api.DeleteEventHandler(events))

		pr.Post("/api/google/sync", api.GoogleSyncHandler(events, gcal, cfg.DefaultWindowHours))
		pr.Get("/api/calendar/events", api.CalendarEventsHandler(gcal, profiles, cfg.DefaultWindowHours))

		pr.Get("/api/activity", api.ActivityHandler(activity))
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
