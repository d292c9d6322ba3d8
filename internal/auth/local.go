package auth

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/config"
)

// POST /auth/login  { "username": "...", "password": "..." }
// Dev/offline login against a single bcrypt-hashed local account; mints
// the same session JWT as the Google flow, minus calendar access.
func LocalLoginHandler(a *authmw.AuthService, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.EnableLocalAuth || cfg.LocalPassHash == "" {
			http.Error(w, "local auth disabled", http.StatusForbidden)
			return
		}
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username != cfg.LocalUser ||
			bcrypt.CompareHashAndPassword([]byte(cfg.LocalPassHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT("local|"+req.Username, "", req.Username)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		authmw.SetSessionCookie(w, tok)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}
