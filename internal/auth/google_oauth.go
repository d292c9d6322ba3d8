package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/config"
)

const stateCookie = "sbf_oauth_state"

// GoogleOAuthConfig builds the x/oauth2 config for the Google login and
// calendar scopes.
func GoogleOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/calendar.readonly",
			"https://www.googleapis.com/auth/calendar.events",
		},
	}
}

// /auth/google/login → redirect to Google OAuth
func GoogleLoginHandler(oc *oauth2.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := fmt.Sprintf("s-%d", time.Now().UnixNano())
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(10 * time.Minute),
		})
		authURL := oc.AuthCodeURL(state,
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("include_granted_scopes", "true"),
			oauth2.SetAuthURLParam("prompt", "consent"),
		)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// /auth/google/callback → exchange code, verify id_token, persist the
// Google token, mint internal JWT, set session cookie.
func GoogleCallbackHandler(a *authmw.AuthService, oc *oauth2.Config, tokens *TokenStore, cfg config.Config) http.HandlerFunc {
	type tokenInfo struct {
		Iss           string `json:"iss"`
		Aud           string `json:"aud"`
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Exp           string `json:"exp"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		if state == "" {
			http.Error(w, "missing state", http.StatusBadRequest)
			return
		}
		if c, err := r.Cookie(stateCookie); err != nil || c.Value != state {
			http.Error(w, "state mismatch; try /auth/google/login again", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		tok, err := oc.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "token exchange error", http.StatusBadGateway)
			return
		}
		rawID, _ := tok.Extra("id_token").(string)
		if rawID == "" {
			http.Error(w, "no id_token in token response", http.StatusBadGateway)
			return
		}

		// Verify id_token via Google tokeninfo (simple server-side verification).
		tiResp, err := http.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(rawID))
		if err != nil {
			http.Error(w, "tokeninfo fetch error", http.StatusBadGateway)
			return
		}
		defer tiResp.Body.Close()
		var ti tokenInfo
		if err := json.NewDecoder(tiResp.Body).Decode(&ti); err != nil {
			http.Error(w, "tokeninfo parse error", http.StatusBadGateway)
			return
		}
		if ti.Aud != oc.ClientID {
			http.Error(w, "invalid aud", http.StatusUnauthorized)
			return
		}
		if ti.Iss != "accounts.google.com" && ti.Iss != "https://accounts.google.com" {
			http.Error(w, "invalid iss", http.StatusUnauthorized)
			return
		}
		if ti.Sub == "" {
			http.Error(w, "no subject", http.StatusUnauthorized)
			return
		}

		userID := "google|" + ti.Sub
		if err := tokens.Save(r.Context(), userID, tok); err != nil {
			http.Error(w, "store credentials", http.StatusInternalServerError)
			return
		}

		jwtTok, err := a.IssueJWT(userID, ti.Email, ti.Name)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		authmw.SetSessionCookie(w, jwtTok)

		// Clean up the state cookie.
		http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})

		http.Redirect(w, r, cfg.FrontendURL, http.StatusFound)
	}
}

// /auth/status → { "connected": bool }, tolerating anonymous callers.
func StatusHandler(a *authmw.AuthService, tokens *TokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connected := false
		if c, err := r.Cookie(authmw.SessionCookie); err == nil {
			if claims, err := a.Parse(c.Value); err == nil && claims != nil {
				if _, err := tokens.Get(r.Context(), claims.Sub); err == nil {
					connected = true
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"connected": connected})
	}
}

// /auth/logout → drop session and stored Google credentials.
func LogoutHandler(a *authmw.AuthService, tokens *TokenStore, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(authmw.SessionCookie); err == nil {
			if claims, err := a.Parse(c.Value); err == nil && claims != nil {
				_ = tokens.Delete(r.Context(), claims.Sub)
			}
		}
		authmw.ClearSessionCookie(w)
		http.Redirect(w, r, cfg.FrontendURL, http.StatusFound)
	}
}
