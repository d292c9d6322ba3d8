package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/db"
	"github.com/jayvenma/SocialBatteryForecaster/internal/profile"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:api_"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func authedRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := authmw.WithIdentity(r.Context(), authmw.Identity{
		Sub: "google|123", Email: "t@example.com", Name: "Tester",
	})
	return r.WithContext(ctx)
}

func TestOnboardingDerivesAndStoresProfile(t *testing.T) {
	dbh := openTestDB(t)
	profiles := profile.NewStore(dbh)
	h := OnboardingHandler(profiles, nil)

	w := httptest.NewRecorder()
	h(w, authedRequest(http.MethodPost, "/api/onboarding",
		`{"answers":[3,3,3,3,3,3,3,3,3,3,3,3,3,3,3]}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var got struct {
		PersonalityScore int    `json:"personality_score"`
		Label            string `json:"label"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PersonalityScore != 50 || got.Label != "Omnivert" {
		t.Errorf("profile = %+v", got)
	}

	stored, err := profiles.Get(context.Background(), "google|123")
	if err != nil {
		t.Fatalf("stored profile: %v", err)
	}
	if stored.TraitScore != 50 {
		t.Errorf("stored trait = %d", stored.TraitScore)
	}
}

func TestOnboardingRejectsBadInput(t *testing.T) {
	dbh := openTestDB(t)
	h := OnboardingHandler(profile.NewStore(dbh), nil)

	cases := []struct {
		name string
		body string
	}{
		{"no body", ``},
		{"missing answers", `{}`},
		{"too few", `{"answers":[3,3,3]}`},
		{"out of range", `{"answers":[3,3,3,3,3,3,3,6,3,3,3,3,3,3,3]}`},
		{"non-integer", `{"answers":[3,3,3,3,3,3,3,3.5,3,3,3,3,3,3,3]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h(w, authedRequest(http.MethodPost, "/api/onboarding", tc.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestOnboardingEmptyAnswersClearsProfile(t *testing.T) {
	dbh := openTestDB(t)
	profiles := profile.NewStore(dbh)
	h := OnboardingHandler(profiles, nil)

	w := httptest.NewRecorder()
	h(w, authedRequest(http.MethodPost, "/api/onboarding",
		`{"answers":[5,5,5,5,5,5,5,5,5,5,5,5,5,5,5]}`))
	if w.Code != http.StatusOK {
		t.Fatalf("seed status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h(w, authedRequest(http.MethodPost, "/api/onboarding", `{"answers":[]}`))
	if w.Code != http.StatusOK {
		t.Fatalf("clear status = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := profiles.Get(context.Background(), "google|123"); err == nil {
		t.Error("profile should be gone after clearing")
	}
}
