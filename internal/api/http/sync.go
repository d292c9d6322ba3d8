package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/auth"
	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/event"
)

// POST /api/google/sync?hours=24 — pull the user's calendar into the
// store and score the window.
func GoogleSyncHandler(svc *event.Service, source event.CalendarSource, defaultHours int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		hours := hoursParam(r, defaultHours)

		synced, err := svc.Sync(r.Context(), userID, source, time.Duration(hours)*time.Hour)
		if err != nil {
			if errors.Is(err, auth.ErrNoToken) {
				writeError(w, http.StatusUnauthorized, "Not connected to Google, go to /auth/google/login")
				return
			}
			writeError(w, http.StatusBadGateway, "calendar sync failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"synced":       synced,
			"window_hours": hours,
		})
	}
}
