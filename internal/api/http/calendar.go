package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/auth"
	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
	"github.com/jayvenma/SocialBatteryForecaster/internal/event"
	"github.com/jayvenma/SocialBatteryForecaster/internal/profile"
)

// GET /api/calendar/events?hours=24 — legacy stateless passthrough:
// fetch, normalize, and score with the deterministic engine only,
// persisting nothing.
func CalendarEventsHandler(source event.CalendarSource, profiles *profile.Store, defaultHours int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		hours := hoursParam(r, defaultHours)

		now := time.Now().UTC()
		items, err := source.FetchWindow(r.Context(), userID, now, now.Add(time.Duration(hours)*time.Hour))
		if err != nil {
			if errors.Is(err, auth.ErrNoToken) {
				writeError(w, http.StatusUnauthorized, "Not connected to Google, go to /auth/google/login")
				return
			}
			writeError(w, http.StatusBadGateway, "calendar fetch failed")
			return
		}

		traitScore := profiles.TraitScoreOrDefault(r.Context(), userID)

		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			ne := energy.NormalizedEvent{
				ID:                it.ID,
				Title:             it.Title,
				Start:             it.Start,
				End:               it.End,
				EventType:         it.EventType,
				AttendeeCount:     it.AttendeeCount,
				HasVideo:          it.HasConferenceLink,
				HasConferenceLink: it.HasConferenceLink,
				Modifiers:         energy.DefaultModifiers(),
			}
			res := energy.ScoreEvent(ne, traitScore)
			out = append(out, map[string]any{
				"id":           ne.ID,
				"title":        ne.Title,
				"start":        ne.Start.Format(time.RFC3339),
				"end":          ne.End.Format(time.RFC3339),
				"event_type":   ne.EventType,
				"impact_score": res.ImpactScore,
				"impact_label": res.ImpactLabel,
				"reasons":      res.Reasons,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":        len(out),
			"window_hours": hours,
			"events":       out,
		})
	}
}
