package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
	"github.com/jayvenma/SocialBatteryForecaster/internal/event"
)

// PUT /api/events/google_overrides/{eventID} — per-user corrections on
// a synced Google event; forces a rescore.
func GoogleOverridesHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		eventID := chi.URLParam(r, "eventID")

		var req struct {
			EventType         *string `json:"event_type"`
			AttendeeCount     *int    `json:"attendee_count"`
			HasVideo          *bool   `json:"has_video"`
			HasConferenceLink *bool   `json:"has_conference_link"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		var ov event.Override
		if req.EventType != nil {
			t := energy.EventType(*req.EventType)
			ov.EventType = &t
		}
		ov.AttendeeCount = req.AttendeeCount
		ov.HasVideo = req.HasVideo
		ov.HasConferenceLink = req.HasConferenceLink

		merged, err := svc.SetOverride(r.Context(), userID, eventID, ov)
		if err != nil {
			switch {
			case errors.Is(err, event.ErrNotFound):
				writeError(w, http.StatusNotFound, "Event not found")
			case errors.Is(err, event.ErrNotGoogleEvent), errors.Is(err, event.ErrBadEventType):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "store override")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "event": toEventView(merged)})
	}
}
