package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
	"github.com/jayvenma/SocialBatteryForecaster/internal/event"
)

// GET /api/events?hours=24
func ListEventsHandler(svc *event.Service, defaultHours int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		hours := hoursParam(r, defaultHours)

		events, err := svc.List(r.Context(), userID, time.Duration(hours)*time.Hour)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list events")
			return
		}
		views := make([]eventView, 0, len(events))
		for _, ev := range events {
			views = append(views, toEventView(ev))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":        len(views),
			"window_hours": hours,
			"events":       views,
		})
	}
}

type eventRequest struct {
	ID                string                   `json:"id"`
	Title             string                   `json:"title"`
	Start             string                   `json:"start"`
	End               string                   `json:"end"`
	EventType         string                   `json:"event_type"`
	AttendeeCount     *int                     `json:"attendee_count"`
	HasVideo          *bool                    `json:"has_video"`
	HasConferenceLink *bool                    `json:"has_conference_link"`
	Modifiers         *energy.ScoringModifiers `json:"modifiers"`
}

// POST /api/events — create a local event and score it immediately.
func CreateEventHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())

		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Start == "" || req.End == "" {
			writeError(w, http.StatusBadRequest, "start and end are required (RFC3339 datetime strings)")
			return
		}
		start, err1 := parseTimestamp(req.Start)
		end, err2 := parseTimestamp(req.End)
		if err1 != nil || err2 != nil {
			writeError(w, http.StatusBadRequest, "start/end must be RFC3339 datetimes")
			return
		}

		ev := event.Event{
			ID:        req.ID,
			UserID:    userID,
			Title:     req.Title,
			Start:     start,
			End:       end,
			EventType: energy.TypeMeeting,
			Modifiers: req.Modifiers,
		}
		if ev.Title == "" {
			ev.Title = "New Event"
		}
		if req.EventType != "" {
			ev.EventType = energy.EventType(req.EventType)
		}
		if req.AttendeeCount != nil && *req.AttendeeCount > 0 {
			ev.AttendeeCount = *req.AttendeeCount
		}
		if req.HasVideo != nil {
			ev.HasVideo = *req.HasVideo
		}
		if req.HasConferenceLink != nil {
			ev.HasConferenceLink = *req.HasConferenceLink
		}

		scored, err := svc.CreateLocal(r.Context(), ev)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "create event")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event": toEventView(scored)})
	}
}

// PUT /api/events/{eventID} — patch fields, clearing and refreshing the score.
func UpdateEventHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		eventID := chi.URLParam(r, "eventID")

		cur, err := svc.Get(r.Context(), userID, eventID)
		if err != nil {
			if errors.Is(err, event.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Event not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "load event")
			return
		}

		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Title != "" {
			cur.Title = req.Title
		}
		if req.Start != "" {
			t, err := parseTimestamp(req.Start)
			if err != nil {
				writeError(w, http.StatusBadRequest, "start must be RFC3339")
				return
			}
			cur.Start = t
		}
		if req.End != "" {
			t, err := parseTimestamp(req.End)
			if err != nil {
				writeError(w, http.StatusBadRequest, "end must be RFC3339")
				return
			}
			cur.End = t
		}
		if req.EventType != "" {
			cur.EventType = energy.EventType(req.EventType)
		}
		if req.AttendeeCount != nil {
			n := *req.AttendeeCount
			if n < 0 {
				n = 0
			}
			cur.AttendeeCount = n
		}
		if req.HasVideo != nil {
			cur.HasVideo = *req.HasVideo
		}
		if req.HasConferenceLink != nil {
			cur.HasConferenceLink = *req.HasConferenceLink
		}
		if req.Modifiers != nil {
			cur.Modifiers = req.Modifiers
		}

		scored, err := svc.Update(r.Context(), cur)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "update event")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event": toEventView(scored)})
	}
}

// DELETE /api/events/{eventID}
func DeleteEventHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		eventID := chi.URLParam(r, "eventID")

		if err := svc.Delete(r.Context(), userID, eventID); err != nil {
			if errors.Is(err, event.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Event not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "delete event")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}
