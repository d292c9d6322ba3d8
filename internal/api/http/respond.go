package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
	"github.com/jayvenma/SocialBatteryForecaster/internal/event"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// hoursParam reads the ?hours= lookahead, defaulting when absent or junk.
func hoursParam(r *http.Request, def int) int {
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// parseTimestamp accepts RFC3339 with or without an offset; naive times
// are assumed UTC, matching how events are stored.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// eventView is the wire shape for a stored event plus its score.
type eventView struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Start             string             `json:"start"`
	End               string             `json:"end"`
	EventType         energy.EventType   `json:"event_type"`
	AttendeeCount     int                `json:"attendee_count"`
	HasVideo          bool               `json:"has_video"`
	HasConferenceLink bool               `json:"has_conference_link"`
	Source            string             `json:"source"`
	ImpactScore       *float64           `json:"impact_score,omitempty"`
	ImpactLabel       energy.ImpactLabel `json:"impact_label,omitempty"`
	Reasons           []string           `json:"reasons,omitempty"`
	ScoringSource     string             `json:"scoring_source,omitempty"`
}

func toEventView(ev event.Event) eventView {
	v := eventView{
		ID:                ev.ID,
		Title:             ev.Title,
		Start:             ev.Start.UTC().Format(time.RFC3339),
		End:               ev.End.UTC().Format(time.RFC3339),
		EventType:         ev.EventType,
		AttendeeCount:     ev.AttendeeCount,
		HasVideo:          ev.HasVideo,
		HasConferenceLink: ev.HasConferenceLink,
		Source:            ev.Source,
	}
	if ev.Score != nil {
		score := ev.Score.ImpactScore
		v.ImpactScore = &score
		v.ImpactLabel = ev.Score.ImpactLabel
		v.Reasons = ev.Score.Reasons
		v.ScoringSource = ev.Score.Source
	}
	return v
}
