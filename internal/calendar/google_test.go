package calendar_test

import (
	"testing"

	"github.com/jayvenma/SocialBatteryForecaster/internal/calendar"
	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
)

func TestInferEventType(t *testing.T) {
	tests := []struct {
		name      string
		attendees int
		summary   string
		hasConf   bool
		want      energy.EventType
	}{
		{"conference link", 5, "Planning", true, energy.TypeCall},
		{"zoom keyword", 0, "Zoom with team", false, energy.TypeCall},
		{"teams keyword", 3, "Weekly Teams standup", false, energy.TypeCall},
		{"no attendees", 0, "Focus block", false, energy.TypeSolo},
		{"one attendee", 1, "Coffee", false, energy.TypeOneOnOne},
		{"several attendees", 4, "Sprint review", false, energy.TypeMeeting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calendar.InferEventType(tt.attendees, tt.summary, tt.hasConf)
			if got != tt.want {
				t.Errorf("InferEventType(%d, %q, %v) = %q, want %q",
					tt.attendees, tt.summary, tt.hasConf, got, tt.want)
			}
		})
	}
}
