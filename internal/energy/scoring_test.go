package energy_test

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
)

func eventAt(etype energy.EventType, minutes int) energy.NormalizedEvent {
	start := time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC)
	return energy.NormalizedEvent{
		ID:        "evt-1",
		Title:     "Test Event",
		Start:     start,
		End:       start.Add(time.Duration(minutes) * time.Minute),
		EventType: etype,
		Modifiers: energy.DefaultModifiers(),
	}
}

func TestScoreMeetingHourIntrovertLean(t *testing.T) {
	// -10 * 1.4 (60 min) * 0.875 (familiarity 0.5) * 1.12 (trait 30).
	res := energy.ScoreEvent(eventAt(energy.TypeMeeting, 60), 30)
	if res.ImpactScore != -13.72 {
		t.Errorf("impact = %v, want -13.72", res.ImpactScore)
	}
	if res.ImpactLabel != energy.LabelExtreme {
		t.Errorf("label = %q, want Extreme", res.ImpactLabel)
	}
}

func TestScoreSoloRecharges(t *testing.T) {
	// +6 * 1.0 (0 min) * 0.875 * 1.0 (trait 50) = +5.25.
	res := energy.ScoreEvent(eventAt(energy.TypeSolo, 0), 50)
	if res.ImpactScore != 5.25 {
		t.Errorf("impact = %v, want 5.25", res.ImpactScore)
	}
	if res.ImpactLabel != energy.LabelMedium {
		t.Errorf("label = %q, want Medium", res.ImpactLabel)
	}
}

func TestScoreUnknownTypeFailsClosed(t *testing.T) {
	res := energy.ScoreEvent(eventAt(energy.EventType("ritual"), 0), 50)
	// Unknown types take the -6 fallback cost, never an error.
	if res.ImpactScore >= 0 {
		t.Errorf("impact = %v, want a drain", res.ImpactScore)
	}
	if !energy.KnownImpactLabel(res.ImpactLabel) {
		t.Errorf("label %q outside fixed set", res.ImpactLabel)
	}
}

func TestScoreUserOverrideType(t *testing.T) {
	ev := eventAt(energy.TypeMeeting, 60)
	ev.UserOverrideType = energy.TypeSolo
	res := energy.ScoreEvent(ev, 50)
	if res.ImpactScore <= 0 {
		t.Errorf("impact = %v, want recharge from solo override", res.ImpactScore)
	}
	if !strings.Contains(res.Reasons[0], "solo") {
		t.Errorf("first reason %q should name the effective type", res.Reasons[0])
	}
}

func TestScoreNegativeDurationClampsToZero(t *testing.T) {
	ev := eventAt(energy.TypeSolo, 0)
	ev.End = ev.Start.Add(-45 * time.Minute)
	res := energy.ScoreEvent(ev, 50)
	if res.ImpactScore != 5.25 {
		t.Errorf("impact = %v, want 5.25 (duration clamped to 0)", res.ImpactScore)
	}
}

func TestScoreModifierFactors(t *testing.T) {
	base := energy.ScoreEvent(eventAt(energy.TypeMeeting, 60), 50)

	tests := []struct {
		name   string
		mutate func(*energy.NormalizedEvent)
		// drain grows (more negative) or shrinks relative to base
		grows bool
	}{
		{"back-to-back", func(e *energy.NormalizedEvent) { e.Modifiers.BackToBack = true }, true},
		{"lead role", func(e *energy.NormalizedEvent) { e.Modifiers.Role = energy.RoleLead }, true},
		{"listening role", func(e *energy.NormalizedEvent) { e.Modifiers.Role = energy.RoleListening }, false},
		{"trusted company", func(e *energy.NormalizedEvent) { e.Modifiers.Familiarity = 1.0 }, false},
		{"optional", func(e *energy.NormalizedEvent) { e.Modifiers.Control = energy.ControlOptional }, false},
		{"low stimulation", func(e *energy.NormalizedEvent) { e.Modifiers.Environment = energy.EnvLowStim }, false},
		{"high stimulation", func(e *energy.NormalizedEvent) { e.Modifiers.Environment = energy.EnvHighStim }, true},
		{"video", func(e *energy.NormalizedEvent) { e.HasVideo = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := eventAt(energy.TypeMeeting, 60)
			tt.mutate(&ev)
			got := energy.ScoreEvent(ev, 50)
			if tt.grows && math.Abs(got.ImpactScore) <= math.Abs(base.ImpactScore) {
				t.Errorf("|%v| should exceed |%v|", got.ImpactScore, base.ImpactScore)
			}
			if !tt.grows && math.Abs(got.ImpactScore) >= math.Abs(base.ImpactScore) {
				t.Errorf("|%v| should be below |%v|", got.ImpactScore, base.ImpactScore)
			}
		})
	}
}

func TestScoreTraitMonotonicity(t *testing.T) {
	// A draining event should hurt strictly less as the trait score rises.
	prev := math.Inf(1)
	for score := 0; score <= 100; score += 10 {
		res := energy.ScoreEvent(eventAt(energy.TypeMeeting, 60), score)
		mag := math.Abs(res.ImpactScore)
		if mag >= prev {
			t.Fatalf("magnitude %v at trait %d not below %v", mag, score, prev)
		}
		prev = mag
	}
}

func TestScoreIdempotent(t *testing.T) {
	ev := eventAt(energy.TypeCall, 45)
	ev.HasVideo = true
	ev.Modifiers.BackToBack = true
	a := energy.ScoreEvent(ev, 72)
	b := energy.ScoreEvent(ev, 72)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced %+v and %+v", a, b)
	}
}

func TestScoreTinyMagnitudeSnapsToZero(t *testing.T) {
	// A hostile familiarity value shrinks the product under the noise
	// threshold; the engine must emit a clean +0.0, never "-0.0".
	ev := eventAt(energy.TypeAsync, 0)
	ev.Modifiers.Familiarity = 4.0 // factor 1 - 0.25*4 = 0
	res := energy.ScoreEvent(ev, 50)
	if res.ImpactScore != 0 {
		t.Fatalf("impact = %v, want 0", res.ImpactScore)
	}
	if math.Signbit(res.ImpactScore) {
		t.Error("impact is negative zero")
	}
	if res.ImpactLabel != energy.LabelLow {
		t.Errorf("label = %q, want Low", res.ImpactLabel)
	}
}

func TestScoreReasonsOrder(t *testing.T) {
	ev := eventAt(energy.TypeMeeting, 90)
	ev.HasVideo = true
	ev.Modifiers.BackToBack = true
	res := energy.ScoreEvent(ev, 50)
	want := []string{
		"Base meeting cost",
		"Long duration increases intensity",
		"Back-to-back fatigue",
		"Video fatigue",
		"Personality factor applied",
	}
	if !reflect.DeepEqual(res.Reasons, want) {
		t.Errorf("reasons = %v, want %v", res.Reasons, want)
	}
}

func TestLabelBoundaries(t *testing.T) {
	tests := []struct {
		impact float64
		want   energy.ImpactLabel
	}{
		{0, energy.LabelLow},
		{-1.99, energy.LabelLow},
		{2, energy.LabelMedium},
		{-5.99, energy.LabelMedium},
		{6, energy.LabelHigh},
		{-11.99, energy.LabelHigh},
		{12, energy.LabelExtreme},
		{-40, energy.LabelExtreme},
	}
	for _, tt := range tests {
		if got := energy.LabelForImpact(tt.impact); got != tt.want {
			t.Errorf("LabelForImpact(%v) = %q, want %q", tt.impact, got, tt.want)
		}
	}
}
