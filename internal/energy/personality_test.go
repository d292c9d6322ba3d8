package energy_test

import (
	"errors"
	"testing"

	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
)

func answersOf(v int) []int {
	out := make([]int, 15)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDeriveProfileAllThrees(t *testing.T) {
	p, err := energy.DeriveProfile(answersOf(3))
	if err != nil {
		t.Fatalf("DeriveProfile: %v", err)
	}
	// 6-3=3 on reverse items too, so raw = 45 and trait = 50.
	if p.RawScore != 45 {
		t.Errorf("raw score = %d, want 45", p.RawScore)
	}
	if p.TraitScore != 50 {
		t.Errorf("trait score = %d, want 50", p.TraitScore)
	}
	if p.Label != "Omnivert" {
		t.Errorf("label = %q, want Omnivert", p.Label)
	}
}

func TestDeriveProfileBounds(t *testing.T) {
	tests := []struct {
		name    string
		answers []int
		trait   int
		label   string
	}{
		// All 1s: positive items contribute 1, reverse contribute 5.
		// raw = 9*1 + 6*5 = 39 -> round(40) = 40.
		{"all ones", answersOf(1), 40, "Omnivert"},
		// All 5s: raw = 9*5 + 6*1 = 51 -> 60.
		{"all fives", answersOf(5), 60, "Omnivert"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := energy.DeriveProfile(tt.answers)
			if err != nil {
				t.Fatalf("DeriveProfile: %v", err)
			}
			if p.TraitScore != tt.trait {
				t.Errorf("trait = %d, want %d", p.TraitScore, tt.trait)
			}
			if p.Label != tt.label {
				t.Errorf("label = %q, want %q", p.Label, tt.label)
			}
			if p.TraitScore < 0 || p.TraitScore > 100 {
				t.Errorf("trait %d outside [0,100]", p.TraitScore)
			}
		})
	}
}

func TestDeriveProfileValidation(t *testing.T) {
	tests := []struct {
		name    string
		answers []int
	}{
		{"too short", answersOf(3)[:14]},
		{"too long", append(answersOf(3), 3)},
		{"empty", nil},
		{"below range", append(answersOf(3)[:14], 0)},
		{"above range", append(answersOf(3)[:14], 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := energy.DeriveProfile(tt.answers)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, energy.ErrValidation) {
				t.Errorf("error %v is not ErrValidation", err)
			}
		})
	}
}

func TestProfileLabelThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "Introvert"},
		{33, "Introvert"},
		{34, "Omnivert"},
		{66, "Omnivert"},
		{67, "Extrovert"},
		{100, "Extrovert"},
	}
	for _, tt := range tests {
		if got := energy.ProfileLabel(tt.score); got != tt.want {
			t.Errorf("ProfileLabel(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

// The legacy scheme disagrees with ProfileLabel between 34-39 and 61-66;
// both are kept distinct until one is made canonical.
func TestPersonalityLabelLegacyThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{39, "Introvert"},
		{40, "Omnivert"},
		{60, "Omnivert"},
		{61, "Extrovert"},
	}
	for _, tt := range tests {
		if got := energy.PersonalityLabel(tt.score); got != tt.want {
			t.Errorf("PersonalityLabel(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
	if energy.PersonalityLabel(35) == energy.ProfileLabel(35) {
		t.Error("expected the two labeling schemes to disagree at 35")
	}
}

func TestPersonalityMultiplier(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{0, 1.3},
		{50, 1.0},
		{100, 0.7},
		{-20, 1.3},  // clamped
		{140, 0.7},  // clamped
		{30, 1.12},
	}
	for _, tt := range tests {
		got := energy.PersonalityMultiplier(tt.score)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("PersonalityMultiplier(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
