package energy

import (
	"fmt"
	"math"
	"time"
)

// Base energy cost per event type (negative = drain, positive = recharge).
func baseCost(t EventType) float64 {
	switch t {
	case TypeMeeting:
		return -10.0
	case TypeOneOnOne:
		return -6.0
	case TypeSocial:
		return -8.0
	case TypeCall:
		return -7.0
	case TypeAsync:
		return -2.0
	case TypeSolo:
		return +6.0
	case TypeCustom:
		return -5.0
	default:
		// Unrecognized types fail closed to a moderate drain; scoring
		// must always produce a result.
		return -6.0
	}
}

// MinutesBetween returns whole minutes from a to b, never negative.
func MinutesBetween(a, b time.Time) int {
	m := int(b.Sub(a) / time.Minute)
	if m < 0 {
		return 0
	}
	return m
}

// LabelForImpact buckets |impact| into the fixed intensity set. Sign
// lives in the score itself.
func LabelForImpact(impact float64) ImpactLabel {
	mag := math.Abs(impact)
	switch {
	case mag >= 12:
		return LabelExtreme
	case mag >= 6:
		return LabelHigh
	case mag >= 2:
		return LabelMedium
	default:
		return LabelLow
	}
}

func roleFactor(r Role) float64 {
	switch r {
	case RoleLead:
		return 1.25
	case RoleListening:
		return 0.85
	case RoleParticipant:
		return 1.0
	default:
		return 1.0
	}
}

func controlFactor(c Control) float64 {
	if c == ControlOptional {
		return 0.85
	}
	return 1.0
}

func environmentFactor(e Environment) float64 {
	switch e {
	case EnvLowStim:
		return 0.8
	case EnvHighStim:
		return 1.25
	case EnvMedStim:
		return 1.0
	default:
		return 1.0
	}
}

// ScoreEvent computes the signed energy impact of an event for a user
// with the given 0-100 trait score. Pure and deterministic: identical
// inputs always yield bit-identical output, so callers may cache freely.
func ScoreEvent(event NormalizedEvent, traitScore int) ScoreResult {
	etype := event.EffectiveType()
	base := baseCost(etype)

	durationMin := MinutesBetween(event.Start, event.End)
	durationFactor := 1.0 + 0.4*(float64(durationMin)/60.0)

	b2bFactor := 1.0
	if event.Modifiers.BackToBack {
		b2bFactor = 1.3
	}

	familiarityFactor := 1.0 - 0.25*event.Modifiers.Familiarity

	videoFactor := 1.0
	if event.HasVideo {
		videoFactor = 1.15
	}

	pMult := math.Max(0.6, PersonalityMultiplier(traitScore))

	// Multiply in a fixed order so results stay bit-reproducible.
	raw := base *
		durationFactor *
		b2bFactor *
		roleFactor(event.Modifiers.Role) *
		familiarityFactor *
		controlFactor(event.Modifiers.Control) *
		environmentFactor(event.Modifiers.Environment) *
		videoFactor *
		pMult

	impact := math.Round(raw*100) / 100

	// Snap tiny magnitudes to a clean +0.0 so "-0.0" never escapes.
	if math.Abs(impact) < 0.5 {
		impact = 0.0
	}

	reasons := make([]string, 0, 5)
	reasons = append(reasons, fmt.Sprintf("Base %s cost", etype))
	if durationMin > 30 {
		reasons = append(reasons, "Long duration increases intensity")
	}
	if event.Modifiers.BackToBack {
		reasons = append(reasons, "Back-to-back fatigue")
	}
	if event.HasVideo {
		reasons = append(reasons, "Video fatigue")
	}
	reasons = append(reasons, "Personality factor applied")

	return ScoreResult{
		ImpactScore: impact,
		ImpactLabel: LabelForImpact(impact),
		Reasons:     reasons,
	}
}
