package energy

import (
	"errors"
	"fmt"
)

// ErrValidation marks questionnaire input errors. Callers check with
// errors.Is and must not score against an invalid profile.
var ErrValidation = errors.New("invalid questionnaire input")

const questionCount = 15

// positiveKeyed holds the 1-indexed questionnaire items whose raw answer
// counts toward extroversion; all other items are reverse keyed (6 - a).
var positiveKeyed = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 8: true,
	10: true, 12: true, 14: true, 15: true,
}

// DeriveProfile converts 15 Likert answers (1-5) into a 0-100 trait
// score and a label. Pure; persisting the result is the caller's job.
func DeriveProfile(answers []int) (Profile, error) {
	if len(answers) != questionCount {
		return Profile{}, fmt.Errorf("%w: expected exactly %d answers, got %d", ErrValidation, questionCount, len(answers))
	}
	raw := 0
	for i, a := range answers {
		if a < 1 || a > 5 {
			return Profile{}, fmt.Errorf("%w: answer %d out of range [1,5]: %d", ErrValidation, i+1, a)
		}
		if positiveKeyed[i+1] {
			raw += a
		} else {
			raw += 6 - a
		}
	}

	// raw is in [15,75] by construction; map it onto [0,100].
	score := int(roundHalfAway(float64(raw-15) / 60.0 * 100.0))

	return Profile{
		TraitScore: score,
		Label:      ProfileLabel(score),
		RawScore:   raw,
	}, nil
}

// ProfileLabel buckets a trait score using the onboarding thresholds.
func ProfileLabel(score int) string {
	switch {
	case score < 34:
		return "Introvert"
	case score < 67:
		return "Omnivert"
	default:
		return "Extrovert"
	}
}

// PersonalityLabel is the older labeling scheme (<=39/<=60/>60). It
// disagrees with ProfileLabel near the boundaries; both are kept on
// purpose until one is signed off as canonical.
func PersonalityLabel(score int) string {
	switch {
	case score <= 39:
		return "Introvert"
	case score <= 60:
		return "Omnivert"
	default:
		return "Extrovert"
	}
}

// PersonalityMultiplier converts a 0-100 trait score into a drain
// multiplier: introverts drain faster (1.3 at 0), extroverts slower
// (0.7 at 100). Out-of-range scores are clamped first.
func PersonalityMultiplier(score int) float64 {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	t := float64(score) / 100.0
	return 1.3 + (0.7-1.3)*t
}

func roundHalfAway(x float64) float64 {
	if x < 0 {
		return float64(int(x - 0.5))
	}
	return float64(int(x + 0.5))
}
