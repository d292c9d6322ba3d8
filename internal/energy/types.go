package energy

import "time"

// EventType is the closed category set for calendar events.
type EventType string

const (
	TypeMeeting  EventType = "meeting"
	TypeOneOnOne EventType = "one_on_one"
	TypeSocial   EventType = "social"
	TypeCall     EventType = "call"
	TypeAsync    EventType = "async"
	TypeSolo     EventType = "solo"
	TypeCustom   EventType = "custom"
)

// KnownEventType reports whether t is a member of the closed set.
func KnownEventType(t EventType) bool {
	switch t {
	case TypeMeeting, TypeOneOnOne, TypeSocial, TypeCall, TypeAsync, TypeSolo, TypeCustom:
		return true
	}
	return false
}

// Role is the participant's part in the event.
type Role string

const (
	RoleLead        Role = "lead"
	RoleParticipant Role = "participant"
	RoleListening   Role = "listening"
)

// Control captures whether attendance is discretionary.
type Control string

const (
	ControlOptional  Control = "optional"
	ControlMandatory Control = "mandatory"
)

// Environment is the stimulation level of the setting.
type Environment string

const (
	EnvLowStim  Environment = "low_stim"
	EnvMedStim  Environment = "med_stim"
	EnvHighStim Environment = "high_stim"
)

// ImpactLabel buckets |impact score| into a coarse intensity.
type ImpactLabel string

const (
	LabelLow     ImpactLabel = "Low"
	LabelMedium  ImpactLabel = "Medium"
	LabelHigh    ImpactLabel = "High"
	LabelExtreme ImpactLabel = "Extreme"
)

// KnownImpactLabel reports whether l is a member of the fixed label set.
func KnownImpactLabel(l ImpactLabel) bool {
	switch l {
	case LabelLow, LabelMedium, LabelHigh, LabelExtreme:
		return true
	}
	return false
}

// ScoringModifiers qualify how an event is experienced. Every field has a
// stated default so a minimally specified event still scores; construct
// with DefaultModifiers and override fields as needed.
type ScoringModifiers struct {
	Role        Role        `json:"role"`
	Control     Control     `json:"control"`
	Environment Environment `json:"environment"`
	// Familiarity with other attendees: 0.0 = strangers, 1.0 = trusted.
	Familiarity float64 `json:"familiarity"`
	BackToBack  bool    `json:"back_to_back"`
}

// DefaultModifiers returns the documented defaults: participant,
// mandatory, medium stimulation, familiarity 0.5, not back-to-back.
func DefaultModifiers() ScoringModifiers {
	return ScoringModifiers{
		Role:        RoleParticipant,
		Control:     ControlMandatory,
		Environment: EnvMedStim,
		Familiarity: 0.5,
		BackToBack:  false,
	}
}

// NormalizedEvent is the scoring engine's view of a calendar event,
// produced by the caller from either a locally created event or a
// synced external one. Treated as immutable once constructed.
type NormalizedEvent struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Start             time.Time        `json:"start"`
	End               time.Time        `json:"end"`
	EventType         EventType        `json:"event_type"`
	AttendeeCount     int              `json:"attendee_count"`
	HasVideo          bool             `json:"has_video"`
	HasConferenceLink bool             `json:"has_conference_link"`
	UserOverrideType  EventType        `json:"user_override_type,omitempty"`
	Modifiers         ScoringModifiers `json:"modifiers"`
}

// EffectiveType is the user-chosen override if present, else the
// declared type.
func (e NormalizedEvent) EffectiveType() EventType {
	if e.UserOverrideType != "" {
		return e.UserOverrideType
	}
	return e.EventType
}

// ScoreResult is the engine's output. Negative scores drain energy,
// positive scores recharge. Reasons are advisory text only.
type ScoreResult struct {
	ImpactScore float64     `json:"impact_score"`
	ImpactLabel ImpactLabel `json:"impact_label"`
	Reasons     []string    `json:"reasons"`
}

// Profile is a user's derived personality profile.
type Profile struct {
	TraitScore int    `json:"personality_score"`
	Label      string `json:"label"`
	RawScore   int    `json:"raw_score"`
}
