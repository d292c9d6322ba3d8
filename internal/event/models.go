package event

import (
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
)

const (
	SourceLocal  = "local"
	SourceGoogle = "google"
)

// Event is a stored calendar event plus its cached score, if any.
type Event struct {
	ID                string
	UserID            string
	Source            string // local | google
	Title             string
	Start             time.Time
	End               time.Time
	EventType         energy.EventType
	AttendeeCount     int
	HasVideo          bool
	HasConferenceLink bool
	Modifiers         *energy.ScoringModifiers // nil means defaults
	UpdatedAt         time.Time

	Score *StoredScore
}

// StoredScore is the cached scoring result for an event.
type StoredScore struct {
	ImpactScore float64
	ImpactLabel energy.ImpactLabel
	Reasons     []string
	ScoredAt    time.Time
	Source      string // llm | local
	Model       string
}

// Override holds per-user corrections for a synced Google event. Nil
// fields leave the synced value untouched.
type Override struct {
	EventType         *energy.EventType
	AttendeeCount     *int
	HasVideo          *bool
	HasConferenceLink *bool
}

// IsZero reports whether no field is overridden.
func (o Override) IsZero() bool {
	return o.EventType == nil && o.AttendeeCount == nil && o.HasVideo == nil && o.HasConferenceLink == nil
}

// Apply returns a copy of ev with non-nil override fields applied.
// Local events pass through untouched by convention (overrides exist
// only for synced events the user can't edit at the source).
func (o Override) Apply(ev Event) Event {
	if o.EventType != nil {
		ev.EventType = *o.EventType
	}
	if o.AttendeeCount != nil {
		n := *o.AttendeeCount
		if n < 0 {
			n = 0
		}
		ev.AttendeeCount = n
	}
	if o.HasVideo != nil {
		ev.HasVideo = *o.HasVideo
	}
	if o.HasConferenceLink != nil {
		ev.HasConferenceLink = *o.HasConferenceLink
	}
	return ev
}

// Normalize produces the scoring engine's input from a (merged) event.
func Normalize(ev Event) energy.NormalizedEvent {
	mods := energy.DefaultModifiers()
	if ev.Modifiers != nil {
		mods = *ev.Modifiers
	}
	return energy.NormalizedEvent{
		ID:                ev.ID,
		Title:             ev.Title,
		Start:             ev.Start,
		End:               ev.End,
		EventType:         ev.EventType,
		AttendeeCount:     ev.AttendeeCount,
		HasVideo:          ev.HasVideo,
		HasConferenceLink: ev.HasConferenceLink,
		Modifiers:         mods,
	}
}

// NeedsRescore reports whether the cached score is missing or stale
// (event modified after it was last scored).
func NeedsRescore(ev Event) bool {
	if ev.Score == nil {
		return true
	}
	return ev.UpdatedAt.After(ev.Score.ScoredAt)
}
