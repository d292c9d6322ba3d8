package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jayvenma/SocialBatteryForecaster/internal/audit"
	"github.com/jayvenma/SocialBatteryForecaster/internal/calendar"
	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
	"github.com/jayvenma/SocialBatteryForecaster/internal/profile"
)

var (
	// ErrNotGoogleEvent guards the override path: local events are edited
	// directly, never overridden.
	ErrNotGoogleEvent = errors.New("overrides are only for google events")
	// ErrBadEventType rejects overrides outside the closed type set.
	ErrBadEventType = errors.New("invalid event_type")
)

// RemoteScorer is the LLM collaborator contract: produce a sanitized
// ScoreResult or fail. Fallback policy belongs to this service, not to
// the scorer.
type RemoteScorer interface {
	Score(ctx context.Context, ev energy.NormalizedEvent, prof energy.Profile) (energy.ScoreResult, error)
}

// CalendarSource supplies a user's upcoming external events.
type CalendarSource interface {
	FetchWindow(ctx context.Context, userID string, from, to time.Time) ([]calendar.Item, error)
}

// Service orchestrates event persistence and scoring: it decides when a
// cached score is stale, which scorer runs, and how remote failures fall
// back to the deterministic engine.
type Service struct {
	store       *SQLStore
	profiles    *profile.Store
	remote      RemoteScorer // nil disables LLM scoring
	remoteModel string
	activity    *audit.Log
}

func NewService(store *SQLStore, profiles *profile.Store, remote RemoteScorer, remoteModel string, activity *audit.Log) *Service {
	return &Service{
		store:       store,
		profiles:    profiles,
		remote:      remote,
		remoteModel: remoteModel,
		activity:    activity,
	}
}

func (s *Service) Store() *SQLStore { return s.store }

func (s *Service) profileFor(ctx context.Context, userID string) energy.Profile {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return energy.Profile{
			TraitScore: profile.DefaultTraitScore,
			Label:      energy.ProfileLabel(profile.DefaultTraitScore),
		}
	}
	return p
}

// score runs the remote scorer when configured and silently falls back
// to the deterministic engine on any failure.
func (s *Service) score(ctx context.Context, ne energy.NormalizedEvent, prof energy.Profile) StoredScore {
	now := time.Now().UTC()
	if s.remote != nil {
		res, err := s.remote.Score(ctx, ne, prof)
		if err == nil {
			return StoredScore{
				ImpactScore: res.ImpactScore,
				ImpactLabel: res.ImpactLabel,
				Reasons:     res.Reasons,
				ScoredAt:    now,
				Source:      "llm",
				Model:       s.remoteModel,
			}
		}
		log.Printf("llm scoring failed, falling back to local: %v", err)
	}
	res := energy.ScoreEvent(ne, prof.TraitScore)
	return StoredScore{
		ImpactScore: res.ImpactScore,
		ImpactLabel: res.ImpactLabel,
		Reasons:     res.Reasons,
		ScoredAt:    now,
		Source:      "local",
	}
}

// ensureScored returns the event with a fresh score, rescoring and
// persisting when the cache is missing or stale. The merged view (with
// overrides applied) is what gets scored; the cache lives on the row.
func (s *Service) ensureScored(ctx context.Context, raw Event, merged Event) (Event, error) {
	if !NeedsRescore(raw) {
		merged.Score = raw.Score
		return merged, nil
	}
	prof := s.profileFor(ctx, raw.UserID)
	sc := s.score(ctx, Normalize(merged), prof)
	if err := s.store.PersistScore(ctx, raw.UserID, raw.ID, sc); err != nil {
		return Event{}, fmt.Errorf("persist score: %w", err)
	}
	s.logActivity(ctx, raw.UserID, audit.TypeEventScored, raw.ID, map[string]any{
		"impact_score": sc.ImpactScore,
		"impact_label": sc.ImpactLabel,
		"source":       sc.Source,
	})
	merged.Score = &sc
	return merged, nil
}

func (s *Service) merged(ctx context.Context, ev Event) (Event, error) {
	if ev.Source != SourceGoogle {
		return ev, nil
	}
	ov, err := s.store.GetOverride(ctx, ev.UserID, ev.ID)
	if err != nil {
		return Event{}, err
	}
	return ov.Apply(ev), nil
}

// List returns the user's events in the lookahead window, each carrying
// a valid score.
func (s *Service) List(ctx context.Context, userID string, window time.Duration) ([]Event, error) {
	now := time.Now().UTC()
	rows, err := s.store.ListWindow(ctx, userID, now, now.Add(window))
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(rows))
	for _, raw := range rows {
		m, err := s.merged(ctx, raw)
		if err != nil {
			return nil, err
		}
		scored, err := s.ensureScored(ctx, raw, m)
		if err != nil {
			return nil, err
		}
		out = append(out, scored)
	}
	return out, nil
}

// CreateLocal stores a user-created event and scores it immediately.
func (s *Service) CreateLocal(ctx context.Context, ev Event) (Event, error) {
	if ev.ID == "" {
		ev.ID = "local_" + uuid.NewString()
	}
	ev.Source = SourceLocal
	ev.UpdatedAt = time.Now().UTC()
	if err := s.store.Create(ctx, ev); err != nil {
		return Event{}, err
	}
	raw, err := s.store.Get(ctx, ev.UserID, ev.ID)
	if err != nil {
		return Event{}, err
	}
	return s.ensureScored(ctx, raw, raw)
}

// Update rewrites an event and rescores it.
func (s *Service) Update(ctx context.Context, ev Event) (Event, error) {
	if err := s.store.Update(ctx, ev); err != nil {
		return Event{}, err
	}
	raw, err := s.store.Get(ctx, ev.UserID, ev.ID)
	if err != nil {
		return Event{}, err
	}
	m, err := s.merged(ctx, raw)
	if err != nil {
		return Event{}, err
	}
	return s.ensureScored(ctx, raw, m)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Event, error) {
	return s.store.Get(ctx, userID, id)
}

// SetOverride validates and stores per-user corrections for a Google
// event, forcing a rescore on the next read. Returns the merged view.
func (s *Service) SetOverride(ctx context.Context, userID, eventID string, ov Override) (Event, error) {
	raw, err := s.store.Get(ctx, userID, eventID)
	if err != nil {
		return Event{}, err
	}
	if raw.Source != SourceGoogle {
		return Event{}, ErrNotGoogleEvent
	}
	if ov.EventType != nil && !energy.KnownEventType(*ov.EventType) {
		return Event{}, fmt.Errorf("%w: %s", ErrBadEventType, *ov.EventType)
	}
	if err := s.store.UpsertOverride(ctx, userID, eventID, ov); err != nil {
		return Event{}, err
	}
	raw, err = s.store.Get(ctx, userID, eventID)
	if err != nil {
		return Event{}, err
	}
	return s.merged(ctx, raw)
}

// Sync pulls the user's Google calendar into the store and scores every
// event in the window that is missing a fresh score. Returns the number
// of upserted events.
func (s *Service) Sync(ctx context.Context, userID string, source CalendarSource, window time.Duration) (int, error) {
	now := time.Now().UTC()
	items, err := source.FetchWindow(ctx, userID, now, now.Add(window))
	if err != nil {
		return 0, err
	}
	upserted := 0
	for _, it := range items {
		err := s.store.UpsertSynced(ctx, Event{
			ID:                it.ID,
			UserID:            userID,
			Title:             it.Title,
			Start:             it.Start,
			End:               it.End,
			EventType:         it.EventType,
			AttendeeCount:     it.AttendeeCount,
			HasVideo:          it.HasConferenceLink,
			HasConferenceLink: it.HasConferenceLink,
			UpdatedAt:         now,
		})
		if err != nil {
			return upserted, fmt.Errorf("upsert %s: %w", it.ID, err)
		}
		upserted++
	}

	// Score everything in the window missing a fresh score.
	if _, err := s.List(ctx, userID, window); err != nil {
		return upserted, err
	}
	s.logActivity(ctx, userID, audit.TypeCalendarSynced, userID, map[string]any{
		"synced":       upserted,
		"window_hours": int(window.Hours()),
	})
	return upserted, nil
}

func (s *Service) logActivity(ctx context.Context, userID, typ, key string, data map[string]any) {
	if s.activity == nil {
		return
	}
	buf, _ := json.Marshal(data)
	if err := s.activity.Append(ctx, audit.Entry{UserID: userID, Type: typ, Key: key, DataJSON: string(buf)}); err != nil {
		log.Printf("activity log append failed: %v", err)
	}
}
