package event_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/db"
	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
	"github.com/jayvenma/SocialBatteryForecaster/internal/event"
)

var memDBSeq int

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	memDBSeq++
	dsn := fmt.Sprintf("file:event_test_%d?mode=memory&cache=shared", memDBSeq)
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func localEvent(id, userID string, start time.Time, minutes int) event.Event {
	return event.Event{
		ID:        id,
		UserID:    userID,
		Source:    event.SourceLocal,
		Title:     "Event " + id,
		Start:     start,
		End:       start.Add(time.Duration(minutes) * time.Minute),
		EventType: energy.TypeMeeting,
		UpdatedAt: time.Now().UTC(),
	}
}

func TestStoreCreateGetRoundtrip(t *testing.T) {
	store := event.NewSQLStore(openTestDB(t))
	ctx := context.Background()
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mods := energy.DefaultModifiers()
	mods.Role = energy.RoleLead
	ev := localEvent("e1", "u1", start, 60)
	ev.Modifiers = &mods

	if err := store.Create(ctx, ev); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.Get(ctx, "u1", "e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Event e1" || got.EventType != energy.TypeMeeting {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if !got.Start.Equal(start) || !got.End.Equal(start.Add(time.Hour)) {
		t.Errorf("time roundtrip mismatch: %v - %v", got.Start, got.End)
	}
	if got.Modifiers == nil || got.Modifiers.Role != energy.RoleLead {
		t.Errorf("modifiers not preserved: %+v", got.Modifiers)
	}
	if got.Score != nil {
		t.Errorf("fresh event should have no cached score")
	}

	if _, err := store.Get(ctx, "u2", "e1"); !errors.Is(err, event.ErrNotFound) {
		t.Errorf("cross-user get should be ErrNotFound, got %v", err)
	}
}

func TestStoreListWindow(t *testing.T) {
	store := event.NewSQLStore(openTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	inWindow := localEvent("in", "u1", now.Add(2*time.Hour), 60)
	past := localEvent("past", "u1", now.Add(-3*time.Hour), 60)
	far := localEvent("far", "u1", now.Add(48*time.Hour), 60)
	other := localEvent("other", "u2", now.Add(2*time.Hour), 60)
	for _, ev := range []event.Event{inWindow, past, far, other} {
		if err := store.Create(ctx, ev); err != nil {
			t.Fatalf("Create %s: %v", ev.ID, err)
		}
	}

	got, err := store.ListWindow(ctx, "u1", now, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListWindow: %v", err)
	}
	if len(got) != 1 || got[0].ID != "in" {
		t.Errorf("window = %v, want just %q", got, "in")
	}
}

func TestStorePersistAndInvalidateScore(t *testing.T) {
	store := event.NewSQLStore(openTestDB(t))
	ctx := context.Background()
	start := time.Now().UTC().Add(time.Hour)

	ev := localEvent("e1", "u1", start, 60)
	if err := store.Create(ctx, ev); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sc := event.StoredScore{
		ImpactScore: -13.72,
		ImpactLabel: energy.LabelExtreme,
		Reasons:     []string{"Base meeting cost", "Personality factor applied"},
		ScoredAt:    time.Now().UTC().Add(time.Minute),
		Source:      "local",
	}
	if err := store.PersistScore(ctx, "u1", "e1", sc); err != nil {
		t.Fatalf("PersistScore: %v", err)
	}

	got, err := store.Get(ctx, "u1", "e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Score == nil {
		t.Fatal("expected cached score")
	}
	if got.Score.ImpactScore != -13.72 || got.Score.ImpactLabel != energy.LabelExtreme {
		t.Errorf("score roundtrip mismatch: %+v", got.Score)
	}
	if event.NeedsRescore(got) {
		t.Error("freshly scored event should not need rescore")
	}

	// Editing the event clears the cache.
	got.Title = "Renamed"
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got2, err := store.Get(ctx, "u1", "e1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got2.Score != nil {
		t.Error("update should clear the cached score")
	}
	if !event.NeedsRescore(got2) {
		t.Error("updated event should need rescore")
	}
}

func TestStoreUpsertSyncedClearsScore(t *testing.T) {
	store := event.NewSQLStore(openTestDB(t))
	ctx := context.Background()
	start := time.Now().UTC().Add(time.Hour)

	ev := localEvent("g1", "u1", start, 30)
	ev.Source = event.SourceGoogle
	if err := store.UpsertSynced(ctx, ev); err != nil {
		t.Fatalf("UpsertSynced: %v", err)
	}
	if err := store.PersistScore(ctx, "u1", "g1", event.StoredScore{
		ImpactScore: -5, ImpactLabel: energy.LabelMedium, ScoredAt: time.Now().UTC(), Source: "local",
	}); err != nil {
		t.Fatalf("PersistScore: %v", err)
	}

	// Re-sync with a changed title; the cached score must go.
	ev.Title = "Moved meeting"
	ev.UpdatedAt = time.Now().UTC()
	if err := store.UpsertSynced(ctx, ev); err != nil {
		t.Fatalf("UpsertSynced again: %v", err)
	}
	got, err := store.Get(ctx, "u1", "g1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Moved meeting" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Score != nil {
		t.Error("re-sync should clear the cached score")
	}
}

func TestStoreOverrideMerge(t *testing.T) {
	store := event.NewSQLStore(openTestDB(t))
	ctx := context.Background()
	start := time.Now().UTC().Add(time.Hour)

	ev := localEvent("g1", "u1", start, 30)
	ev.Source = event.SourceGoogle
	ev.AttendeeCount = 5
	if err := store.UpsertSynced(ctx, ev); err != nil {
		t.Fatalf("UpsertSynced: %v", err)
	}

	solo := energy.TypeSolo
	if err := store.UpsertOverride(ctx, "u1", "g1", event.Override{EventType: &solo}); err != nil {
		t.Fatalf("UpsertOverride: %v", err)
	}
	// A later partial override keeps the earlier field.
	n := 2
	if err := store.UpsertOverride(ctx, "u1", "g1", event.Override{AttendeeCount: &n}); err != nil {
		t.Fatalf("UpsertOverride 2: %v", err)
	}

	ov, err := store.GetOverride(ctx, "u1", "g1")
	if err != nil {
		t.Fatalf("GetOverride: %v", err)
	}
	if ov.EventType == nil || *ov.EventType != energy.TypeSolo {
		t.Errorf("event type override lost: %+v", ov)
	}
	if ov.AttendeeCount == nil || *ov.AttendeeCount != 2 {
		t.Errorf("attendee override = %+v", ov.AttendeeCount)
	}

	raw, err := store.Get(ctx, "u1", "g1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	merged := ov.Apply(raw)
	if merged.EventType != energy.TypeSolo || merged.AttendeeCount != 2 {
		t.Errorf("merged view = %+v", merged)
	}
	// The stored row keeps its synced values.
	if raw.EventType != energy.TypeMeeting || raw.AttendeeCount != 5 {
		t.Errorf("raw row mutated: %+v", raw)
	}
}
