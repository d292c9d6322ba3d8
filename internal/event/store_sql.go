package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
)

// ErrNotFound is returned when an event does not exist for the user.
var ErrNotFound = errors.New("event not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const eventColumns = `id, user_id, source, title, start, "end", event_type,
	attendee_count, has_video, has_conference_link, modifiers_json, updated_at,
	impact_score, impact_label, reasons_json, scored_at, scoring_source, scoring_model`

func (s *SQLStore) Create(ctx context.Context, ev Event) error {
	modsJSON, err := marshalModifiers(ev.Modifiers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, user_id, source, title, start, "end", event_type,
			attendee_count, has_video, has_conference_link, modifiers_json, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		ev.ID, ev.UserID, ev.Source, ev.Title,
		fmtTime(ev.Start), fmtTime(ev.End), string(ev.EventType),
		ev.AttendeeCount, boolInt(ev.HasVideo), boolInt(ev.HasConferenceLink),
		modsJSON, fmtTime(ev.UpdatedAt))
	return err
}

func (s *SQLStore) Get(ctx context.Context, userID, id string) (Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id=$1 AND user_id=$2`, id, userID)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return ev, err
}

// ListWindow returns the user's events overlapping (min, max), ordered
// by start time.
func (s *SQLStore) ListWindow(ctx context.Context, userID string, min, max time.Time) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE user_id=$1 AND start < $2 AND "end" > $3
		 ORDER BY start ASC`,
		userID, fmtTime(max), fmtTime(min))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Update rewrites the event's mutable fields and invalidates the cached
// score.
func (s *SQLStore) Update(ctx context.Context, ev Event) error {
	modsJSON, err := marshalModifiers(ev.Modifiers)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET title=$1, start=$2, "end"=$3, event_type=$4, attendee_count=$5,
			has_video=$6, has_conference_link=$7, modifiers_json=$8, updated_at=$9,
			scored_at=NULL, impact_score=NULL, impact_label=NULL, reasons_json=NULL,
			scoring_source=NULL, scoring_model=NULL
		WHERE id=$10 AND user_id=$11`,
		ev.Title, fmtTime(ev.Start), fmtTime(ev.End), string(ev.EventType),
		ev.AttendeeCount, boolInt(ev.HasVideo), boolInt(ev.HasConferenceLink),
		modsJSON, fmtTime(time.Now().UTC()),
		ev.ID, ev.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertSynced inserts or refreshes a synced Google event. Any change
// clears the cached score so the next read rescores.
func (s *SQLStore) UpsertSynced(ctx context.Context, ev Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, user_id, source, title, start, "end", event_type,
			attendee_count, has_video, has_conference_link, modifiers_json, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULL,$11)
		ON CONFLICT (id, user_id) DO UPDATE SET
			title=EXCLUDED.title,
			start=EXCLUDED.start,
			"end"=EXCLUDED."end",
			event_type=EXCLUDED.event_type,
			attendee_count=EXCLUDED.attendee_count,
			has_video=EXCLUDED.has_video,
			has_conference_link=EXCLUDED.has_conference_link,
			updated_at=EXCLUDED.updated_at,
			scored_at=NULL, impact_score=NULL, impact_label=NULL, reasons_json=NULL,
			scoring_source=NULL, scoring_model=NULL`,
		ev.ID, ev.UserID, SourceGoogle, ev.Title,
		fmtTime(ev.Start), fmtTime(ev.End), string(ev.EventType),
		ev.AttendeeCount, boolInt(ev.HasVideo), boolInt(ev.HasConferenceLink),
		fmtTime(ev.UpdatedAt))
	return err
}

func (s *SQLStore) GetOverride(ctx context.Context, userID, eventID string) (Override, error) {
	var (
		etype               sql.NullString
		attendees           sql.NullInt64
		hasVideo, hasConfLk sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT event_type, attendee_count, has_video, has_conference_link
		FROM google_overrides WHERE user_id=$1 AND event_id=$2`,
		userID, eventID).Scan(&etype, &attendees, &hasVideo, &hasConfLk)
	if errors.Is(err, sql.ErrNoRows) {
		return Override{}, nil
	}
	if err != nil {
		return Override{}, err
	}
	var ov Override
	if etype.Valid {
		t := energy.EventType(etype.String)
		ov.EventType = &t
	}
	if attendees.Valid {
		n := int(attendees.Int64)
		ov.AttendeeCount = &n
	}
	if hasVideo.Valid {
		b := hasVideo.Int64 != 0
		ov.HasVideo = &b
	}
	if hasConfLk.Valid {
		b := hasConfLk.Int64 != 0
		ov.HasConferenceLink = &b
	}
	return ov, nil
}

// UpsertOverride merges the given fields over any stored override, then
// touches the event so its cached score is treated as stale.
func (s *SQLStore) UpsertOverride(ctx context.Context, userID, eventID string, ov Override) error {
	cur, err := s.GetOverride(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if ov.EventType == nil {
		ov.EventType = cur.EventType
	}
	if ov.AttendeeCount == nil {
		ov.AttendeeCount = cur.AttendeeCount
	}
	if ov.HasVideo == nil {
		ov.HasVideo = cur.HasVideo
	}
	if ov.HasConferenceLink == nil {
		ov.HasConferenceLink = cur.HasConferenceLink
	}

	now := fmtTime(time.Now().UTC())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO google_overrides (user_id, event_id, event_type, attendee_count, has_video, has_conference_link, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id, event_id) DO UPDATE SET
			event_type=EXCLUDED.event_type,
			attendee_count=EXCLUDED.attendee_count,
			has_video=EXCLUDED.has_video,
			has_conference_link=EXCLUDED.has_conference_link,
			updated_at=EXCLUDED.updated_at`,
		userID, eventID,
		nullableString((*string)(ov.EventType)),
		nullableInt(ov.AttendeeCount),
		nullableBool(ov.HasVideo),
		nullableBool(ov.HasConferenceLink),
		now)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE events
		SET updated_at=$1,
			scored_at=NULL, impact_score=NULL, impact_label=NULL, reasons_json=NULL,
			scoring_source=NULL, scoring_model=NULL
		WHERE id=$2 AND user_id=$3`,
		now, eventID, userID)
	return err
}

// PersistScore caches a scoring result against the event row.
func (s *SQLStore) PersistScore(ctx context.Context, userID, eventID string, sc StoredScore) error {
	reasonsJSON, err := json.Marshal(sc.Reasons)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE events
		SET impact_score=$1, impact_label=$2, reasons_json=$3, scored_at=$4,
			scoring_source=$5, scoring_model=$6
		WHERE id=$7 AND user_id=$8`,
		sc.ImpactScore, string(sc.ImpactLabel), string(reasonsJSON),
		fmtTime(sc.ScoredAt), sc.Source, nullableString(nonEmpty(sc.Model)),
		eventID, userID)
	return err
}

// --- row scanning ---

type rowScanner interface{ Scan(dest ...any) error }

func scanEvent(r rowScanner) (Event, error) {
	var (
		ev                           Event
		start, end, updatedAt, etype string
		hasVideo, hasConfLk          int
		modsJSON                     sql.NullString
		impactScore                  sql.NullFloat64
		impactLabel, reasonsJSON     sql.NullString
		scoredAt, scSource, scModel  sql.NullString
	)
	err := r.Scan(&ev.ID, &ev.UserID, &ev.Source, &ev.Title, &start, &end, &etype,
		&ev.AttendeeCount, &hasVideo, &hasConfLk, &modsJSON, &updatedAt,
		&impactScore, &impactLabel, &reasonsJSON, &scoredAt, &scSource, &scModel)
	if err != nil {
		return Event{}, err
	}
	ev.EventType = energy.EventType(etype)
	ev.HasVideo = hasVideo != 0
	ev.HasConferenceLink = hasConfLk != 0
	ev.Start, _ = time.Parse(time.RFC3339, start)
	ev.End, _ = time.Parse(time.RFC3339, end)
	ev.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if modsJSON.Valid && modsJSON.String != "" {
		mods := energy.DefaultModifiers()
		if err := json.Unmarshal([]byte(modsJSON.String), &mods); err == nil {
			ev.Modifiers = &mods
		}
	}
	if impactScore.Valid && impactLabel.Valid && scoredAt.Valid {
		sc := &StoredScore{
			ImpactScore: impactScore.Float64,
			ImpactLabel: energy.ImpactLabel(impactLabel.String),
			Source:      scSource.String,
			Model:       scModel.String,
		}
		sc.ScoredAt, _ = time.Parse(time.RFC3339, scoredAt.String)
		if reasonsJSON.Valid {
			_ = json.Unmarshal([]byte(reasonsJSON.String), &sc.Reasons)
		}
		if !energy.KnownImpactLabel(sc.ImpactLabel) {
			sc.ImpactLabel = energy.LabelLow
		}
		ev.Score = sc
	}
	return ev, nil
}

// --- small helpers ---

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func marshalModifiers(m *energy.ScoringModifiers) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return boolInt(*b)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
