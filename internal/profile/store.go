package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
)

// ErrNotFound is returned when a user has no stored profile.
var ErrNotFound = errors.New("profile not found")

// DefaultTraitScore is used for users who haven't onboarded yet.
const DefaultTraitScore = 30

// Store persists derived personality profiles.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Upsert(ctx context.Context, userID string, p energy.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profile (user_id, trait_score, label, raw_score, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id) DO UPDATE SET
			trait_score=EXCLUDED.trait_score,
			label=EXCLUDED.label,
			raw_score=EXCLUDED.raw_score,
			updated_at=EXCLUDED.updated_at`,
		userID, p.TraitScore, p.Label, p.RawScore, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) Get(ctx context.Context, userID string) (energy.Profile, error) {
	var p energy.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT trait_score, label, raw_score FROM user_profile WHERE user_id=$1`,
		userID).Scan(&p.TraitScore, &p.Label, &p.RawScore)
	if errors.Is(err, sql.ErrNoRows) {
		return energy.Profile{}, ErrNotFound
	}
	if err != nil {
		return energy.Profile{}, err
	}
	return p, nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_profile WHERE user_id=$1`, userID)
	return err
}

// TraitScoreOrDefault returns the user's trait score, or the documented
// default for un-onboarded users.
func (s *Store) TraitScoreOrDefault(ctx context.Context, userID string) int {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return DefaultTraitScore
	}
	return p.TraitScore
}
