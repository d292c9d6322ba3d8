package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when a user has no stored Google credentials.
var ErrNoToken = errors.New("no oauth token for user")

// TokenStore persists per-user Google OAuth tokens so calendar sync can
// run after the login redirect is long gone.
type TokenStore struct{ db *sql.DB }

func NewTokenStore(db *sql.DB) *TokenStore { return &TokenStore{db: db} }

func (s *TokenStore) Save(ctx context.Context, userID string, tok *oauth2.Token) error {
	expiry := ""
	if !tok.Expiry.IsZero() {
		expiry = tok.Expiry.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oauth_tokens (user_id, access_token, refresh_token, expiry, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=CASE WHEN EXCLUDED.refresh_token='' THEN oauth_tokens.refresh_token ELSE EXCLUDED.refresh_token END,
			expiry=EXCLUDED.expiry,
			updated_at=EXCLUDED.updated_at`,
		userID, tok.AccessToken, tok.RefreshToken, expiry, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *TokenStore) Get(ctx context.Context, userID string) (*oauth2.Token, error) {
	var access, refresh, expiry string
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, expiry FROM oauth_tokens WHERE user_id=$1`,
		userID).Scan(&access, &refresh, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{AccessToken: access, RefreshToken: refresh}
	if expiry != "" {
		if t, err := time.Parse(time.RFC3339, expiry); err == nil {
			tok.Expiry = t
		}
	}
	return tok, nil
}

func (s *TokenStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE user_id=$1`, userID)
	return err
}
