// Package audit appends sync and scoring actions to an append-only log,
// so "why did this event rescore" is answerable after the fact.
package audit

import (
	"context"
	"database/sql"
	"time"
)

const (
	TypeCalendarSynced = "CalendarSynced"
	TypeEventScored    = "EventScored"
	TypeProfileUpdated = "ProfileUpdated"
	TypeProfileCleared = "ProfileCleared"
)

type Entry struct {
	Offset    int64
	UserID    string
	Type      string
	Key       string // natural key: event id or user id
	DataJSON  string
	CreatedAt int64
}

type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO activity_log (user_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.UserID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Recent returns the newest entries for a user, newest first.
func (l *Log) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT "offset", user_id, typ, key, data, created_at
		 FROM activity_log WHERE user_id=$1
		 ORDER BY "offset" DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Offset, &e.UserID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
