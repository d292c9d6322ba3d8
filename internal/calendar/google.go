// Package calendar pulls upcoming events from the Google Calendar v3
// REST API and normalizes them for scoring.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/jayvenma/SocialBatteryForecaster/internal/auth"
	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
)

const (
	eventsURL  = "https://www.googleapis.com/calendar/v3/calendars/primary/events"
	maxResults = 250
)

// Item is one synced calendar entry, already reduced to the fields the
// event store and the scoring engine care about.
type Item struct {
	ID                string
	Title             string
	Start             time.Time
	End               time.Time
	EventType         energy.EventType
	AttendeeCount     int
	HasConferenceLink bool
}

// Client fetches events with the user's stored OAuth token, refreshing
// and re-persisting it when Google rotates the access token.
type Client struct {
	oauth  *oauth2.Config
	tokens *auth.TokenStore
}

func NewClient(oc *oauth2.Config, tokens *auth.TokenStore) *Client {
	return &Client{oauth: oc, tokens: tokens}
}

type apiEventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type apiEvent struct {
	ID             string         `json:"id"`
	Summary        string         `json:"summary"`
	Start          apiEventTime   `json:"start"`
	End            apiEventTime   `json:"end"`
	Attendees      []struct{}     `json:"attendees"`
	HangoutLink    string         `json:"hangoutLink"`
	ConferenceData map[string]any `json:"conferenceData"`
}

type apiEventList struct {
	Items []apiEvent `json:"items"`
}

// FetchWindow lists the user's primary-calendar events between from and
// to. All-day entries (date without a time) are skipped, matching the
// normalization rules the scorer expects.
func (c *Client) FetchWindow(ctx context.Context, userID string, from, to time.Time) ([]Item, error) {
	tok, err := c.tokens.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ts := c.oauth.TokenSource(ctx, tok)
	httpClient := oauth2.NewClient(ctx, ts)

	q := url.Values{}
	q.Set("timeMin", from.UTC().Format(time.RFC3339))
	q.Set("timeMax", to.UTC().Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	q.Set("maxResults", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eventsURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("calendar status %d: %s", resp.StatusCode, string(body))
	}

	var list apiEventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode calendar response: %w", err)
	}

	// Persist a rotated access token so the next sync skips the refresh.
	if latest, err := ts.Token(); err == nil && latest.AccessToken != tok.AccessToken {
		_ = c.tokens.Save(ctx, userID, latest)
	}

	items := make([]Item, 0, len(list.Items))
	for _, evt := range list.Items {
		if evt.ID == "" || evt.Start.DateTime == "" || evt.End.DateTime == "" {
			continue
		}
		start, err1 := time.Parse(time.RFC3339, evt.Start.DateTime)
		end, err2 := time.Parse(time.RFC3339, evt.End.DateTime)
		if err1 != nil || err2 != nil {
			continue
		}
		title := evt.Summary
		if title == "" {
			title = "No Title"
		}
		hasConf := len(evt.ConferenceData) > 0 || evt.HangoutLink != ""
		items = append(items, Item{
			ID:                evt.ID,
			Title:             title,
			Start:             start.UTC(),
			End:               end.UTC(),
			EventType:         InferEventType(len(evt.Attendees), title, hasConf),
			AttendeeCount:     len(evt.Attendees),
			HasConferenceLink: hasConf,
		})
	}
	return items, nil
}

// InferEventType guesses a category from a few cheap signals; a user
// override always wins later in the pipeline.
func InferEventType(attendeeCount int, summary string, hasConference bool) energy.EventType {
	s := strings.ToLower(summary)
	for _, kw := range []string{"zoom", "meet", "video", "call", "teams"} {
		if strings.Contains(s, kw) {
			return energy.TypeCall
		}
	}
	if hasConference {
		return energy.TypeCall
	}
	if attendeeCount <= 0 {
		return energy.TypeSolo
	}
	if attendeeCount == 1 {
		return energy.TypeOneOnOne
	}
	return energy.TypeMeeting
}
