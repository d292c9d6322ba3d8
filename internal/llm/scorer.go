// Package llm calls an OpenAI-compatible chat-completions endpoint to
// score events. Its output is untrusted: everything is sanitized back
// into the same invariants the deterministic engine guarantees natively.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
)

const maxReasons = 6

type Scorer struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	httpClient *http.Client
}

func NewScorer(baseURL, apiKey, model string, timeout time.Duration) *Scorer {
	return &Scorer{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Model:      model,
		Timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

const systemPrompt = `Return ONLY a JSON object (no markdown, no commentary, no code fences). Schema:
{"impact_score": number, "impact_label": "Low"|"Medium"|"High"|"Extreme", "reasons": string[]}
If unsure, still output valid JSON.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Score asks the model for an impact estimate. Any transport or parse
// failure is an error; the caller owns the deterministic fallback.
func (s *Scorer) Score(ctx context.Context, ev energy.NormalizedEvent, prof energy.Profile) (energy.ScoreResult, error) {
	payload := map[string]any{
		"event": map[string]any{
			"title":               ev.Title,
			"start":               ev.Start.Format(time.RFC3339),
			"end":                 ev.End.Format(time.RFC3339),
			"event_type":          ev.EffectiveType(),
			"attendee_count":      ev.AttendeeCount,
			"has_video":           ev.HasVideo,
			"has_conference_link": ev.HasConferenceLink,
		},
		"personality": map[string]any{
			"score": prof.TraitScore,
			"label": prof.Label,
		},
		"output_contract": map[string]string{
			"impact_score": "Signed float: negative = drain, positive = boost.",
			"impact_label": "One of: Low, Medium, High, Extreme (intensity of |impact_score|).",
			"reasons":      "2-5 short strings.",
		},
	}
	userMsg, err := json.Marshal(payload)
	if err != nil {
		return energy.ScoreResult{}, fmt.Errorf("marshal payload: %w", err)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: s.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(userMsg)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return energy.ScoreResult{}, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return energy.ScoreResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return energy.ScoreResult{}, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return energy.ScoreResult{}, fmt.Errorf("llm status %d: %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return energy.ScoreResult{}, fmt.Errorf("decode llm response: %w", err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return energy.ScoreResult{}, fmt.Errorf("no content returned from model")
	}

	raw, err := extractJSONObject(cr.Choices[0].Message.Content)
	if err != nil {
		return energy.ScoreResult{}, err
	}

	var out struct {
		ImpactScore float64 `json:"impact_score"`
		ImpactLabel string  `json:"impact_label"`
		Reasons     []any   `json:"reasons"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return energy.ScoreResult{}, fmt.Errorf("parse model JSON: %w", err)
	}

	return Sanitize(out.ImpactScore, out.ImpactLabel, out.Reasons), nil
}

// Sanitize clamps model output to the ScoreResult invariants: label must
// be in the fixed set (else Low), reasons become non-empty short strings
// capped at six.
func Sanitize(score float64, label string, reasons []any) energy.ScoreResult {
	lbl := energy.ImpactLabel(strings.TrimSpace(label))
	if !energy.KnownImpactLabel(lbl) {
		lbl = energy.LabelLow
	}
	if score == 0 {
		score = 0 // canonical +0.0, never "-0.0"
	}
	rs := make([]string, 0, len(reasons))
	for _, r := range reasons {
		var s string
		switch v := r.(type) {
		case string:
			s = v
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			rs = append(rs, s)
		}
		if len(rs) == maxReasons {
			break
		}
	}
	if len(rs) == 0 {
		rs = []string{"No reasons returned"}
	}
	return energy.ScoreResult{ImpactScore: score, ImpactLabel: lbl, Reasons: rs}
}

// extractJSONObject digs the first {...} object out of model text,
// tolerating code fences and chatter around it.
func extractJSONObject(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.Trim(s, "`")
		s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		if len(s) > 200 {
			s = s[:200]
		}
		return nil, fmt.Errorf("no JSON object in model output: %q", s)
	}
	return json.RawMessage(s[start : end+1]), nil
}
