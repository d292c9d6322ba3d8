package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jayvenma/SocialBatteryForecaster/internal/audit"
	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
)

// GET /api/activity?limit=50 — recent sync/score actions, newest first.
func ActivityHandler(activity *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		entries, err := activity.Recent(r.Context(), userID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load activity")
			return
		}
		out := make([]map[string]any, 0, len(entries))
		for _, e := range entries {
			item := map[string]any{
				"type":       e.Type,
				"key":        e.Key,
				"created_at": time.Unix(e.CreatedAt, 0).UTC().Format(time.RFC3339),
			}
			var data any
			if json.Unmarshal([]byte(e.DataJSON), &data) == nil {
				item["data"] = data
			}
			out = append(out, item)
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "activity": out})
	}
}
