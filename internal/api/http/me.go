package http

import (
	"net/http"

	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/profile"
)

// GET /api/me — identity, stored profile, onboarded flag.
func MeHandler(profiles *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authmw.IdentityFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
			return
		}
		body := map[string]any{
			"authenticated": true,
			"user": map[string]string{
				"sub":   id.Sub,
				"email": id.Email,
				"name":  id.Name,
			},
			"onboarded": false,
			"profile":   map[string]any{},
		}
		if p, err := profiles.Get(r.Context(), id.Sub); err == nil {
			body["onboarded"] = true
			body["profile"] = p
		}
		writeJSON(w, http.StatusOK, body)
	}
}
