package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/jayvenma/SocialBatteryForecaster/internal/audit"
	authmw "github.com/jayvenma/SocialBatteryForecaster/internal/auth/middleware"
	"github.com/jayvenma/SocialBatteryForecaster/internal/energy"
	"github.com/jayvenma/SocialBatteryForecaster/internal/profile"
)

// POST /api/onboarding  { "answers": [1..5 x15] }
// An empty answers array clears the stored profile.
func OnboardingHandler(profiles *profile.Store, activity *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())

		var req struct {
			Answers []json.Number `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Answers == nil {
			writeError(w, http.StatusBadRequest, "expected JSON body: { answers: number[] }")
			return
		}

		if len(req.Answers) == 0 {
			if err := profiles.Delete(r.Context(), userID); err != nil {
				writeError(w, http.StatusInternalServerError, "clear profile")
				return
			}
			logActivity(r, activity, userID, audit.TypeProfileCleared, nil)
			writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
			return
		}

		answers := make([]int, 0, len(req.Answers))
		for _, n := range req.Answers {
			f, err := n.Float64()
			if err != nil || f != math.Trunc(f) {
				writeError(w, http.StatusBadRequest, "answers must be integers between 1 and 5")
				return
			}
			answers = append(answers, int(f))
		}

		p, err := energy.DeriveProfile(answers)
		if err != nil {
			if errors.Is(err, energy.ErrValidation) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "derive profile")
			return
		}
		if err := profiles.Upsert(r.Context(), userID, p); err != nil {
			writeError(w, http.StatusInternalServerError, "store profile")
			return
		}
		logActivity(r, activity, userID, audit.TypeProfileUpdated, map[string]any{
			"trait_score": p.TraitScore,
			"label":       p.Label,
		})
		writeJSON(w, http.StatusOK, p)
	}
}

func logActivity(r *http.Request, activity *audit.Log, userID, typ string, data map[string]any) {
	if activity == nil {
		return
	}
	buf, _ := json.Marshal(data)
	_ = activity.Append(r.Context(), audit.Entry{UserID: userID, Type: typ, Key: userID, DataJSON: string(buf)})
}
