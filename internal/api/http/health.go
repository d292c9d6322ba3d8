package http

import (
	"net/http"

	"github.com/jayvenma/SocialBatteryForecaster/internal/config"
)

// GET /health
func HealthHandler(cfg config.Config) http.HandlerFunc {
	llmConfigured := cfg.EnableLLMScoring && cfg.LLMAPIKey != ""
	body := map[string]any{
		"status":      "ok",
		"llm_enabled": cfg.EnableLLMScoring,
		"llm_configured": llmConfigured,
	}
	if llmConfigured {
		body["llm_base_url"] = cfg.LLMBaseURL
		body["llm_model"] = cfg.LLMModel
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}
