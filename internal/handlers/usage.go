package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// GetUsage returns today's quota state alongside totals for the current UTC
// day, so clients can show "N/limit calls used" without a coach call.
func (api *API) GetUsage(w http.ResponseWriter, r *http.Request) {
	since := models.StartOfUTCDay(api.now())
	summary, err := models.SummarizeUsage(api.DB, userID(r), since)
	if err != nil {
		log.Printf("handlers: summarize usage: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	limit := models.GetDailyAILimit(api.DB)
	respondJSON(w, http.StatusOK, map[string]any{
		"today":       summary,
		"daily_limit": limit,
		"remaining":   max(limit-summary.Calls, 0),
	})
}

// ListUsageLogs returns the user's recent coach calls, newest first.
func (api *API) ListUsageLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 200 {
			errorJSON(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	logs, err := models.ListUsageLogs(api.DB, userID(r), limit)
	if err != nil {
		log.Printf("handlers: list usage logs: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if logs == nil {
		logs = []*models.AIUsageLog{}
	}
	respondJSON(w, http.StatusOK, logs)
}
