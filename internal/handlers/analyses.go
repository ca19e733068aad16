package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// ListAnalyses returns stored workout analyses, newest first.
func (api *API) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			errorJSON(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	analyses, err := models.ListAnalyses(api.DB, userID(r), limit)
	if err != nil {
		log.Printf("handlers: list analyses: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if analyses == nil {
		analyses = []*models.WorkoutAnalysis{}
	}
	respondJSON(w, http.StatusOK, analyses)
}

// GetWorkoutAnalysis returns the most recent analysis for a workout.
func (api *API) GetWorkoutAnalysis(w http.ResponseWriter, r *http.Request) {
	workoutID := chi.URLParam(r, "id")
	if _, err := models.GetWorkoutByID(api.DB, userID(r), workoutID); err != nil {
		notFoundOrError(w, err, "workout")
		return
	}
	analysis, err := models.GetLatestAnalysisForWorkout(api.DB, userID(r), workoutID)
	if err != nil {
		notFoundOrError(w, err, "analysis")
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}
