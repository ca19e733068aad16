package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// ListRecommendations returns stored AI recommendations, newest first,
// optionally filtered by type.
func (api *API) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			errorJSON(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	recs, err := models.ListRecommendations(api.DB, userID(r), r.URL.Query().Get("type"), limit)
	if err != nil {
		log.Printf("handlers: list recommendations: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if recs == nil {
		recs = []*models.AIRecommendation{}
	}
	respondJSON(w, http.StatusOK, recs)
}

// GetRecommendation returns one recommendation.
func (api *API) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := models.GetRecommendationByID(api.DB, userID(r), chi.URLParam(r, "id"))
	if err != nil {
		notFoundOrError(w, err, "recommendation")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// DeleteRecommendation removes a recommendation.
func (api *API) DeleteRecommendation(w http.ResponseWriter, r *http.Request) {
	err := models.DeleteRecommendation(api.DB, userID(r), chi.URLParam(r, "id"))
	if errors.Is(err, models.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "recommendation not found")
		return
	}
	if err != nil {
		log.Printf("handlers: delete recommendation: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
