package handlers

import (
	"net/http"
	"testing"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

func TestRecommendationEndpoints(t *testing.T) {
	api, _ := newTestAPI(t)
	u, token := seedAthlete(t, api)
	router := testRouter(api)

	rec, err := models.CreateRecommendation(api.DB, u.ID, models.RecommendationProgression,
		"Weekly Digest - 2026-03-02 - 2026-03-09", "Solid week.", []byte(`{"week_summary":"Solid week."}`),
		models.PriorityMedium)
	if err != nil {
		t.Fatalf("create recommendation: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/recommendations", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var recs []*models.AIRecommendation
		decodeBody(t, w, &recs)
		if len(recs) != 1 || recs[0].ID != rec.ID {
			t.Errorf("recs = %+v", recs)
		}
	})

	t.Run("list filters by type", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/recommendations?type=recovery", token, nil)
		var recs []*models.AIRecommendation
		decodeBody(t, w, &recs)
		if len(recs) != 0 {
			t.Errorf("recovery recs = %d, want 0", len(recs))
		}
	})

	t.Run("get", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/recommendations/"+rec.ID, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var got models.AIRecommendation
		decodeBody(t, w, &got)
		if got.Content != "Solid week." {
			t.Errorf("content = %q", got.Content)
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, router, "DELETE", "/api/recommendations/"+rec.ID, token, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		if w := doJSON(t, router, "DELETE", "/api/recommendations/"+rec.ID, token, nil); w.Code != http.StatusNotFound {
			t.Errorf("second delete = %d, want 404", w.Code)
		}
	})
}

func TestAnalysisEndpoints(t *testing.T) {
	api, mock := newTestAPI(t)
	u, token := seedAthlete(t, api)
	workout := seedDoneWorkout(t, api, u.ID, "Push Day", "2026-03-07", "push")
	mock.Responses = []string{validAnalysisJSON}
	router := testRouter(api)

	t.Run("analysis before any call", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/workouts/"+workout.ID+"/analysis", token, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	// Run an analysis through the coach endpoint, then read it back.
	w := doJSON(t, router, "POST", "/api/coach/analyze-workout", token,
		map[string]string{"workout_id": workout.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body = %s", w.Code, w.Body.String())
	}

	t.Run("latest analysis for workout", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/workouts/"+workout.ID+"/analysis", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var analysis models.WorkoutAnalysis
		decodeBody(t, w, &analysis)
		if analysis.WorkoutID != workout.ID || analysis.PerformanceRating.String != "on_track" {
			t.Errorf("analysis = %+v", analysis)
		}
	})

	t.Run("list analyses", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/analyses", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var analyses []*models.WorkoutAnalysis
		decodeBody(t, w, &analyses)
		if len(analyses) != 1 {
			t.Errorf("analyses = %d, want 1", len(analyses))
		}
	})
}
