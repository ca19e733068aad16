package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

func TestWorkoutCRUD(t *testing.T) {
	api, _ := newTestAPI(t)
	_, token := seedAthlete(t, api)
	router := testRouter(api)

	var created models.Workout

	t.Run("create", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/workouts", token, map[string]any{
			"name":         "Push Day",
			"date":         "2026-03-07",
			"workout_type": "push",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		decodeBody(t, w, &created)
		if created.Status != models.WorkoutPlanned {
			t.Errorf("status = %q, want planned default", created.Status)
		}
		if created.Source != models.SourceManual {
			t.Errorf("source = %q, want manual", created.Source)
		}
	})

	t.Run("create with inline exercises", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/workouts", token, map[string]any{
			"name":         "Pull Day",
			"date":         "2026-03-09",
			"workout_type": "pull",
			"exercises": []map[string]any{
				{"exercise_name": "Deadlift", "expected_sets": 3, "expected_reps": 5},
				{"exercise_name": "Row", "expected_sets": 4, "expected_reps": 10},
			},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var workout models.Workout
		decodeBody(t, w, &workout)

		exercises, err := models.ListExercisesByWorkout(api.DB, workout.UserID, workout.ID)
		if err != nil || len(exercises) != 2 {
			t.Fatalf("exercises = %d, err %v", len(exercises), err)
		}
		names := map[string]bool{}
		for _, e := range exercises {
			names[e.ExerciseName] = true
		}
		if !names["Deadlift"] || !names["Row"] {
			t.Errorf("exercises = %v", names)
		}

		// Cleanup so the list-filter subtest below sees one workout.
		if err := models.DeleteWorkout(api.DB, workout.UserID, workout.ID); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	})

	t.Run("create requires fields", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/workouts", token, map[string]any{"name": "No date"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("create rejects bad status", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/workouts", token, map[string]any{
			"name": "X", "date": "2026-03-07", "workout_type": "push", "status": "bogus",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Invalid status") {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("get returns workout with exercises", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/workouts/"+created.ID, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp struct {
			Workout   *models.Workout    `json:"workout"`
			Exercises []*models.Exercise `json:"exercises"`
		}
		decodeBody(t, w, &resp)
		if resp.Workout == nil || resp.Workout.ID != created.ID {
			t.Fatalf("workout = %+v", resp.Workout)
		}
		if resp.Exercises == nil || len(resp.Exercises) != 0 {
			t.Errorf("exercises = %v, want empty array", resp.Exercises)
		}
	})

	t.Run("list filters by status", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/workouts?status=planned", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var workouts []*models.Workout
		decodeBody(t, w, &workouts)
		if len(workouts) != 1 {
			t.Errorf("planned workouts = %d, want 1", len(workouts))
		}

		w = doJSON(t, router, "GET", "/api/workouts?status=done", token, nil)
		decodeBody(t, w, &workouts)
		if len(workouts) != 0 {
			t.Errorf("done workouts = %d, want 0", len(workouts))
		}
	})

	t.Run("update marks done", func(t *testing.T) {
		w := doJSON(t, router, "PUT", "/api/workouts/"+created.ID, token,
			map[string]any{"status": "done", "notes": "felt strong"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var updated models.Workout
		decodeBody(t, w, &updated)
		if updated.Status != models.WorkoutDone {
			t.Errorf("status = %q, want done", updated.Status)
		}
		if updated.Notes.String != "felt strong" {
			t.Errorf("notes = %q", updated.Notes.String)
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, router, "DELETE", "/api/workouts/"+created.ID, token, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		if w := doJSON(t, router, "GET", "/api/workouts/"+created.ID, token, nil); w.Code != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", w.Code)
		}
	})
}

func TestWorkoutIsolation(t *testing.T) {
	api, _ := newTestAPI(t)
	u, _ := seedAthlete(t, api)
	workout := seedDoneWorkout(t, api, u.ID, "Push Day", "2026-03-07", "push")

	other, err := models.CreateUser(api.DB, "other@example.com", "secret-password")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	otherToken, _ := api.Auth.IssueToken(other.ID)
	router := testRouter(api)

	if w := doJSON(t, router, "GET", "/api/workouts/"+workout.ID, otherToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("other user's get = %d, want 404", w.Code)
	}
	if w := doJSON(t, router, "DELETE", "/api/workouts/"+workout.ID, otherToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("other user's delete = %d, want 404", w.Code)
	}
}

func TestExerciseEndpoints(t *testing.T) {
	api, _ := newTestAPI(t)
	u, token := seedAthlete(t, api)
	workout, err := models.CreateWorkout(api.DB, u.ID, "Push Day", "2026-03-07", "push",
		models.WorkoutPlanned, "", models.SourceManual)
	if err != nil {
		t.Fatalf("create workout: %v", err)
	}
	router := testRouter(api)

	var created models.Exercise

	t.Run("create", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/workouts/"+workout.ID+"/exercises", token, map[string]any{
			"exercise_name":      "Bench Press",
			"expected_sets":      4,
			"expected_reps":      8,
			"recommended_weight": "80",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		decodeBody(t, w, &created)
		if created.RestInSeconds != 90 || created.RPE != 7 {
			t.Errorf("defaults: rest = %d, rpe = %d, want 90 and 7", created.RestInSeconds, created.RPE)
		}
	})

	t.Run("create requires name and volume", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/workouts/"+workout.ID+"/exercises", token,
			map[string]any{"exercise_name": "Bench Press"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("record realized", func(t *testing.T) {
		w := doJSON(t, router, "PUT", "/api/exercises/"+created.ID, token, map[string]any{
			"realized_sets":   4,
			"realized_reps":   7,
			"realized_weight": "82.5",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var updated models.Exercise
		decodeBody(t, w, &updated)
		if updated.RealizedReps.Int64 != 7 || updated.RealizedWeight.String != "82.5" {
			t.Errorf("realized = %d reps @ %s", updated.RealizedReps.Int64, updated.RealizedWeight.String)
		}
	})

	t.Run("list", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/workouts/"+workout.ID+"/exercises", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var exercises []*models.Exercise
		decodeBody(t, w, &exercises)
		if len(exercises) != 1 {
			t.Errorf("exercises = %d, want 1", len(exercises))
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, router, "DELETE", "/api/exercises/"+created.ID, token, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		if w := doJSON(t, router, "DELETE", "/api/exercises/"+created.ID, token, nil); w.Code != http.StatusNotFound {
			t.Errorf("second delete = %d, want 404", w.Code)
		}
	})
}
