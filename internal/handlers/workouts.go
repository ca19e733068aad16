package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

type workoutInput struct {
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	WorkoutType string          `json:"workout_type"`
	Status      string          `json:"status"`
	Notes       *string         `json:"notes"`
	Exercises   []exerciseInput `json:"exercises"`
}

func validWorkoutStatus(s string) bool {
	switch s {
	case "", models.WorkoutPlanned, models.WorkoutDone, models.WorkoutArchived:
		return true
	}
	return false
}

// ListWorkouts returns the user's workouts, optionally filtered by date
// range and status via query parameters.
func (api *API) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	filter := models.WorkoutFilter{
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Status: r.URL.Query().Get("status"),
	}
	workouts, err := models.ListWorkouts(api.DB, userID(r), filter)
	if err != nil {
		log.Printf("handlers: list workouts: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if workouts == nil {
		workouts = []*models.Workout{}
	}
	respondJSON(w, http.StatusOK, workouts)
}

// CreateWorkout creates a manually entered workout, optionally with its
// exercises in the same request.
func (api *API) CreateWorkout(w http.ResponseWriter, r *http.Request) {
	var in workoutInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name == "" || in.Date == "" || in.WorkoutType == "" {
		errorJSON(w, http.StatusBadRequest, "name, date and workout_type are required")
		return
	}
	if !validWorkoutStatus(in.Status) {
		errorJSON(w, http.StatusBadRequest, "Invalid status")
		return
	}
	for _, e := range in.Exercises {
		if e.ExerciseName == "" || e.ExpectedSets <= 0 || e.ExpectedReps <= 0 {
			errorJSON(w, http.StatusBadRequest, "exercise_name, expected_sets and expected_reps are required")
			return
		}
	}

	notes := ""
	if in.Notes != nil {
		notes = *in.Notes
	}
	workout, err := models.CreateWorkout(api.DB, userID(r), in.Name, in.Date, in.WorkoutType,
		in.Status, notes, models.SourceManual)
	if err != nil {
		log.Printf("handlers: create workout: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	for _, e := range in.Exercises {
		_, err := models.CreateExercise(api.DB, userID(r), workout.ID, models.NewExercise{
			WorkoutName:       workout.Name,
			ExerciseName:      e.ExerciseName,
			ExpectedSets:      e.ExpectedSets,
			ExpectedReps:      e.ExpectedReps,
			RecommendedWeight: e.RecommendedWeight,
			RestInSeconds:     e.RestInSeconds,
			RPE:               e.RPE,
		})
		if err != nil {
			log.Printf("handlers: create workout exercise: %v", err)
			errorJSON(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	respondJSON(w, http.StatusCreated, workout)
}

// GetWorkout returns one workout with its exercises.
func (api *API) GetWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	workout, err := models.GetWorkoutByID(api.DB, userID(r), id)
	if err != nil {
		notFoundOrError(w, err, "workout")
		return
	}
	exercises, err := models.ListExercisesByWorkout(api.DB, userID(r), id)
	if err != nil {
		log.Printf("handlers: list exercises: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exercises == nil {
		exercises = []*models.Exercise{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"workout":   workout,
		"exercises": exercises,
	})
}

// UpdateWorkout updates mutable workout fields.
func (api *API) UpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var in workoutInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validWorkoutStatus(in.Status) {
		errorJSON(w, http.StatusBadRequest, "Invalid status")
		return
	}

	workout, err := models.UpdateWorkout(api.DB, userID(r), chi.URLParam(r, "id"),
		in.Name, in.Date, in.WorkoutType, in.Status, in.Notes)
	if err != nil {
		notFoundOrError(w, err, "workout")
		return
	}
	respondJSON(w, http.StatusOK, workout)
}

// DeleteWorkout removes a workout and its exercises.
func (api *API) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	err := models.DeleteWorkout(api.DB, userID(r), chi.URLParam(r, "id"))
	if errors.Is(err, models.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "workout not found")
		return
	}
	if err != nil {
		log.Printf("handlers: delete workout: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
