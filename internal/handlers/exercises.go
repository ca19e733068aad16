package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

type exerciseInput struct {
	ExerciseName      string `json:"exercise_name"`
	ExpectedSets      int    `json:"expected_sets"`
	ExpectedReps      int    `json:"expected_reps"`
	RecommendedWeight string `json:"recommended_weight"`
	RestInSeconds     int    `json:"rest_in_seconds"`
	RPE               int    `json:"rpe"`
}

// CreateExercise adds an exercise to a workout.
func (api *API) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var in exerciseInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.ExerciseName == "" || in.ExpectedSets <= 0 || in.ExpectedReps <= 0 {
		errorJSON(w, http.StatusBadRequest, "exercise_name, expected_sets and expected_reps are required")
		return
	}

	workoutID := chi.URLParam(r, "id")
	workout, err := models.GetWorkoutByID(api.DB, userID(r), workoutID)
	if err != nil {
		notFoundOrError(w, err, "workout")
		return
	}

	exercise, err := models.CreateExercise(api.DB, userID(r), workoutID, models.NewExercise{
		WorkoutName:       workout.Name,
		ExerciseName:      in.ExerciseName,
		ExpectedSets:      in.ExpectedSets,
		ExpectedReps:      in.ExpectedReps,
		RecommendedWeight: in.RecommendedWeight,
		RestInSeconds:     in.RestInSeconds,
		RPE:               in.RPE,
	})
	if err != nil {
		log.Printf("handlers: create exercise: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusCreated, exercise)
}

// ListExercises returns the exercises for a workout.
func (api *API) ListExercises(w http.ResponseWriter, r *http.Request) {
	workoutID := chi.URLParam(r, "id")
	if _, err := models.GetWorkoutByID(api.DB, userID(r), workoutID); err != nil {
		notFoundOrError(w, err, "workout")
		return
	}
	exercises, err := models.ListExercisesByWorkout(api.DB, userID(r), workoutID)
	if err != nil {
		log.Printf("handlers: list exercises: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exercises == nil {
		exercises = []*models.Exercise{}
	}
	respondJSON(w, http.StatusOK, exercises)
}

type realizedInput struct {
	RealizedSets   *int    `json:"realized_sets"`
	RealizedReps   *int    `json:"realized_reps"`
	RealizedWeight *string `json:"realized_weight"`
	Notes          *string `json:"notes"`
}

// UpdateExercise records realized performance on an exercise.
func (api *API) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	var in realizedInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	exercise, err := models.UpdateRealized(api.DB, userID(r), chi.URLParam(r, "id"), models.RealizedUpdate{
		RealizedSets:   in.RealizedSets,
		RealizedReps:   in.RealizedReps,
		RealizedWeight: in.RealizedWeight,
		Notes:          in.Notes,
	})
	if err != nil {
		notFoundOrError(w, err, "exercise")
		return
	}
	respondJSON(w, http.StatusOK, exercise)
}

// DeleteExercise removes an exercise.
func (api *API) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	err := models.DeleteExercise(api.DB, userID(r), chi.URLParam(r, "id"))
	if errors.Is(err, models.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "exercise not found")
		return
	}
	if err != nil {
		log.Printf("handlers: delete exercise: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
