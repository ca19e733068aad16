package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Exercise is one movement within a workout, carrying both the planned
// prescription (expected_*) and what the athlete actually did (realized_*).
type Exercise struct {
	ID                string         `json:"id"`
	WorkoutID         string         `json:"workout_id"`
	UserID            string         `json:"user_id"`
	WorkoutName       sql.NullString `json:"workout_name"`
	ExerciseName      string         `json:"exercise_name"`
	ExpectedSets      int            `json:"expected_sets"`
	ExpectedReps      int            `json:"expected_reps"`
	RecommendedWeight sql.NullString `json:"recommended_weight"`
	RestInSeconds     int            `json:"rest_in_seconds"`
	RPE               int            `json:"rpe"`
	RealizedSets      sql.NullInt64  `json:"realized_sets"`
	RealizedReps      sql.NullInt64  `json:"realized_reps"`
	RealizedWeight    sql.NullString `json:"realized_weight"`
	Notes             sql.NullString `json:"notes"`
	CreatedAt         time.Time      `json:"created_at"`
}

const exerciseColumns = `id, workout_id, user_id, workout_name, exercise_name,
	expected_sets, expected_reps, recommended_weight, rest_in_seconds, rpe,
	realized_sets, realized_reps, realized_weight, notes, created_at`

func scanExercise(scan func(dest ...any) error) (*Exercise, error) {
	e := &Exercise{}
	err := scan(&e.ID, &e.WorkoutID, &e.UserID, &e.WorkoutName, &e.ExerciseName,
		&e.ExpectedSets, &e.ExpectedReps, &e.RecommendedWeight, &e.RestInSeconds, &e.RPE,
		&e.RealizedSets, &e.RealizedReps, &e.RealizedWeight, &e.Notes, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// NewExercise holds the fields for creating an exercise row.
type NewExercise struct {
	WorkoutName       string
	ExerciseName      string
	ExpectedSets      int
	ExpectedReps      int
	RecommendedWeight string
	RestInSeconds     int
	RPE               int
}

// CreateExercise inserts an exercise under a workout the user owns.
func CreateExercise(db *sql.DB, userID, workoutID string, in NewExercise) (*Exercise, error) {
	if _, err := GetWorkoutByID(db, userID, workoutID); err != nil {
		return nil, err
	}
	return insertExercise(db, userID, workoutID, in)
}

func insertExercise(q queryer, userID, workoutID string, in NewExercise) (*Exercise, error) {
	var weight, wname sql.NullString
	if in.RecommendedWeight != "" {
		weight = sql.NullString{String: in.RecommendedWeight, Valid: true}
	}
	if in.WorkoutName != "" {
		wname = sql.NullString{String: in.WorkoutName, Valid: true}
	}
	rest := in.RestInSeconds
	if rest <= 0 {
		rest = 90
	}
	rpe := in.RPE
	if rpe <= 0 {
		rpe = 7
	}

	id := newID()
	_, err := q.Exec(
		`INSERT INTO exercises (id, workout_id, user_id, workout_name, exercise_name,
		 expected_sets, expected_reps, recommended_weight, rest_in_seconds, rpe)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, workoutID, userID, wname, in.ExerciseName,
		in.ExpectedSets, in.ExpectedReps, weight, rest, rpe)
	if err != nil {
		return nil, fmt.Errorf("models: create exercise %q: %w", in.ExerciseName, err)
	}

	row := q.QueryRow(`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id)
	e, err := scanExercise(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("models: get exercise %s: %w", id, err)
	}
	return e, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// GetExerciseByID retrieves an exercise owned by the given user.
func GetExerciseByID(db *sql.DB, userID, id string) (*Exercise, error) {
	row := db.QueryRow(
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExercise(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get exercise %s: %w", id, err)
	}
	return e, nil
}

// ListExercisesByWorkout returns all exercises for one workout in insertion order.
func ListExercisesByWorkout(db *sql.DB, userID, workoutID string) ([]*Exercise, error) {
	rows, err := db.Query(
		`SELECT `+exerciseColumns+` FROM exercises
		 WHERE workout_id = ? AND user_id = ? ORDER BY created_at ASC, rowid ASC`,
		workoutID, userID)
	if err != nil {
		return nil, fmt.Errorf("models: list exercises for workout %s: %w", workoutID, err)
	}
	defer rows.Close()

	var exercises []*Exercise
	for rows.Next() {
		e, err := scanExercise(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// ListExercisesByWorkoutIDs returns exercises for any of the given workouts,
// keyed by workout ID. Used by the context gatherers to avoid per-workout queries.
func ListExercisesByWorkoutIDs(db *sql.DB, userID string, workoutIDs []string) (map[string][]*Exercise, error) {
	result := make(map[string][]*Exercise)
	if len(workoutIDs) == 0 {
		return result, nil
	}

	args := make([]any, 0, len(workoutIDs)+1)
	args = append(args, userID)
	for _, id := range workoutIDs {
		args = append(args, id)
	}

	rows, err := db.Query(
		`SELECT `+exerciseColumns+` FROM exercises
		 WHERE user_id = ? AND workout_id IN (`+placeholders(len(workoutIDs))+`)
		 ORDER BY created_at ASC, rowid ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("models: list exercises by workout ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanExercise(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan exercise: %w", err)
		}
		result[e.WorkoutID] = append(result[e.WorkoutID], e)
	}
	return result, rows.Err()
}

// RealizedUpdate carries the post-workout values recorded by the athlete.
// Nil pointers leave the column unchanged.
type RealizedUpdate struct {
	RealizedSets   *int
	RealizedReps   *int
	RealizedWeight *string
	Notes          *string
}

// UpdateRealized records actual performance on an exercise.
func UpdateRealized(db *sql.DB, userID, id string, in RealizedUpdate) (*Exercise, error) {
	e, err := GetExerciseByID(db, userID, id)
	if err != nil {
		return nil, err
	}

	sets, reps := e.RealizedSets, e.RealizedReps
	weight, notes := e.RealizedWeight, e.Notes
	if in.RealizedSets != nil {
		sets = sql.NullInt64{Int64: int64(*in.RealizedSets), Valid: true}
	}
	if in.RealizedReps != nil {
		reps = sql.NullInt64{Int64: int64(*in.RealizedReps), Valid: true}
	}
	if in.RealizedWeight != nil {
		weight = sql.NullString{String: *in.RealizedWeight, Valid: *in.RealizedWeight != ""}
	}
	if in.Notes != nil {
		notes = sql.NullString{String: *in.Notes, Valid: *in.Notes != ""}
	}

	_, err = db.Exec(
		`UPDATE exercises SET realized_sets = ?, realized_reps = ?, realized_weight = ?, notes = ?
		 WHERE id = ? AND user_id = ?`,
		sets, reps, weight, notes, id, userID)
	if err != nil {
		return nil, fmt.Errorf("models: update realized for exercise %s: %w", id, err)
	}
	return GetExerciseByID(db, userID, id)
}

// DeleteExercise removes an exercise by ID.
func DeleteExercise(db *sql.DB, userID, id string) error {
	result, err := db.Exec(`DELETE FROM exercises WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("models: delete exercise %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
