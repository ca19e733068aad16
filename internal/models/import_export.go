package models

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// CSV import contract: one row per exercise. Required columns are
// workout_date, workout_type, exercise_name, expected_sets, expected_reps,
// rest_in_seconds, rpe. Optional columns are workout_id, workout_name,
// workout_status, workout_notes, recommended_weight. Rows sharing a
// workout_id (or, when absent, the same workout_date + workout_type) are
// grouped into one workout.

// Import validation errors, surfaced verbatim to the user.
var (
	ErrCSVEmpty          = errors.New("CSV file is empty")
	ErrCSVMissingWorkout = errors.New("Each row must have workout_date and workout_type")
	ErrCSVMissingFields  = errors.New("Each exercise must have exercise_name, expected_sets, expected_reps, rest_in_seconds, and rpe")
)

// ImportResult summarizes a completed CSV import.
type ImportResult struct {
	WorkoutsCreated  int `json:"workouts_created"`
	ExercisesCreated int `json:"exercises_created"`
}

type csvWorkout struct {
	name      string
	date      string
	kind      string
	status    string
	notes     string
	exercises []NewExercise
}

// ImportWorkoutsCSV parses exercise rows from r and creates the grouped
// workouts and exercises for the user. The whole import runs in one
// transaction so a malformed row leaves nothing behind.
func ImportWorkoutsCSV(db *sql.DB, userID string, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrCSVEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("models: read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	// Group rows by workout, preserving first-seen order.
	var order []string
	groups := make(map[string]*csvWorkout)
	rows := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("models: read CSV row: %w", err)
		}
		rows++

		date := field(record, "workout_date")
		kind := field(record, "workout_type")
		if date == "" || kind == "" {
			return nil, ErrCSVMissingWorkout
		}

		name := field(record, "exercise_name")
		sets := field(record, "expected_sets")
		reps := field(record, "expected_reps")
		rest := field(record, "rest_in_seconds")
		rpe := field(record, "rpe")
		if name == "" || sets == "" || reps == "" || rest == "" || rpe == "" {
			return nil, ErrCSVMissingFields
		}

		setsN, err := strconv.Atoi(sets)
		if err != nil {
			return nil, fmt.Errorf("models: invalid expected_sets %q", sets)
		}
		repsN, err := strconv.Atoi(reps)
		if err != nil {
			return nil, fmt.Errorf("models: invalid expected_reps %q", reps)
		}
		restN, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("models: invalid rest_in_seconds %q", rest)
		}
		rpeN, err := strconv.Atoi(rpe)
		if err != nil {
			return nil, fmt.Errorf("models: invalid rpe %q", rpe)
		}

		key := field(record, "workout_id")
		if key == "" {
			key = date + "-" + kind
		}
		workoutName := field(record, "workout_name")
		if workoutName == "" {
			workoutName = date + " - " + kind
		}

		g, ok := groups[key]
		if !ok {
			status := field(record, "workout_status")
			if status == "" {
				status = WorkoutPlanned
			}
			g = &csvWorkout{
				name:   workoutName,
				date:   date,
				kind:   kind,
				status: status,
				notes:  field(record, "workout_notes"),
			}
			groups[key] = g
			order = append(order, key)
		}

		g.exercises = append(g.exercises, NewExercise{
			WorkoutName:       workoutName,
			ExerciseName:      name,
			ExpectedSets:      setsN,
			ExpectedReps:      repsN,
			RecommendedWeight: field(record, "recommended_weight"),
			RestInSeconds:     restN,
			RPE:               rpeN,
		})
	}

	if rows == 0 {
		return nil, ErrCSVEmpty
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin import transaction: %w", err)
	}
	defer tx.Rollback()

	result := &ImportResult{}
	for _, key := range order {
		g := groups[key]

		var notes sql.NullString
		if g.notes != "" {
			notes = sql.NullString{String: g.notes, Valid: true}
		}

		workoutID := newID()
		_, err := tx.Exec(
			`INSERT INTO workouts (id, user_id, name, date, workout_type, status, notes, source)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			workoutID, userID, g.name, normalizeDate(g.date), g.kind, g.status, notes, SourceCSVImport)
		if err != nil {
			return nil, fmt.Errorf("models: import workout %q: %w", g.name, err)
		}
		result.WorkoutsCreated++

		for _, ex := range g.exercises {
			if _, err := insertExercise(tx, userID, workoutID, ex); err != nil {
				return nil, err
			}
			result.ExercisesCreated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit import transaction: %w", err)
	}
	return result, nil
}

// exportHeader lists the CSV columns in the order they are written. The
// layout round-trips through ImportWorkoutsCSV.
var exportHeader = []string{
	"workout_id", "workout_name", "workout_date", "workout_type",
	"workout_status", "workout_notes", "exercise_name", "expected_sets",
	"expected_reps", "recommended_weight", "rest_in_seconds", "rpe",
}

// ExportWorkoutsCSV writes a user's workouts and exercises as CSV, one row
// per exercise, optionally narrowed by a date-range filter.
func ExportWorkoutsCSV(db *sql.DB, userID string, f WorkoutFilter, w io.Writer) error {
	workouts, err := ListWorkouts(db, userID, f)
	if err != nil {
		return err
	}

	ids := make([]string, len(workouts))
	for i, wo := range workouts {
		ids[i] = wo.ID
	}
	exercises, err := ListExercisesByWorkoutIDs(db, userID, ids)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("models: write CSV header: %w", err)
	}

	for _, wo := range workouts {
		for _, e := range exercises[wo.ID] {
			record := []string{
				wo.ID, wo.Name, wo.Date, wo.WorkoutType,
				wo.Status, wo.Notes.String, e.ExerciseName,
				strconv.Itoa(e.ExpectedSets), strconv.Itoa(e.ExpectedReps),
				e.RecommendedWeight.String, strconv.Itoa(e.RestInSeconds),
				strconv.Itoa(e.RPE),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("models: write CSV row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
