package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Workout statuses.
const (
	WorkoutPlanned  = "planned"
	WorkoutDone     = "done"
	WorkoutArchived = "archived"
)

// Workout sources.
const (
	SourceManual      = "manual"
	SourceCSVImport   = "csv_import"
	SourceAIGenerated = "ai_generated"
)

// Workout represents one planned or completed training session.
type Workout struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Name         string         `json:"name"`
	Date         string         `json:"date"` // YYYY-MM-DD
	WorkoutType  string         `json:"workout_type"`
	Status       string         `json:"status"`
	Notes        sql.NullString `json:"notes"`
	Source       string         `json:"source"`
	AIProgramID  sql.NullString `json:"ai_program_id"`
	AIWeekNumber sql.NullInt64  `json:"ai_week_number"`
	CreatedAt    time.Time      `json:"created_at"`
}

const workoutColumns = `id, user_id, name, date, workout_type, status, notes, source,
	ai_program_id, ai_week_number, created_at`

func scanWorkout(scan func(dest ...any) error) (*Workout, error) {
	w := &Workout{}
	err := scan(&w.ID, &w.UserID, &w.Name, &w.Date, &w.WorkoutType, &w.Status,
		&w.Notes, &w.Source, &w.AIProgramID, &w.AIWeekNumber, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	w.Date = normalizeDate(w.Date)
	return w, nil
}

// CreateWorkout inserts a workout for a user. Status defaults to planned,
// source to manual.
func CreateWorkout(db *sql.DB, userID, name, date, workoutType, status, notes, source string) (*Workout, error) {
	if status == "" {
		status = WorkoutPlanned
	}
	if source == "" {
		source = SourceManual
	}
	var notesVal sql.NullString
	if notes != "" {
		notesVal = sql.NullString{String: notes, Valid: true}
	}

	id := newID()
	_, err := db.Exec(
		`INSERT INTO workouts (id, user_id, name, date, workout_type, status, notes, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, name, normalizeDate(date), workoutType, status, notesVal, source,
	)
	if err != nil {
		return nil, fmt.Errorf("models: create workout for user %s on %s: %w", userID, date, err)
	}

	return GetWorkoutByID(db, userID, id)
}

// GetWorkoutByID retrieves a workout owned by the given user.
func GetWorkoutByID(db *sql.DB, userID, id string) (*Workout, error) {
	row := db.QueryRow(
		`SELECT `+workoutColumns+` FROM workouts WHERE id = ? AND user_id = ?`, id, userID)
	w, err := scanWorkout(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get workout %s: %w", id, err)
	}
	return w, nil
}

// WorkoutFilter narrows ListWorkouts results. Zero values mean "no filter".
type WorkoutFilter struct {
	From   string // inclusive YYYY-MM-DD
	To     string // inclusive YYYY-MM-DD
	Status string
}

// ListWorkouts returns a user's workouts matching the filter, ordered by
// date ascending.
func ListWorkouts(db *sql.DB, userID string, f WorkoutFilter) ([]*Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id = ?`
	args := []any{userID}
	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, normalizeDate(f.From))
	}
	if f.To != "" {
		query += ` AND date <= ?`
		args = append(args, normalizeDate(f.To))
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY date ASC, created_at ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("models: list workouts for user %s: %w", userID, err)
	}
	defer rows.Close()

	var workouts []*Workout
	for rows.Next() {
		w, err := scanWorkout(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// ListCompletedSince returns up to limit completed workouts dated on or after
// since, newest first. Used to assemble program-generation history.
func ListCompletedSince(db *sql.DB, userID, since string, limit int) ([]*Workout, error) {
	rows, err := db.Query(
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = ? AND status = ? AND date >= ?
		 ORDER BY date DESC LIMIT ?`,
		userID, WorkoutDone, normalizeDate(since), limit)
	if err != nil {
		return nil, fmt.Errorf("models: list completed workouts for user %s: %w", userID, err)
	}
	defer rows.Close()

	var workouts []*Workout
	for rows.Next() {
		w, err := scanWorkout(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// ListCompletedByType returns up to limit completed workouts of the given
// type, excluding one workout ID, newest first. Used for trend comparison.
func ListCompletedByType(db *sql.DB, userID, workoutType, excludeID string, limit int) ([]*Workout, error) {
	rows, err := db.Query(
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = ? AND workout_type = ? AND status = ? AND id != ?
		 ORDER BY date DESC LIMIT ?`,
		userID, workoutType, WorkoutDone, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("models: list %s workouts for user %s: %w", workoutType, userID, err)
	}
	defer rows.Close()

	var workouts []*Workout
	for rows.Next() {
		w, err := scanWorkout(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// UpdateWorkout updates mutable workout fields. Empty strings leave a field
// unchanged, except notes where an empty string clears the column.
func UpdateWorkout(db *sql.DB, userID, id string, name, date, workoutType, status string, notes *string) (*Workout, error) {
	w, err := GetWorkoutByID(db, userID, id)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = w.Name
	}
	if date == "" {
		date = w.Date
	}
	if workoutType == "" {
		workoutType = w.WorkoutType
	}
	if status == "" {
		status = w.Status
	}
	notesVal := w.Notes
	if notes != nil {
		notesVal = sql.NullString{String: *notes, Valid: *notes != ""}
	}

	_, err = db.Exec(
		`UPDATE workouts SET name = ?, date = ?, workout_type = ?, status = ?, notes = ?
		 WHERE id = ? AND user_id = ?`,
		name, normalizeDate(date), workoutType, status, notesVal, id, userID)
	if err != nil {
		return nil, fmt.Errorf("models: update workout %s: %w", id, err)
	}
	return GetWorkoutByID(db, userID, id)
}

// DeleteWorkout removes a workout and its exercises (CASCADE).
func DeleteWorkout(db *sql.DB, userID, id string) error {
	result, err := db.Exec(`DELETE FROM workouts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("models: delete workout %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPlannedWorkouts returns how many planned workouts a user has.
func CountPlannedWorkouts(db *sql.DB, userID string) (int, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM workouts WHERE user_id = ? AND status = ?`,
		userID, WorkoutPlanned).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("models: count planned workouts for user %s: %w", userID, err)
	}
	return count, nil
}
