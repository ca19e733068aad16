package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AIProgram statuses.
const (
	ProgramProposed = "proposed"
	ProgramActive   = "active"
	ProgramArchived = "archived"
	ProgramRejected = "rejected"
)

// ErrProgramNotProposed is returned when an accept/reject transition races a
// previous submission: the program is no longer in the proposed state.
var ErrProgramNotProposed = errors.New("program is not in proposed state")

// AIProgram is a model-generated multi-week training plan. The full model
// response is stored verbatim in AIResponse alongside the extracted summary
// columns.
type AIProgram struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Name             string          `json:"name"`
	Description      sql.NullString  `json:"description"`
	SplitType        sql.NullString  `json:"split_type"`
	DurationWeeks    int             `json:"duration_weeks"`
	ProgressionNotes sql.NullString  `json:"progression_notes"`
	DeloadStrategy   sql.NullString  `json:"deload_strategy"`
	Status           string          `json:"status"`
	AIResponse       json.RawMessage `json:"ai_response"`
	GenerationPrompt sql.NullString  `json:"generation_prompt"`
	StartedAt        sql.NullTime    `json:"started_at"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ProgramData is the JSON shape the model is asked to produce for a program.
type ProgramData struct {
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	SplitType        string        `json:"split_type"`
	DurationWeeks    int           `json:"duration_weeks"`
	ProgressionNotes string        `json:"progression_notes"`
	DeloadStrategy   string        `json:"deload_strategy"`
	Weeks            []ProgramWeek `json:"weeks"`
}

// ProgramWeek is one week inside a ProgramData.
type ProgramWeek struct {
	WeekNumber int              `json:"week_number"`
	Theme      string           `json:"theme"`
	Workouts   []ProgramWorkout `json:"workouts"`
}

// ProgramWorkout is one session inside a ProgramWeek.
type ProgramWorkout struct {
	DayOfWeek   string            `json:"day_of_week"`
	Name        string            `json:"name"`
	WorkoutType string            `json:"workout_type"`
	Exercises   []ProgramExercise `json:"exercises"`
}

// ProgramExercise is one prescription inside a ProgramWorkout.
type ProgramExercise struct {
	ExerciseName      string `json:"exercise_name"`
	ExpectedSets      int    `json:"expected_sets"`
	ExpectedReps      int    `json:"expected_reps"`
	RecommendedWeight string `json:"recommended_weight"`
	RestInSeconds     int    `json:"rest_in_seconds"`
	RPE               int    `json:"rpe"`
}

const programColumns = `id, user_id, name, description, split_type, duration_weeks,
	progression_notes, deload_strategy, status, ai_response, generation_prompt,
	started_at, created_at`

func scanProgram(scan func(dest ...any) error) (*AIProgram, error) {
	p := &AIProgram{}
	var raw string
	err := scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.SplitType, &p.DurationWeeks,
		&p.ProgressionNotes, &p.DeloadStrategy, &p.Status, &raw, &p.GenerationPrompt,
		&p.StartedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.AIResponse = json.RawMessage(raw)
	return p, nil
}

// CreateProgram persists a freshly generated program in the proposed state.
// rawResponse is stored verbatim; generationPrompt is truncated to 2000 chars.
func CreateProgram(db *sql.DB, userID string, data *ProgramData, rawResponse json.RawMessage, generationPrompt string) (*AIProgram, error) {
	duration := data.DurationWeeks
	if duration == 0 {
		duration = len(data.Weeks)
	}
	if len(generationPrompt) > 2000 {
		generationPrompt = generationPrompt[:2000]
	}

	id := newID()
	_, err := db.Exec(
		`INSERT INTO ai_programs (id, user_id, name, description, split_type, duration_weeks,
		 progression_notes, deload_strategy, status, ai_response, generation_prompt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, data.Name, nullString(data.Description), nullString(data.SplitType),
		duration, nullString(data.ProgressionNotes), nullString(data.DeloadStrategy),
		ProgramProposed, string(rawResponse), nullString(generationPrompt))
	if err != nil {
		return nil, fmt.Errorf("models: create program %q: %w", data.Name, err)
	}

	return GetProgramByID(db, userID, id)
}

// GetProgramByID retrieves a program owned by the given user.
func GetProgramByID(db *sql.DB, userID, id string) (*AIProgram, error) {
	row := db.QueryRow(
		`SELECT `+programColumns+` FROM ai_programs WHERE id = ? AND user_id = ?`, id, userID)
	p, err := scanProgram(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get program %s: %w", id, err)
	}
	return p, nil
}

// ListPrograms returns a user's programs, optionally filtered by status,
// newest first.
func ListPrograms(db *sql.DB, userID, status string) ([]*AIProgram, error) {
	query := `SELECT ` + programColumns + ` FROM ai_programs WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("models: list programs for user %s: %w", userID, err)
	}
	defer rows.Close()

	var programs []*AIProgram
	for rows.Next() {
		p, err := scanProgram(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// GetActiveProgram returns the user's active program, or ErrNotFound.
func GetActiveProgram(db *sql.DB, userID string) (*AIProgram, error) {
	row := db.QueryRow(
		`SELECT `+programColumns+` FROM ai_programs
		 WHERE user_id = ? AND status = ? ORDER BY created_at DESC LIMIT 1`,
		userID, ProgramActive)
	p, err := scanProgram(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get active program for user %s: %w", userID, err)
	}
	return p, nil
}

// RejectProgram transitions proposed → rejected. Returns
// ErrProgramNotProposed if the program already left the proposed state.
func RejectProgram(db *sql.DB, userID, id string) error {
	result, err := db.Exec(
		`UPDATE ai_programs SET status = ? WHERE id = ? AND user_id = ? AND status = ?`,
		ProgramRejected, id, userID, ProgramProposed)
	if err != nil {
		return fmt.Errorf("models: reject program %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		if _, err := GetProgramByID(db, userID, id); err != nil {
			return err
		}
		return ErrProgramNotProposed
	}
	return nil
}

// dayOffsets maps day_of_week names to offsets from the week start.
var dayOffsets = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

// AcceptResult summarizes what program acceptance materialized.
type AcceptResult struct {
	Program          *AIProgram `json:"program"`
	WeeksCreated     int        `json:"weeks_created"`
	WorkoutsCreated  int        `json:"workouts_created"`
	ArchivedPrograms int        `json:"archived_programs"`
	ArchivedPlanned  int        `json:"archived_planned_workouts"`
}

// AcceptProgram transitions proposed → active and expands the stored program
// JSON onto the calendar: one ai_program_weeks row per week, plus planned
// workouts and exercises dated from startDate (monday of week 1).
//
// The whole expansion runs in a single transaction. The proposed-state guard
// on the activating UPDATE makes a second submission of the same acceptance
// fail with ErrProgramNotProposed instead of duplicating the schedule. Any
// prior active program is archived first, so at most one program is active
// per user afterward.
func AcceptProgram(db *sql.DB, userID, id, startDate string, archivePlanned bool) (*AcceptResult, error) {
	program, err := GetProgramByID(db, userID, id)
	if err != nil {
		return nil, err
	}

	var data ProgramData
	if err := json.Unmarshal(program.AIResponse, &data); err != nil {
		return nil, fmt.Errorf("models: parse stored program %s: %w", id, err)
	}

	start, err := time.Parse("2006-01-02", normalizeDate(startDate))
	if err != nil {
		return nil, fmt.Errorf("models: parse start date %q: %w", startDate, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin accept transaction: %w", err)
	}
	defer tx.Rollback()

	result := &AcceptResult{}

	// Optimistic guard: only a proposed program can be activated. Zero rows
	// means a concurrent or repeated acceptance already moved it.
	res, err := tx.Exec(
		`UPDATE ai_programs SET status = ?, started_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND status = ?`,
		ProgramActive, id, userID, ProgramProposed)
	if err != nil {
		return nil, fmt.Errorf("models: activate program %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrProgramNotProposed
	}

	// Archive any previously active program (there is at most one).
	res, err = tx.Exec(
		`UPDATE ai_programs SET status = ? WHERE user_id = ? AND status = ? AND id != ?`,
		ProgramArchived, userID, ProgramActive, id)
	if err != nil {
		return nil, fmt.Errorf("models: archive prior active program: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		result.ArchivedPrograms = int(n)
	}

	// Optionally clear the user's existing schedule before materializing the
	// new one. Must run before the inserts below.
	if archivePlanned {
		res, err = tx.Exec(
			`UPDATE workouts SET status = ? WHERE user_id = ? AND status = ?`,
			WorkoutArchived, userID, WorkoutPlanned)
		if err != nil {
			return nil, fmt.Errorf("models: archive planned workouts: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			result.ArchivedPlanned = int(n)
		}
	}

	for _, week := range data.Weeks {
		weekStart := start.AddDate(0, 0, (week.WeekNumber-1)*7)

		_, err = tx.Exec(
			`INSERT INTO ai_program_weeks (id, program_id, user_id, week_number, theme, start_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			newID(), id, userID, week.WeekNumber, nullString(week.Theme),
			weekStart.Format("2006-01-02"))
		if err != nil {
			return nil, fmt.Errorf("models: insert program week %d: %w", week.WeekNumber, err)
		}
		result.WeeksCreated++

		for _, pw := range week.Workouts {
			workoutDate := weekStart.AddDate(0, 0, dayOffsets[lower(pw.DayOfWeek)])

			workoutID := newID()
			_, err = tx.Exec(
				`INSERT INTO workouts (id, user_id, name, date, workout_type, status, source,
				 ai_program_id, ai_week_number)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				workoutID, userID, pw.Name, workoutDate.Format("2006-01-02"),
				pw.WorkoutType, WorkoutPlanned, SourceAIGenerated, id, week.WeekNumber)
			if err != nil {
				return nil, fmt.Errorf("models: insert program workout %q: %w", pw.Name, err)
			}
			result.WorkoutsCreated++

			for _, ex := range pw.Exercises {
				if _, err := insertExercise(tx, userID, workoutID, NewExercise{
					WorkoutName:       pw.Name,
					ExerciseName:      ex.ExerciseName,
					ExpectedSets:      ex.ExpectedSets,
					ExpectedReps:      ex.ExpectedReps,
					RecommendedWeight: ex.RecommendedWeight,
					RestInSeconds:     ex.RestInSeconds,
					RPE:               ex.RPE,
				}); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit accept transaction: %w", err)
	}

	accepted, err := GetProgramByID(db, userID, id)
	if err != nil {
		return nil, err
	}
	result.Program = accepted
	return result, nil
}

// ProgramWeekRow is one persisted ai_program_weeks row.
type ProgramWeekRow struct {
	ID         string         `json:"id"`
	ProgramID  string         `json:"program_id"`
	UserID     string         `json:"user_id"`
	WeekNumber int            `json:"week_number"`
	Theme      sql.NullString `json:"theme"`
	StartDate  string         `json:"start_date"`
}

// ListProgramWeeks returns the persisted weeks for a program in order.
func ListProgramWeeks(db *sql.DB, userID, programID string) ([]*ProgramWeekRow, error) {
	rows, err := db.Query(
		`SELECT id, program_id, user_id, week_number, theme, start_date
		 FROM ai_program_weeks WHERE program_id = ? AND user_id = ?
		 ORDER BY week_number ASC`, programID, userID)
	if err != nil {
		return nil, fmt.Errorf("models: list weeks for program %s: %w", programID, err)
	}
	defer rows.Close()

	var weeks []*ProgramWeekRow
	for rows.Next() {
		w := &ProgramWeekRow{}
		if err := rows.Scan(&w.ID, &w.ProgramID, &w.UserID, &w.WeekNumber, &w.Theme, &w.StartDate); err != nil {
			return nil, fmt.Errorf("models: scan program week: %w", err)
		}
		w.StartDate = normalizeDate(w.StartDate)
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
