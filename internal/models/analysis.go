package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AnalysisItem is one observation inside an analysis, tied to an exercise.
type AnalysisItem struct {
	ExerciseName string `json:"exercise_name"`
	Observation  string `json:"observation"`
	Trend        string `json:"trend"` // improving | stable | declining
}

// AnalysisData is the JSON shape the model is asked to produce for a workout
// analysis.
type AnalysisData struct {
	Summary           string         `json:"summary"`
	PerformanceRating string         `json:"performance_rating"` // exceeded | on_track | below_target | needs_attention
	Highlights        []AnalysisItem `json:"highlights"`
	WatchItems        []AnalysisItem `json:"watch_items"`
	CoachingTip       string         `json:"coaching_tip"`
}

// WorkoutAnalysis is a model-generated review of one completed workout. The
// full model response is kept verbatim in AIResponse; the summary columns are
// extracted for list views.
type WorkoutAnalysis struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"user_id"`
	WorkoutID            string          `json:"workout_id"`
	Summary              string          `json:"summary"`
	PerformanceRating    sql.NullString  `json:"performance_rating"`
	Highlights           []AnalysisItem  `json:"highlights"`
	WatchItems           []AnalysisItem  `json:"watch_items"`
	SuggestedAdjustments []AnalysisItem  `json:"suggested_adjustments"`
	CoachingTip          sql.NullString  `json:"coaching_tip"`
	AIResponse           json.RawMessage `json:"ai_response"`
	CreatedAt            time.Time       `json:"created_at"`
}

const analysisColumns = `id, user_id, workout_id, summary, performance_rating, highlights,
	watch_items, suggested_adjustments, coaching_tip, ai_response, created_at`

func scanAnalysis(scan func(dest ...any) error) (*WorkoutAnalysis, error) {
	a := &WorkoutAnalysis{}
	var highlights, watchItems, adjustments, raw string
	err := scan(&a.ID, &a.UserID, &a.WorkoutID, &a.Summary, &a.PerformanceRating,
		&highlights, &watchItems, &adjustments, &a.CoachingTip, &raw, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(highlights), &a.Highlights); err != nil {
		a.Highlights = nil
	}
	if err := json.Unmarshal([]byte(watchItems), &a.WatchItems); err != nil {
		a.WatchItems = nil
	}
	if err := json.Unmarshal([]byte(adjustments), &a.SuggestedAdjustments); err != nil {
		a.SuggestedAdjustments = nil
	}
	a.AIResponse = json.RawMessage(raw)
	return a, nil
}

// CreateAnalysis persists a workout analysis. rawResponse is stored verbatim.
func CreateAnalysis(db *sql.DB, userID, workoutID string, data *AnalysisData, rawResponse json.RawMessage) (*WorkoutAnalysis, error) {
	highlights, err := json.Marshal(orEmptyItems(data.Highlights))
	if err != nil {
		return nil, fmt.Errorf("models: marshal highlights: %w", err)
	}
	watchItems, err := json.Marshal(orEmptyItems(data.WatchItems))
	if err != nil {
		return nil, fmt.Errorf("models: marshal watch_items: %w", err)
	}

	var tip sql.NullString
	if data.CoachingTip != "" {
		tip = sql.NullString{String: data.CoachingTip, Valid: true}
	}

	id := newID()
	_, err = db.Exec(
		`INSERT INTO workout_analyses (id, user_id, workout_id, summary, performance_rating,
		 highlights, watch_items, suggested_adjustments, coaching_tip, ai_response)
		 VALUES (?, ?, ?, ?, ?, ?, ?, '[]', ?, ?)`,
		id, userID, workoutID, data.Summary, nullString(data.PerformanceRating),
		string(highlights), string(watchItems), tip, string(rawResponse))
	if err != nil {
		return nil, fmt.Errorf("models: create analysis for workout %s: %w", workoutID, err)
	}

	return GetAnalysisByID(db, userID, id)
}

// GetAnalysisByID retrieves an analysis owned by the given user.
func GetAnalysisByID(db *sql.DB, userID, id string) (*WorkoutAnalysis, error) {
	row := db.QueryRow(
		`SELECT `+analysisColumns+` FROM workout_analyses WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanAnalysis(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get analysis %s: %w", id, err)
	}
	return a, nil
}

// GetLatestAnalysisForWorkout returns the most recent analysis of a workout,
// or ErrNotFound.
func GetLatestAnalysisForWorkout(db *sql.DB, userID, workoutID string) (*WorkoutAnalysis, error) {
	row := db.QueryRow(
		`SELECT `+analysisColumns+` FROM workout_analyses
		 WHERE workout_id = ? AND user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		workoutID, userID)
	a, err := scanAnalysis(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get analysis for workout %s: %w", workoutID, err)
	}
	return a, nil
}

// ListAnalysesByWorkoutIDs returns the latest analysis per workout for any of
// the given workouts, keyed by workout ID. Used by the digest gatherer.
func ListAnalysesByWorkoutIDs(db *sql.DB, userID string, workoutIDs []string) (map[string]*WorkoutAnalysis, error) {
	result := make(map[string]*WorkoutAnalysis)
	if len(workoutIDs) == 0 {
		return result, nil
	}

	args := make([]any, 0, len(workoutIDs)+1)
	args = append(args, userID)
	for _, id := range workoutIDs {
		args = append(args, id)
	}

	rows, err := db.Query(
		`SELECT `+analysisColumns+` FROM workout_analyses
		 WHERE user_id = ? AND workout_id IN (`+placeholders(len(workoutIDs))+`)
		 ORDER BY created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("models: list analyses by workout ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan analysis: %w", err)
		}
		// Ascending order means the last row wins, keeping the newest.
		result[a.WorkoutID] = a
	}
	return result, rows.Err()
}

// ListAnalyses returns a user's analyses, newest first.
func ListAnalyses(db *sql.DB, userID string, limit int) ([]*WorkoutAnalysis, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT `+analysisColumns+` FROM workout_analyses
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("models: list analyses for user %s: %w", userID, err)
	}
	defer rows.Close()

	var analyses []*WorkoutAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func orEmptyItems(items []AnalysisItem) []AnalysisItem {
	if items == nil {
		return []AnalysisItem{}
	}
	return items
}
