package llm

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// Context-gathering windows. History is capped both by age and by count so
// prompt size stays bounded regardless of how much a user trains.
const (
	historyWindowDays = 56
	historyLimit      = 30
	trendLimit        = 4
	digestWindowDays  = 7
)

// ProgramContext is everything program generation needs from the store.
type ProgramContext struct {
	Profile         *models.AthleteProfile
	TrainingHistory string
}

// GatherProgramContext assembles the athlete profile and a compact rendering
// of recent completed workouts. Returns models.ErrNotFound if the user has no
// profile.
func GatherProgramContext(db *sql.DB, userID string, now time.Time) (*ProgramContext, error) {
	profile, err := models.GetProfileByUser(db, userID)
	if err != nil {
		return nil, err
	}

	since := now.UTC().AddDate(0, 0, -historyWindowDays).Format("2006-01-02")
	workouts, err := models.ListCompletedSince(db, userID, since, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("llm: gather training history: %w", err)
	}

	history := "No completed workouts yet."
	if len(workouts) > 0 {
		history, err = renderWorkoutHistory(db, userID, workouts)
		if err != nil {
			return nil, err
		}
	}

	return &ProgramContext{Profile: profile, TrainingHistory: history}, nil
}

// AnalysisContext is everything workout analysis needs from the store.
type AnalysisContext struct {
	Workout       *models.Workout
	Exercises     []*models.Exercise
	Profile       *models.AthleteProfile // nil when the user has no profile
	ExerciseTable string
	TrendHistory  string
	TrendCount    int
}

// ErrNoExercises is returned when the target workout has no exercises to
// analyze.
var ErrNoExercises = errors.New("llm: workout has no exercises")

// GatherAnalysisContext assembles the target workout, its exercises, and a
// trend rendering of the last few completed workouts of the same type.
func GatherAnalysisContext(db *sql.DB, userID, workoutID string) (*AnalysisContext, error) {
	workout, err := models.GetWorkoutByID(db, userID, workoutID)
	if err != nil {
		return nil, err
	}

	exercises, err := models.ListExercisesByWorkout(db, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, ErrNoExercises
	}

	profile, err := models.GetProfileByUser(db, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	previous, err := models.ListCompletedByType(db, userID, workout.WorkoutType, workoutID, trendLimit)
	if err != nil {
		return nil, err
	}

	trend := "No previous workouts of this type."
	if len(previous) > 0 {
		var b strings.Builder
		byWorkout, err := exercisesByWorkout(db, userID, previous)
		if err != nil {
			return nil, err
		}
		for i, w := range previous {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "%s | %s", w.Date, w.Name)
			for _, e := range byWorkout[w.ID] {
				fmt.Fprintf(&b, "\n  - %s: %s×%s@%skg RPE%d",
					e.ExerciseName,
					orQuestion(nullInt(e.RealizedSets)),
					orQuestion(nullInt(e.RealizedReps)),
					orQuestion(e.RealizedWeight.String),
					e.RPE)
			}
		}
		trend = b.String()
	}

	var table strings.Builder
	for i, e := range exercises {
		if i > 0 {
			table.WriteString("\n")
		}
		fmt.Fprintf(&table, "%s: planned %s | realized %s",
			e.ExerciseName, plannedLine(e), realizedLine(e, "not recorded"))
		if e.Notes.Valid && e.Notes.String != "" {
			fmt.Fprintf(&table, " | notes: %s", e.Notes.String)
		}
	}

	return &AnalysisContext{
		Workout:       workout,
		Exercises:     exercises,
		Profile:       profile,
		ExerciseTable: table.String(),
		TrendHistory:  trend,
		TrendCount:    len(previous),
	}, nil
}

// DigestContext is everything the weekly digest needs from the store.
type DigestContext struct {
	Profile   *models.AthleteProfile
	WeekStart string
	WeekEnd   string
	Done      []*models.Workout
	Planned   []*models.Workout
	Summaries string
}

// GatherDigestContext assembles the trailing week of workouts, split into
// completed and still-planned, with exercises and any prior analyses for the
// completed subset. Returns models.ErrNotFound if the user has no profile.
// A week with zero completed workouts is not an error here; the caller
// decides whether an empty week is worth a model call.
func GatherDigestContext(db *sql.DB, userID string, now time.Time) (*DigestContext, error) {
	profile, err := models.GetProfileByUser(db, userID)
	if err != nil {
		return nil, err
	}

	today := now.UTC().Format("2006-01-02")
	weekStart := now.UTC().AddDate(0, 0, -digestWindowDays).Format("2006-01-02")

	workouts, err := models.ListWorkouts(db, userID, models.WorkoutFilter{From: weekStart, To: today})
	if err != nil {
		return nil, err
	}

	dc := &DigestContext{Profile: profile, WeekStart: weekStart, WeekEnd: today}
	for _, w := range workouts {
		switch w.Status {
		case models.WorkoutDone:
			dc.Done = append(dc.Done, w)
		case models.WorkoutPlanned:
			dc.Planned = append(dc.Planned, w)
		}
	}
	if len(dc.Done) == 0 {
		return dc, nil
	}

	doneIDs := make([]string, len(dc.Done))
	for i, w := range dc.Done {
		doneIDs[i] = w.ID
	}
	exercises, err := models.ListExercisesByWorkoutIDs(db, userID, doneIDs)
	if err != nil {
		return nil, err
	}
	analyses, err := models.ListAnalysesByWorkoutIDs(db, userID, doneIDs)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for i, w := range dc.Done {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s | %s | %s", w.Date, w.WorkoutType, w.Name)
		for _, e := range exercises[w.ID] {
			fmt.Fprintf(&b, "\n  - %s: planned %s | realized %s",
				e.ExerciseName, plannedLine(e), realizedLine(e, "not recorded"))
		}
		if a, ok := analyses[w.ID]; ok {
			fmt.Fprintf(&b, "\n  [Analysis: %s - %s]", a.PerformanceRating.String, a.Summary)
		}
	}
	dc.Summaries = b.String()

	return dc, nil
}

// renderWorkoutHistory renders workouts one per block with exercise lines.
// For training history the realized placeholder is "not tracked".
func renderWorkoutHistory(db *sql.DB, userID string, workouts []*models.Workout) (string, error) {
	byWorkout, err := exercisesByWorkout(db, userID, workouts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, w := range workouts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s | %s | %s", w.Date, w.WorkoutType, w.Name)
		for _, e := range byWorkout[w.ID] {
			fmt.Fprintf(&b, "\n  - %s: planned %s | realized: %s",
				e.ExerciseName, plannedLine(e), realizedLine(e, "not tracked"))
		}
	}
	return b.String(), nil
}

func exercisesByWorkout(db *sql.DB, userID string, workouts []*models.Workout) (map[string][]*models.Exercise, error) {
	ids := make([]string, len(workouts))
	for i, w := range workouts {
		ids[i] = w.ID
	}
	return models.ListExercisesByWorkoutIDs(db, userID, ids)
}

// plannedLine renders "SxR@Wkg RPEn" for the planned side of an exercise.
func plannedLine(e *models.Exercise) string {
	return fmt.Sprintf("%d×%d@%skg RPE%d",
		e.ExpectedSets, e.ExpectedReps, orQuestion(e.RecommendedWeight.String), e.RPE)
}

// realizedLine renders "SxR@Wkg" when realized sets were recorded, else the
// given placeholder.
func realizedLine(e *models.Exercise, placeholder string) string {
	if !e.RealizedSets.Valid {
		return placeholder
	}
	return fmt.Sprintf("%d×%d@%skg",
		e.RealizedSets.Int64, e.RealizedReps.Int64, orQuestion(e.RealizedWeight.String))
}

func nullInt(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return fmt.Sprintf("%d", n.Int64)
}

func nullFloat(n sql.NullFloat64) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

func orQuestion(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
