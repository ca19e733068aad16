package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func testProgramData() *ProgramData {
	return &ProgramData{
		Name:        "Hypertrophy Block",
		Description: "4-day upper/lower",
		SplitType:   "upper_lower",
		Weeks: []ProgramWeek{
			{
				WeekNumber: 1,
				Theme:      "Accumulation",
				Workouts: []ProgramWorkout{
					{
						DayOfWeek:   "Monday",
						Name:        "Upper A",
						WorkoutType: "upper",
						Exercises: []ProgramExercise{
							{ExerciseName: "Bench Press", ExpectedSets: 4, ExpectedReps: 8, RecommendedWeight: "80", RestInSeconds: 150, RPE: 8},
							{ExerciseName: "Rows", ExpectedSets: 4, ExpectedReps: 10, RestInSeconds: 120, RPE: 8},
						},
					},
					{
						DayOfWeek:   "thursday",
						Name:        "Lower A",
						WorkoutType: "lower",
						Exercises: []ProgramExercise{
							{ExerciseName: "Squat", ExpectedSets: 5, ExpectedReps: 5, RecommendedWeight: "110", RestInSeconds: 180, RPE: 8},
						},
					},
				},
			},
			{
				WeekNumber: 2,
				Theme:      "Intensification",
				Workouts: []ProgramWorkout{
					{
						DayOfWeek:   "monday",
						Name:        "Upper B",
						WorkoutType: "upper",
						Exercises: []ProgramExercise{
							{ExerciseName: "Overhead Press", ExpectedSets: 4, ExpectedReps: 6, RestInSeconds: 150, RPE: 9},
						},
					},
				},
			},
		},
	}
}

func seedProgram(t testing.TB, db *sql.DB, userID string) *AIProgram {
	t.Helper()
	data := testProgramData()
	raw, _ := json.Marshal(data)
	p, err := CreateProgram(db, userID, data, raw, "ATHLETE PROFILE: ...")
	if err != nil {
		t.Fatalf("seed program: %v", err)
	}
	return p
}

func TestCreateProgram(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)

	t.Run("duration falls back to week count", func(t *testing.T) {
		p := seedProgram(t, db, u.ID)
		if p.Status != ProgramProposed {
			t.Errorf("status = %q, want proposed", p.Status)
		}
		if p.DurationWeeks != 2 {
			t.Errorf("duration_weeks = %d, want 2 (len(weeks))", p.DurationWeeks)
		}
	})

	t.Run("generation prompt truncated", func(t *testing.T) {
		data := testProgramData()
		raw, _ := json.Marshal(data)
		long := strings.Repeat("x", 5000)
		p, err := CreateProgram(db, u.ID, data, raw, long)
		if err != nil {
			t.Fatalf("create program: %v", err)
		}
		if len(p.GenerationPrompt.String) != 2000 {
			t.Errorf("generation_prompt length = %d, want 2000", len(p.GenerationPrompt.String))
		}
	})
}

func TestAcceptProgram(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	p := seedProgram(t, db, u.ID)

	result, err := AcceptProgram(db, u.ID, p.ID, "2026-03-02", false)
	if err != nil {
		t.Fatalf("accept program: %v", err)
	}

	if result.Program.Status != ProgramActive {
		t.Errorf("status = %q, want active", result.Program.Status)
	}
	if !result.Program.StartedAt.Valid {
		t.Error("expected started_at to be set")
	}
	if result.WeeksCreated != 2 {
		t.Errorf("weeks_created = %d, want 2", result.WeeksCreated)
	}
	if result.WorkoutsCreated != 3 {
		t.Errorf("workouts_created = %d, want 3", result.WorkoutsCreated)
	}

	// Week 1 Monday = start date, Thursday = +3; week 2 Monday = +7.
	workouts, err := ListWorkouts(db, u.ID, WorkoutFilter{})
	if err != nil {
		t.Fatalf("list workouts: %v", err)
	}
	wantDates := map[string]string{
		"Upper A": "2026-03-02",
		"Lower A": "2026-03-05",
		"Upper B": "2026-03-09",
	}
	for _, w := range workouts {
		if want := wantDates[w.Name]; w.Date != want {
			t.Errorf("%s date = %s, want %s", w.Name, w.Date, want)
		}
		if w.Source != SourceAIGenerated {
			t.Errorf("%s source = %q, want ai_generated", w.Name, w.Source)
		}
		if !w.AIProgramID.Valid || w.AIProgramID.String != p.ID {
			t.Errorf("%s ai_program_id = %v, want %s", w.Name, w.AIProgramID, p.ID)
		}
	}

	// Exercises got materialized under the first workout.
	var upperA *Workout
	for _, w := range workouts {
		if w.Name == "Upper A" {
			upperA = w
		}
	}
	exercises, err := ListExercisesByWorkout(db, u.ID, upperA.ID)
	if err != nil {
		t.Fatalf("list exercises: %v", err)
	}
	if len(exercises) != 2 {
		t.Fatalf("got %d exercises, want 2", len(exercises))
	}
	if exercises[0].ExerciseName != "Bench Press" {
		t.Errorf("first exercise = %q, want Bench Press", exercises[0].ExerciseName)
	}

	weeks, err := ListProgramWeeks(db, u.ID, p.ID)
	if err != nil {
		t.Fatalf("list program weeks: %v", err)
	}
	if len(weeks) != 2 || weeks[1].StartDate != "2026-03-09" {
		t.Fatalf("weeks = %d (second start %s), want 2 with second starting 2026-03-09", len(weeks), weeks[len(weeks)-1].StartDate)
	}
}

func TestAcceptProgramTwice(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	p := seedProgram(t, db, u.ID)

	if _, err := AcceptProgram(db, u.ID, p.ID, "2026-03-02", false); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := AcceptProgram(db, u.ID, p.ID, "2026-03-02", false); !errors.Is(err, ErrProgramNotProposed) {
		t.Fatalf("second accept err = %v, want ErrProgramNotProposed", err)
	}

	// Schedule was not duplicated.
	workouts, _ := ListWorkouts(db, u.ID, WorkoutFilter{})
	if len(workouts) != 3 {
		t.Errorf("got %d workouts after double accept, want 3", len(workouts))
	}
}

func TestAcceptProgramArchivesPriorActive(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)

	first := seedProgram(t, db, u.ID)
	if _, err := AcceptProgram(db, u.ID, first.ID, "2026-03-02", false); err != nil {
		t.Fatalf("accept first: %v", err)
	}

	second := seedProgram(t, db, u.ID)
	result, err := AcceptProgram(db, u.ID, second.ID, "2026-04-06", true)
	if err != nil {
		t.Fatalf("accept second: %v", err)
	}
	if result.ArchivedPrograms != 1 {
		t.Errorf("archived_programs = %d, want 1", result.ArchivedPrograms)
	}
	if result.ArchivedPlanned != 3 {
		t.Errorf("archived_planned = %d, want 3 (first program's schedule)", result.ArchivedPlanned)
	}

	// Exactly one active program remains.
	active, err := ListPrograms(db, u.ID, ProgramActive)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("active programs = %d, want just the second", len(active))
	}

	got, _ := GetProgramByID(db, u.ID, first.ID)
	if got.Status != ProgramArchived {
		t.Errorf("first program status = %q, want archived", got.Status)
	}
}

func TestRejectProgram(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	p := seedProgram(t, db, u.ID)

	if err := RejectProgram(db, u.ID, p.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got, _ := GetProgramByID(db, u.ID, p.ID)
	if got.Status != ProgramRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}

	if err := RejectProgram(db, u.ID, p.ID); !errors.Is(err, ErrProgramNotProposed) {
		t.Fatalf("second reject err = %v, want ErrProgramNotProposed", err)
	}
	if err := RejectProgram(db, u.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing reject err = %v, want ErrNotFound", err)
	}
}
