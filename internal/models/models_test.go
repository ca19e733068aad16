package models

import (
	"database/sql"
	"testing"

	"github.com/gymbuddy-app/gymbuddy/internal/database"
)

// testDB creates a fresh in-memory SQLite database with migrations applied.
func testDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t testing.TB, db *sql.DB) *User {
	t.Helper()
	u, err := CreateUser(db, "athlete@example.com", "secret-password")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedWorkout(t testing.TB, db *sql.DB, userID, name, date, workoutType, status string) *Workout {
	t.Helper()
	w, err := CreateWorkout(db, userID, name, date, workoutType, status, "", SourceManual)
	if err != nil {
		t.Fatalf("seed workout %q: %v", name, err)
	}
	return w
}

func seedExercise(t testing.TB, db *sql.DB, userID, workoutID, name string) *Exercise {
	t.Helper()
	e, err := CreateExercise(db, userID, workoutID, NewExercise{
		ExerciseName:      name,
		ExpectedSets:      4,
		ExpectedReps:      8,
		RecommendedWeight: "80",
		RestInSeconds:     120,
		RPE:               8,
	})
	if err != nil {
		t.Fatalf("seed exercise %q: %v", name, err)
	}
	return e
}

func seedProfile(t testing.TB, db *sql.DB, userID string) *AthleteProfile {
	t.Helper()
	p, err := UpsertProfile(db, &AthleteProfile{
		UserID:              userID,
		Age:                 sql.NullInt64{Int64: 31, Valid: true},
		WeightKg:            sql.NullFloat64{Float64: 82.5, Valid: true},
		WeightExperience:    sql.NullString{String: "intermediate", Valid: true},
		GoalsRanked:         []RankedGoal{{Goal: "hypertrophy", Priority: 1}},
		AvailableDays:       []string{"monday", "wednesday", "friday"},
		Language:            "en",
		OnboardingCompleted: true,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}
