package models

import (
	"errors"
	"testing"
)

func TestCreateExerciseDefaults(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	w := seedWorkout(t, db, u.ID, "Push Day", "2026-03-02", "push", WorkoutPlanned)

	e, err := CreateExercise(db, u.ID, w.ID, NewExercise{
		ExerciseName: "Dips",
		ExpectedSets: 3,
		ExpectedReps: 12,
	})
	if err != nil {
		t.Fatalf("create exercise: %v", err)
	}
	if e.RestInSeconds != 90 {
		t.Errorf("rest_in_seconds = %d, want default 90", e.RestInSeconds)
	}
	if e.RPE != 7 {
		t.Errorf("rpe = %d, want default 7", e.RPE)
	}
	if e.RecommendedWeight.Valid {
		t.Errorf("expected recommended_weight to be null, got %q", e.RecommendedWeight.String)
	}
	if e.RealizedSets.Valid {
		t.Error("expected realized_sets to start null")
	}
}

func TestCreateExerciseUnknownWorkout(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)

	_, err := CreateExercise(db, u.ID, "missing", NewExercise{ExerciseName: "Dips", ExpectedSets: 3, ExpectedReps: 12})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRealized(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	w := seedWorkout(t, db, u.ID, "Push Day", "2026-03-02", "push", WorkoutDone)
	e := seedExercise(t, db, u.ID, w.ID, "Bench Press")

	sets, reps, weight := 4, 7, "82.5"
	got, err := UpdateRealized(db, u.ID, e.ID, RealizedUpdate{
		RealizedSets:   &sets,
		RealizedReps:   &reps,
		RealizedWeight: &weight,
	})
	if err != nil {
		t.Fatalf("update realized: %v", err)
	}
	if !got.RealizedSets.Valid || got.RealizedSets.Int64 != 4 {
		t.Errorf("realized_sets = %v, want 4", got.RealizedSets)
	}
	if !got.RealizedWeight.Valid || got.RealizedWeight.String != "82.5" {
		t.Errorf("realized_weight = %v, want 82.5", got.RealizedWeight)
	}

	// Partial update leaves other columns alone.
	notes := "elbow pain on last set"
	got, err = UpdateRealized(db, u.ID, e.ID, RealizedUpdate{Notes: &notes})
	if err != nil {
		t.Fatalf("update notes: %v", err)
	}
	if !got.RealizedSets.Valid || got.RealizedSets.Int64 != 4 {
		t.Errorf("realized_sets lost on partial update: %v", got.RealizedSets)
	}
	if !got.Notes.Valid || got.Notes.String != notes {
		t.Errorf("notes = %v, want %q", got.Notes, notes)
	}
}

func TestListExercisesByWorkoutIDs(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	w1 := seedWorkout(t, db, u.ID, "Push", "2026-03-02", "push", WorkoutDone)
	w2 := seedWorkout(t, db, u.ID, "Pull", "2026-03-04", "pull", WorkoutDone)
	seedExercise(t, db, u.ID, w1.ID, "Bench Press")
	seedExercise(t, db, u.ID, w1.ID, "Dips")
	seedExercise(t, db, u.ID, w2.ID, "Rows")

	got, err := ListExercisesByWorkoutIDs(db, u.ID, []string{w1.ID, w2.ID})
	if err != nil {
		t.Fatalf("list by workout ids: %v", err)
	}
	if len(got[w1.ID]) != 2 || len(got[w2.ID]) != 1 {
		t.Errorf("got %d/%d exercises, want 2/1", len(got[w1.ID]), len(got[w2.ID]))
	}

	empty, err := ListExercisesByWorkoutIDs(db, u.ID, nil)
	if err != nil {
		t.Fatalf("list with no ids: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d entries for empty id list, want 0", len(empty))
	}
}
