package llm

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

func TestSystemPrompt(t *testing.T) {
	if got := SystemPrompt(nil); got != "You are a personal sports coach." {
		t.Errorf("default = %q", got)
	}

	custom := &models.AthleteProfile{
		CustomCoachingPrompt: sql.NullString{String: "You are a powerlifting specialist.", Valid: true},
	}
	if got := SystemPrompt(custom); got != "You are a powerlifting specialist." {
		t.Errorf("custom = %q", got)
	}
}

func TestRespondIn(t *testing.T) {
	if got := respondIn(nil); got != "French (FR)" {
		t.Errorf("nil profile = %q, want French default", got)
	}
	if got := respondIn(&models.AthleteProfile{Language: "fr"}); got != "French (FR)" {
		t.Errorf("fr = %q", got)
	}
	if got := respondIn(&models.AthleteProfile{Language: "en"}); got != "English (EN)" {
		t.Errorf("en = %q", got)
	}
}

func TestBuildProgramPrompt(t *testing.T) {
	pc := &ProgramContext{
		Profile: &models.AthleteProfile{
			Age:         sql.NullInt64{Int64: 31, Valid: true},
			GoalsRanked: []models.RankedGoal{{Goal: "hypertrophy", Priority: 1}, {Goal: "strength", Priority: 2}},
			Language:    "en",
		},
		TrainingHistory: "No completed workouts yet.",
	}

	prompt := BuildProgramPrompt(pc, "Focus on squat technique", "Last block was too easy")

	for _, want := range []string{
		"ATHLETE PROFILE:",
		"Age: 31",
		"Weight: N/A kg",
		"Injuries/limitations: None",
		"Goals: 1. hypertrophy, 2. strength",
		"TRAINING HISTORY (last 8 weeks):",
		"No completed workouts yet.",
		"TASK: Generate a complete, personalized workout program for this athlete.",
		"SPECIFIC INSTRUCTIONS FROM ATHLETE: Focus on squat technique",
		"FEEDBACK ON PREVIOUS PROGRAM: Last block was too easy",
		"RESPOND IN: English (EN)",
		"OUTPUT: Return ONLY valid JSON matching this schema (no markdown, no explanation, just JSON):",
		`"week_number": number`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Optional sections are omitted when empty.
	bare := BuildProgramPrompt(pc, "", "")
	if strings.Contains(bare, "SPECIFIC INSTRUCTIONS") || strings.Contains(bare, "FEEDBACK ON PREVIOUS PROGRAM") {
		t.Error("empty optional sections should be omitted")
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	ac := &AnalysisContext{
		Workout: &models.Workout{
			Date:        "2026-03-09",
			WorkoutType: "push",
			Name:        "Push Day",
			Notes:       sql.NullString{String: "short on sleep", Valid: true},
		},
		Profile: &models.AthleteProfile{
			WeightExperience: sql.NullString{String: "intermediate", Valid: true},
			GoalsRanked:      []models.RankedGoal{{Goal: "hypertrophy"}},
			Language:         "fr",
		},
		ExerciseTable: "Bench Press: planned 4×8@80kg RPE8 | realized 4×8@82.5kg",
		TrendHistory:  "No previous workouts of this type.",
		TrendCount:    0,
	}

	prompt := BuildAnalysisPrompt(ac)

	for _, want := range []string{
		"WORKOUT COMPLETED:\nDate: 2026-03-09\nType: push\nName: Push Day",
		"EXERCISES (planned vs realized):",
		"WORKOUT NOTES: short on sleep",
		"TREND (last 0 similar workouts):\nNo previous workouts of this type.",
		"ATHLETE CONTEXT: intermediate level, goals: hypertrophy",
		"Be encouraging but honest. Never be punishing.",
		"RESPOND IN: French (FR)",
		`"performance_rating": "exceeded | on_track | below_target | needs_attention"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildDigestPrompt(t *testing.T) {
	dc := &DigestContext{
		Profile: &models.AthleteProfile{
			WeightExperience: sql.NullString{String: "beginner", Valid: true},
			Language:         "en",
		},
		WeekStart: "2026-03-02",
		WeekEnd:   "2026-03-09",
		Done:      []*models.Workout{{Name: "Push A"}, {Name: "Pull A"}},
		Summaries: "2026-03-03 | push | Push A",
	}

	prompt := BuildDigestPrompt(dc)

	for _, want := range []string{
		"WEEKLY DIGEST REQUEST",
		"WEEK: 2026-03-02 to 2026-03-09",
		"COMPLETED WORKOUTS (2):",
		"MISSED/REMAINING PLANNED (0):\nNone",
		"ATHLETE CONTEXT: beginner level, goals: N/A",
		"RESPOND IN: English (EN)",
		`"week_summary"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	dc.Planned = []*models.Workout{{Date: "2026-03-08", WorkoutType: "legs", Name: "Leg Day"}}
	prompt = BuildDigestPrompt(dc)
	if !strings.Contains(prompt, "MISSED/REMAINING PLANNED (1):\n2026-03-08 | legs | Leg Day") {
		t.Errorf("prompt missing planned section:\n%s", prompt)
	}
}
