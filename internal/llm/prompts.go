package llm

import (
	"fmt"
	"strings"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// defaultSystemPrompt is used when the athlete has no custom coaching prompt.
const defaultSystemPrompt = "You are a personal sports coach."

// Per-orchestrator generation options. Program generation runs hotter and
// longer for creative multi-week output; analysis and digest run cooler for
// consistent structured critiques.
var (
	ProgramOptions  = Options{Temperature: 0.7, MaxTokens: 4096}
	AnalysisOptions = Options{Temperature: 0.3, MaxTokens: 1024}
	DigestOptions   = Options{Temperature: 0.4, MaxTokens: 2048}
)

const programSchema = `{
  "name": "string (program name)",
  "description": "string (brief description)",
  "split_type": "string (e.g. Push/Pull/Legs, Upper/Lower, Full Body)",
  "duration_weeks": number (how many weeks),
  "progression_notes": "string (how to progress week to week)",
  "deload_strategy": "string (deload approach)",
  "weeks": [
    {
      "week_number": number,
      "theme": "string (e.g. Volume phase, Intensity phase)",
      "workouts": [
        {
          "day_of_week": "monday|tuesday|wednesday|thursday|friday|saturday|sunday",
          "name": "string (workout name)",
          "workout_type": "Strength|Cardio|Flexibility|Mixed",
          "exercises": [
            {
              "exercise_name": "string",
              "expected_sets": number,
              "expected_reps": number,
              "recommended_weight": "string or null (e.g. '80' for 80kg)",
              "rest_in_seconds": number,
              "rpe": number (1-10)
            }
          ]
        }
      ]
    }
  ]
}`

const analysisSchema = `{
  "summary": "string (2-3 sentence overview of the workout performance)",
  "performance_rating": "exceeded | on_track | below_target | needs_attention",
  "highlights": [{ "exercise_name": "string", "observation": "string", "trend": "improving | stable | declining" }],
  "watch_items": [{ "exercise_name": "string", "observation": "string", "trend": "improving | stable | declining" }],
  "coaching_tip": "string (one actionable tip for next session)"
}`

const digestSchema = `{
  "week_summary": "string (2-4 sentence overview of the entire week)",
  "overall_rating": "excellent | good | average | needs_improvement",
  "workouts_completed": number,
  "workouts_planned": number,
  "key_achievements": ["string (1-3 specific achievements)"],
  "areas_to_improve": ["string (1-3 areas needing work)"],
  "recommendations": ["string (1-3 actionable recommendations for next week)"],
  "motivational_note": "string (short personalized motivational message)"
}`

// SystemPrompt resolves the system instruction: the athlete's custom
// coaching prompt when set, else the generic default.
func SystemPrompt(profile *models.AthleteProfile) string {
	if profile != nil && profile.CustomCoachingPrompt.Valid && profile.CustomCoachingPrompt.String != "" {
		return profile.CustomCoachingPrompt.String
	}
	return defaultSystemPrompt
}

// respondIn maps the profile language preference to the prompt's language
// directive.
func respondIn(profile *models.AthleteProfile) string {
	lang := "fr"
	if profile != nil && profile.Language != "" {
		lang = profile.Language
	}
	if lang == "fr" {
		return "French (FR)"
	}
	return "English (EN)"
}

// BuildProgramPrompt assembles the generate-program user prompt.
func BuildProgramPrompt(pc *ProgramContext, specificInstructions, feedback string) string {
	var b strings.Builder

	b.WriteString("ATHLETE PROFILE:\n")
	b.WriteString(profileBlock(pc.Profile))
	b.WriteString("\n\nTRAINING HISTORY (last 8 weeks):\n")
	b.WriteString(pc.TrainingHistory)
	b.WriteString("\n\nTASK: Generate a complete, personalized workout program for this athlete.\n")
	if specificInstructions != "" {
		fmt.Fprintf(&b, "\nSPECIFIC INSTRUCTIONS FROM ATHLETE: %s\n", specificInstructions)
	}
	if feedback != "" {
		fmt.Fprintf(&b, "\nFEEDBACK ON PREVIOUS PROGRAM: %s\n", feedback)
	}
	fmt.Fprintf(&b, "\nRESPOND IN: %s\n", respondIn(pc.Profile))
	b.WriteString("\nOUTPUT: Return ONLY valid JSON matching this schema (no markdown, no explanation, just JSON):\n")
	b.WriteString(programSchema)

	return b.String()
}

// BuildAnalysisPrompt assembles the analyze-workout user prompt.
func BuildAnalysisPrompt(ac *AnalysisContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "WORKOUT COMPLETED:\nDate: %s\nType: %s\nName: %s\n",
		ac.Workout.Date, ac.Workout.WorkoutType, ac.Workout.Name)
	b.WriteString("\nEXERCISES (planned vs realized):\n")
	b.WriteString(ac.ExerciseTable)
	b.WriteString("\n")
	if ac.Workout.Notes.Valid && ac.Workout.Notes.String != "" {
		fmt.Fprintf(&b, "\nWORKOUT NOTES: %s\n", ac.Workout.Notes.String)
	}
	fmt.Fprintf(&b, "\nTREND (last %d similar workouts):\n%s\n", ac.TrendCount, ac.TrendHistory)
	if ac.Profile != nil {
		fmt.Fprintf(&b, "\nATHLETE CONTEXT: %s level, goals: %s\n",
			orNA(ac.Profile.WeightExperience.String), goalsList(ac.Profile))
	}
	b.WriteString("\nTASK: Analyze this completed workout. Compare realized vs planned performance. Identify highlights and areas to watch. Be encouraging but honest. Never be punishing.\n")
	fmt.Fprintf(&b, "\nRESPOND IN: %s\n", respondIn(ac.Profile))
	b.WriteString("\nOUTPUT: Return ONLY valid JSON matching this schema (no markdown, no explanation, just JSON):\n")
	b.WriteString(analysisSchema)

	return b.String()
}

// BuildDigestPrompt assembles the weekly-digest user prompt.
func BuildDigestPrompt(dc *DigestContext) string {
	var b strings.Builder

	b.WriteString("WEEKLY DIGEST REQUEST\n\n")
	fmt.Fprintf(&b, "WEEK: %s to %s\n", dc.WeekStart, dc.WeekEnd)
	fmt.Fprintf(&b, "COMPLETED WORKOUTS (%d):\n%s\n", len(dc.Done), dc.Summaries)
	fmt.Fprintf(&b, "\nMISSED/REMAINING PLANNED (%d):\n", len(dc.Planned))
	if len(dc.Planned) > 0 {
		for i, w := range dc.Planned {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s | %s | %s", w.Date, w.WorkoutType, w.Name)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("None\n")
	}
	fmt.Fprintf(&b, "\nATHLETE CONTEXT: %s level, goals: %s\n",
		orNA(dc.Profile.WeightExperience.String), goalsList(dc.Profile))
	b.WriteString("\nTASK: Create a weekly digest summarizing this athlete's training week. Be encouraging but honest. Highlight achievements and areas for improvement. Give actionable recommendations for next week.\n")
	fmt.Fprintf(&b, "\nRESPOND IN: %s\n", respondIn(dc.Profile))
	b.WriteString("\nOUTPUT: Return ONLY valid JSON matching this schema (no markdown, no explanation, just JSON):\n")
	b.WriteString(digestSchema)

	return b.String()
}

// profileBlock renders the athlete profile as one prompt line per field,
// with N/A fallbacks so the model never sees raw nulls.
func profileBlock(p *models.AthleteProfile) string {
	goals := make([]string, len(p.GoalsRanked))
	for i, g := range p.GoalsRanked {
		goals[i] = fmt.Sprintf("%d. %s", i+1, g.Goal)
	}
	sports := make([]string, len(p.SportsHistory))
	for i, s := range p.SportsHistory {
		sports[i] = fmt.Sprintf("%s (%dy, %s)", s.Sport, s.Years, s.Level)
	}

	lines := []string{
		"Age: " + orNA(nullInt(p.Age)),
		"Weight: " + orNA(nullFloat(p.WeightKg)) + " kg",
		"Height: " + orNA(nullFloat(p.HeightCm)) + " cm",
		"Gender: " + orNA(p.Gender.String),
		"Experience: " + orNA(p.WeightExperience.String),
		"Current frequency: " + orNA(nullInt(p.CurrentFrequency)) + " days/week",
		"Current split: " + orNA(p.CurrentSplit.String),
		"Injuries/limitations: " + orNone(p.InjuriesLimitations.String),
		"Goals: " + orNA(strings.Join(goals, ", ")),
		"Goal timeline: " + orNA(p.GoalTimeline.String),
		"Available days: " + orNA(strings.Join(p.AvailableDays, ", ")),
		"Session duration: " + orNA(nullInt(p.SessionDuration)) + " min",
		"Equipment: " + orNA(p.Equipment.String),
		"Sports history: " + orNone(strings.Join(sports, ", ")),
		"Nutrition: " + orNA(p.NutritionContext.String),
		"Additional notes: " + orNone(p.AdditionalNotes.String),
	}
	return strings.Join(lines, "\n")
}

func goalsList(p *models.AthleteProfile) string {
	goals := make([]string, len(p.GoalsRanked))
	for i, g := range p.GoalsRanked {
		goals[i] = g.Goal
	}
	return orNA(strings.Join(goals, ", "))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
