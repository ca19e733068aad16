package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RankedGoal is one training goal with its priority (1 = highest).
type RankedGoal struct {
	Goal     string `json:"goal"`
	Priority int    `json:"priority"`
}

// SportHistoryEntry describes prior experience in one sport.
type SportHistoryEntry struct {
	Sport string `json:"sport"`
	Years int    `json:"years"`
	Level string `json:"level"`
}

// AthleteProfile is the per-user training context gathered during onboarding.
// At most one profile exists per user; onboarding_completed gates the coach
// endpoints.
type AthleteProfile struct {
	ID                   string              `json:"id"`
	UserID               string              `json:"user_id"`
	Age                  sql.NullInt64       `json:"age"`
	WeightKg             sql.NullFloat64     `json:"weight_kg"`
	HeightCm             sql.NullFloat64     `json:"height_cm"`
	Gender               sql.NullString      `json:"gender"`
	WeightExperience     sql.NullString      `json:"weight_experience"`
	CurrentFrequency     sql.NullInt64       `json:"current_frequency"`
	CurrentSplit         sql.NullString      `json:"current_split"`
	InjuriesLimitations  sql.NullString      `json:"injuries_limitations"`
	GoalsRanked          []RankedGoal        `json:"goals_ranked"`
	GoalTimeline         sql.NullString      `json:"goal_timeline"`
	AvailableDays        []string            `json:"available_days"`
	SessionDuration      sql.NullInt64       `json:"session_duration"`
	Equipment            sql.NullString      `json:"equipment"`
	SportsHistory        []SportHistoryEntry `json:"sports_history"`
	NutritionContext     sql.NullString      `json:"nutrition_context"`
	AdditionalNotes      sql.NullString      `json:"additional_notes"`
	Language             string              `json:"language"`
	CustomCoachingPrompt sql.NullString      `json:"custom_coaching_prompt"`
	OnboardingCompleted  bool                `json:"onboarding_completed"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

const profileColumns = `id, user_id, age, weight_kg, height_cm, gender, weight_experience,
	current_frequency, current_split, injuries_limitations, goals_ranked, goal_timeline,
	available_days, session_duration, equipment, sports_history, nutrition_context,
	additional_notes, language, custom_coaching_prompt, onboarding_completed,
	created_at, updated_at`

func scanProfile(row *sql.Row) (*AthleteProfile, error) {
	p := &AthleteProfile{}
	var goals, days, sports string
	var completed int
	err := row.Scan(&p.ID, &p.UserID, &p.Age, &p.WeightKg, &p.HeightCm, &p.Gender,
		&p.WeightExperience, &p.CurrentFrequency, &p.CurrentSplit, &p.InjuriesLimitations,
		&goals, &p.GoalTimeline, &days, &p.SessionDuration, &p.Equipment, &sports,
		&p.NutritionContext, &p.AdditionalNotes, &p.Language, &p.CustomCoachingPrompt,
		&completed, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: scan profile: %w", err)
	}

	p.OnboardingCompleted = completed != 0
	if err := json.Unmarshal([]byte(goals), &p.GoalsRanked); err != nil {
		p.GoalsRanked = nil
	}
	if err := json.Unmarshal([]byte(days), &p.AvailableDays); err != nil {
		p.AvailableDays = nil
	}
	if err := json.Unmarshal([]byte(sports), &p.SportsHistory); err != nil {
		p.SportsHistory = nil
	}
	return p, nil
}

// GetProfileByUser retrieves the athlete profile for a user.
func GetProfileByUser(db *sql.DB, userID string) (*AthleteProfile, error) {
	row := db.QueryRow(`SELECT `+profileColumns+` FROM athlete_profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get profile for user %s: %w", userID, err)
	}
	return p, nil
}

// UpsertProfile inserts or replaces the athlete profile for p.UserID.
// The one-profile-per-user invariant is carried by the UNIQUE(user_id)
// constraint; an existing row is updated in place, preserving id/created_at.
func UpsertProfile(db *sql.DB, p *AthleteProfile) (*AthleteProfile, error) {
	goals, err := json.Marshal(orEmptyGoals(p.GoalsRanked))
	if err != nil {
		return nil, fmt.Errorf("models: marshal goals_ranked: %w", err)
	}
	days, err := json.Marshal(orEmptyStrings(p.AvailableDays))
	if err != nil {
		return nil, fmt.Errorf("models: marshal available_days: %w", err)
	}
	sports, err := json.Marshal(orEmptySports(p.SportsHistory))
	if err != nil {
		return nil, fmt.Errorf("models: marshal sports_history: %w", err)
	}

	lang := p.Language
	if lang == "" {
		lang = "fr"
	}
	completed := 0
	if p.OnboardingCompleted {
		completed = 1
	}

	_, err = db.Exec(`
		INSERT INTO athlete_profiles (
			id, user_id, age, weight_kg, height_cm, gender, weight_experience,
			current_frequency, current_split, injuries_limitations, goals_ranked,
			goal_timeline, available_days, session_duration, equipment, sports_history,
			nutrition_context, additional_notes, language, custom_coaching_prompt,
			onboarding_completed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			age = excluded.age,
			weight_kg = excluded.weight_kg,
			height_cm = excluded.height_cm,
			gender = excluded.gender,
			weight_experience = excluded.weight_experience,
			current_frequency = excluded.current_frequency,
			current_split = excluded.current_split,
			injuries_limitations = excluded.injuries_limitations,
			goals_ranked = excluded.goals_ranked,
			goal_timeline = excluded.goal_timeline,
			available_days = excluded.available_days,
			session_duration = excluded.session_duration,
			equipment = excluded.equipment,
			sports_history = excluded.sports_history,
			nutrition_context = excluded.nutrition_context,
			additional_notes = excluded.additional_notes,
			language = excluded.language,
			custom_coaching_prompt = excluded.custom_coaching_prompt,
			onboarding_completed = excluded.onboarding_completed,
			updated_at = CURRENT_TIMESTAMP`,
		newID(), p.UserID, p.Age, p.WeightKg, p.HeightCm, p.Gender, p.WeightExperience,
		p.CurrentFrequency, p.CurrentSplit, p.InjuriesLimitations, string(goals),
		p.GoalTimeline, string(days), p.SessionDuration, p.Equipment, string(sports),
		p.NutritionContext, p.AdditionalNotes, lang, p.CustomCoachingPrompt, completed,
	)
	if err != nil {
		return nil, fmt.Errorf("models: upsert profile for user %s: %w", p.UserID, err)
	}

	return GetProfileByUser(db, p.UserID)
}

func orEmptyGoals(g []RankedGoal) []RankedGoal {
	if g == nil {
		return []RankedGoal{}
	}
	return g
}

func orEmptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptySports(s []SportHistoryEntry) []SportHistoryEntry {
	if s == nil {
		return []SportHistoryEntry{}
	}
	return s
}
