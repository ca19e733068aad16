package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// profileInput mirrors AthleteProfile with pointer optionals so PUT requests
// can omit fields.
type profileInput struct {
	Age                  *int                       `json:"age"`
	WeightKg             *float64                   `json:"weight_kg"`
	HeightCm             *float64                   `json:"height_cm"`
	Gender               *string                    `json:"gender"`
	WeightExperience     *string                    `json:"weight_experience"`
	CurrentFrequency     *int                       `json:"current_frequency"`
	CurrentSplit         *string                    `json:"current_split"`
	InjuriesLimitations  *string                    `json:"injuries_limitations"`
	GoalsRanked          []models.RankedGoal        `json:"goals_ranked"`
	GoalTimeline         *string                    `json:"goal_timeline"`
	AvailableDays        []string                   `json:"available_days"`
	SessionDuration      *int                       `json:"session_duration"`
	Equipment            *string                    `json:"equipment"`
	SportsHistory        []models.SportHistoryEntry `json:"sports_history"`
	NutritionContext     *string                    `json:"nutrition_context"`
	AdditionalNotes      *string                    `json:"additional_notes"`
	Language             string                     `json:"language"`
	CustomCoachingPrompt *string                    `json:"custom_coaching_prompt"`
	OnboardingCompleted  bool                       `json:"onboarding_completed"`
}

// GetProfile returns the athlete profile for the authenticated user.
func (api *API) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := models.GetProfileByUser(api.DB, userID(r))
	if err != nil {
		notFoundOrError(w, err, "profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// PutProfile creates or replaces the athlete profile.
func (api *API) PutProfile(w http.ResponseWriter, r *http.Request) {
	var in profileInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile := &models.AthleteProfile{
		UserID:               userID(r),
		Age:                  nullIntFrom(in.Age),
		WeightKg:             nullFloatFrom(in.WeightKg),
		HeightCm:             nullFloatFrom(in.HeightCm),
		Gender:               nullStringFrom(in.Gender),
		WeightExperience:     nullStringFrom(in.WeightExperience),
		CurrentFrequency:     nullIntFrom(in.CurrentFrequency),
		CurrentSplit:         nullStringFrom(in.CurrentSplit),
		InjuriesLimitations:  nullStringFrom(in.InjuriesLimitations),
		GoalsRanked:          in.GoalsRanked,
		GoalTimeline:         nullStringFrom(in.GoalTimeline),
		AvailableDays:        in.AvailableDays,
		SessionDuration:      nullIntFrom(in.SessionDuration),
		Equipment:            nullStringFrom(in.Equipment),
		SportsHistory:        in.SportsHistory,
		NutritionContext:     nullStringFrom(in.NutritionContext),
		AdditionalNotes:      nullStringFrom(in.AdditionalNotes),
		Language:             in.Language,
		CustomCoachingPrompt: nullStringFrom(in.CustomCoachingPrompt),
		OnboardingCompleted:  in.OnboardingCompleted,
	}

	saved, err := models.UpsertProfile(api.DB, profile)
	if err != nil {
		log.Printf("handlers: upsert profile: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func nullStringFrom(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullIntFrom(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullFloatFrom(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
