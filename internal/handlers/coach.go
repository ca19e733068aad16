package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gymbuddy-app/gymbuddy/internal/llm"
	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// Coach endpoint flow, shared by all three orchestrators: quota check first
// (before any context is gathered, so a rejected call costs nothing), then
// context gathering, prompt build, model call with one JSON-repair retry,
// validation, usage logging, persistence. Usage is logged only for calls
// that produced a valid result.

// checkQuota enforces the per-user daily call limit. It writes the 429
// response itself and returns ok=false when the limit is reached. The
// returned count feeds the near-limit warning.
func (api *API) checkQuota(w http.ResponseWriter, uid string) (count int, ok bool) {
	limit := models.GetDailyAILimit(api.DB)
	count, err := models.CountUsageSince(api.DB, uid, models.StartOfUTCDay(api.now()))
	if err != nil {
		log.Printf("handlers: count AI usage: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return 0, false
	}
	if count >= limit {
		respondJSON(w, http.StatusTooManyRequests, map[string]string{
			"error":   "daily_limit",
			"message": fmt.Sprintf("You have reached your daily AI limit (%d/%d). Try again tomorrow.", limit, limit),
		})
		return count, false
	}
	return count, true
}

// usageWarning returns the non-fatal near-limit warning, or "" when the user
// is not about to run out.
func (api *API) usageWarning(count int) string {
	limit := models.GetDailyAILimit(api.DB)
	if count >= limit-2 {
		return fmt.Sprintf("%d/%d daily AI calls used", count+1, limit)
	}
	return ""
}

// coachError maps model-invocation failures to responses. invalidMsg is the
// endpoint-specific 502 message for unparsable output.
func coachError(w http.ResponseWriter, err error, invalidMsg string) {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, llm.ErrInvalidJSON):
		errorJSON(w, http.StatusBadGateway, invalidMsg)
	case errors.Is(err, llm.ErrNotConfigured):
		errorJSON(w, http.StatusServiceUnavailable, "AI coach is not configured")
	case errors.As(err, &apiErr):
		log.Printf("handlers: model call failed: %v", err)
		errorJSON(w, http.StatusBadGateway, apiErr.UserMessage())
	default:
		log.Printf("handlers: model call failed: %v", err)
		errorJSON(w, http.StatusBadGateway, "AI request failed. Please try again.")
	}
}

type generateProgramInput struct {
	SpecificInstructions string `json:"specific_instructions"`
	Feedback             string `json:"feedback"`
}

// GenerateProgram asks the model for a complete multi-week training program
// and stores it in the proposed state.
func (api *API) GenerateProgram(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var in generateProgramInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	count, ok := api.checkQuota(w, uid)
	if !ok {
		return
	}

	pc, err := llm.GatherProgramContext(api.DB, uid, api.now())
	if errors.Is(err, models.ErrNotFound) {
		errorJSON(w, http.StatusBadRequest, "Complete your profile first")
		return
	}
	if err != nil {
		log.Printf("handlers: gather program context: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	provider, err := api.provider()
	if err != nil {
		coachError(w, err, "AI returned invalid JSON. Please try again.")
		return
	}

	userPrompt := llm.BuildProgramPrompt(pc, in.SpecificInstructions, in.Feedback)

	var data models.ProgramData
	inv, err := llm.GenerateObject(r.Context(), provider, llm.SystemPrompt(pc.Profile),
		userPrompt, llm.ProgramOptions, &data)
	if err != nil {
		coachError(w, err, "AI returned invalid JSON. Please try again.")
		return
	}

	if data.Name == "" || len(data.Weeks) == 0 {
		errorJSON(w, http.StatusBadGateway, "AI returned an incomplete program. Please try again.")
		return
	}

	if _, err := models.InsertUsageLog(api.DB, uid, "generate-program",
		inv.InputTokens, inv.OutputTokens, inv.Model); err != nil {
		log.Printf("handlers: log AI usage: %v", err)
	}

	program, err := models.CreateProgram(api.DB, uid, &data, inv.Raw, userPrompt)
	if err != nil {
		log.Printf("handlers: save program: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := map[string]any{"program": program}
	if warning := api.usageWarning(count); warning != "" {
		resp["warning"] = warning
	}
	respondJSON(w, http.StatusOK, resp)
}

type analyzeWorkoutInput struct {
	WorkoutID string `json:"workout_id"`
}

// AnalyzeWorkout asks the model for a critique of one completed workout.
func (api *API) AnalyzeWorkout(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var in analyzeWorkoutInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.WorkoutID == "" {
		errorJSON(w, http.StatusBadRequest, "workout_id is required")
		return
	}

	if _, ok := api.checkQuota(w, uid); !ok {
		return
	}

	ac, err := llm.GatherAnalysisContext(api.DB, uid, in.WorkoutID)
	if errors.Is(err, models.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "Workout not found")
		return
	}
	if errors.Is(err, llm.ErrNoExercises) {
		errorJSON(w, http.StatusBadRequest, "No exercises found for this workout")
		return
	}
	if err != nil {
		log.Printf("handlers: gather analysis context: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	provider, err := api.provider()
	if err != nil {
		coachError(w, err, "AI returned invalid analysis. Please try again.")
		return
	}

	var data models.AnalysisData
	inv, err := llm.GenerateObject(r.Context(), provider, llm.SystemPrompt(ac.Profile),
		llm.BuildAnalysisPrompt(ac), llm.AnalysisOptions, &data)
	if err != nil {
		coachError(w, err, "AI returned invalid analysis. Please try again.")
		return
	}

	if _, err := models.InsertUsageLog(api.DB, uid, "analyze-workout",
		inv.InputTokens, inv.OutputTokens, inv.Model); err != nil {
		log.Printf("handlers: log AI usage: %v", err)
	}

	analysis, err := models.CreateAnalysis(api.DB, uid, in.WorkoutID, &data, inv.Raw)
	if err != nil {
		log.Printf("handlers: save analysis: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

// WeeklyDigest asks the model for a summary of the trailing week and stores
// it as a progression recommendation.
func (api *API) WeeklyDigest(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	count, ok := api.checkQuota(w, uid)
	if !ok {
		return
	}

	dc, err := llm.GatherDigestContext(api.DB, uid, api.now())
	if errors.Is(err, models.ErrNotFound) {
		errorJSON(w, http.StatusBadRequest, "Complete your profile first")
		return
	}
	if err != nil {
		log.Printf("handlers: gather digest context: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(dc.Done) == 0 {
		errorJSON(w, http.StatusBadRequest, "No completed workouts this week to analyze.")
		return
	}

	provider, err := api.provider()
	if err != nil {
		coachError(w, err, "AI returned invalid digest. Please try again.")
		return
	}

	inv, err := llm.GenerateJSON(r.Context(), provider, llm.SystemPrompt(dc.Profile),
		llm.BuildDigestPrompt(dc), llm.DigestOptions)
	if err != nil {
		coachError(w, err, "AI returned invalid digest. Please try again.")
		return
	}

	var digest struct {
		WeekSummary string `json:"week_summary"`
	}
	if err := json.Unmarshal(inv.Raw, &digest); err != nil {
		errorJSON(w, http.StatusBadGateway, "AI returned invalid digest. Please try again.")
		return
	}

	if _, err := models.InsertUsageLog(api.DB, uid, "weekly-digest",
		inv.InputTokens, inv.OutputTokens, inv.Model); err != nil {
		log.Printf("handlers: log AI usage: %v", err)
	}

	title := fmt.Sprintf("Weekly Digest - %s - %s", dc.WeekStart, dc.WeekEnd)
	if _, err := models.CreateRecommendation(api.DB, uid, models.RecommendationProgression,
		title, digest.WeekSummary, inv.Raw, models.PriorityMedium); err != nil {
		log.Printf("handlers: save digest recommendation: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := map[string]any{"digest": inv.Raw}
	if warning := api.usageWarning(count); warning != "" {
		resp["warning"] = warning
	}
	respondJSON(w, http.StatusOK, resp)
}
