package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gymbuddy-app/gymbuddy/internal/database"
	"github.com/gymbuddy-app/gymbuddy/internal/llm"
	"github.com/gymbuddy-app/gymbuddy/internal/middleware"
	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// testNow is the frozen clock used by handler tests.
var testNow = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

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

// newTestAPI builds an API wired to an in-memory database, a scripted model
// provider, and a frozen clock.
func newTestAPI(t testing.TB) (*API, *llm.MockProvider) {
	t.Helper()

	db := testDB(t)
	mock := llm.NewMockProvider()
	api := NewAPI(db, middleware.NewAuthenticator([]byte("test-secret")))
	api.NewProvider = func(*sql.DB) (llm.Provider, error) { return mock, nil }
	api.Now = func() time.Time { return testNow }
	return api, mock
}

// testRouter mounts the API routes the way the server does, including the
// auth middleware.
func testRouter(api *API) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS)

	r.Post("/api/auth/register", api.Register)
	r.Post("/api/auth/login", api.Login)

	r.Route("/api", func(r chi.Router) {
		r.Use(api.Auth.RequireAuth)

		r.Get("/auth/me", api.Me)
		r.Get("/profile", api.GetProfile)
		r.Put("/profile", api.PutProfile)

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", api.ListWorkouts)
			r.Post("/", api.CreateWorkout)
			r.Post("/import", api.ImportCSV)
			r.Get("/export", api.ExportCSV)
			r.Get("/{id}", api.GetWorkout)
			r.Put("/{id}", api.UpdateWorkout)
			r.Delete("/{id}", api.DeleteWorkout)
			r.Get("/{id}/exercises", api.ListExercises)
			r.Post("/{id}/exercises", api.CreateExercise)
			r.Get("/{id}/analysis", api.GetWorkoutAnalysis)
		})

		r.Put("/exercises/{id}", api.UpdateExercise)
		r.Delete("/exercises/{id}", api.DeleteExercise)

		r.Post("/coach/generate-program", api.GenerateProgram)
		r.Post("/coach/analyze-workout", api.AnalyzeWorkout)
		r.Post("/coach/weekly-digest", api.WeeklyDigest)

		r.Route("/programs", func(r chi.Router) {
			r.Get("/", api.ListPrograms)
			r.Get("/{id}", api.GetProgram)
			r.Post("/{id}/accept", api.AcceptProgram)
			r.Post("/{id}/reject", api.RejectProgram)
		})

		r.Get("/analyses", api.ListAnalyses)
		r.Get("/recommendations", api.ListRecommendations)
		r.Get("/recommendations/{id}", api.GetRecommendation)
		r.Delete("/recommendations/{id}", api.DeleteRecommendation)
		r.Get("/usage", api.GetUsage)
		r.Get("/usage/logs", api.ListUsageLogs)

		r.Get("/settings", api.ListSettings)
		r.Put("/settings/{key}", api.UpdateSetting)
		r.Delete("/settings/{key}", api.DeleteSetting)
	})

	return r
}

// seedAthlete creates a user with a completed profile and returns the user
// plus a bearer token for requests.
func seedAthlete(t testing.TB, api *API) (*models.User, string) {
	t.Helper()

	u, err := models.CreateUser(api.DB, "athlete@example.com", "secret-password")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	_, err = models.UpsertProfile(api.DB, &models.AthleteProfile{
		UserID:              u.ID,
		Age:                 sql.NullInt64{Int64: 31, Valid: true},
		WeightExperience:    sql.NullString{String: "intermediate", Valid: true},
		GoalsRanked:         []models.RankedGoal{{Goal: "hypertrophy", Priority: 1}},
		Language:            "en",
		OnboardingCompleted: true,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	token, err := api.Auth.IssueToken(u.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return u, token
}

// seedDoneWorkout creates a completed workout with one tracked exercise.
func seedDoneWorkout(t testing.TB, api *API, userID, name, date, workoutType string) *models.Workout {
	t.Helper()

	w, err := models.CreateWorkout(api.DB, userID, name, date, workoutType, models.WorkoutDone, "", models.SourceManual)
	if err != nil {
		t.Fatalf("seed workout: %v", err)
	}
	e, err := models.CreateExercise(api.DB, userID, w.ID, models.NewExercise{
		ExerciseName:      "Bench Press",
		ExpectedSets:      4,
		ExpectedReps:      8,
		RecommendedWeight: "80",
		RestInSeconds:     150,
		RPE:               8,
	})
	if err != nil {
		t.Fatalf("seed exercise: %v", err)
	}
	sets, reps, weight := 4, 8, "82.5"
	if _, err := models.UpdateRealized(api.DB, userID, e.ID, models.RealizedUpdate{
		RealizedSets:   &sets,
		RealizedReps:   &reps,
		RealizedWeight: &weight,
	}); err != nil {
		t.Fatalf("seed realized: %v", err)
	}
	return w
}

// seedUsage inserts n usage log rows for the user, timestamped now.
func seedUsage(t testing.TB, api *API, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := models.InsertUsageLog(api.DB, userID, "generate-program", 100, 50, "mock"); err != nil {
			t.Fatalf("seed usage: %v", err)
		}
	}
}

// doJSON performs a request against the router with an optional bearer token
// and JSON body.
func doJSON(t testing.TB, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

// decodeBody unmarshals a recorded JSON response.
func decodeBody(t testing.TB, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// validProgramJSON is a minimal but complete model response for
// generate-program.
func validProgramJSON(t testing.TB) string {
	t.Helper()
	data := models.ProgramData{
		Name:      "Hypertrophy Block",
		SplitType: "upper_lower",
		Weeks: []models.ProgramWeek{
			{
				WeekNumber: 1,
				Workouts: []models.ProgramWorkout{
					{
						DayOfWeek:   "monday",
						Name:        "Upper A",
						WorkoutType: "Strength",
						Exercises: []models.ProgramExercise{
							{ExerciseName: "Bench Press", ExpectedSets: 4, ExpectedReps: 8, RestInSeconds: 150, RPE: 8},
						},
					},
				},
			},
		},
	}
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal program: %v", err)
	}
	return string(b)
}

const validAnalysisJSON = `{
	"summary": "Strong session, bench moving well.",
	"performance_rating": "on_track",
	"highlights": [{"exercise_name": "Bench Press", "observation": "Hit all planned sets", "trend": "improving"}],
	"watch_items": [],
	"coaching_tip": "Add a back-off set next week."
}`

const validDigestJSON = `{
	"week_summary": "Consistent week with two quality sessions.",
	"overall_rating": "good",
	"workouts_completed": 2,
	"workouts_planned": 3,
	"key_achievements": ["Bench PR"],
	"areas_to_improve": ["Sleep"],
	"recommendations": ["Keep the Friday session"],
	"motivational_note": "Keep showing up."
}`
