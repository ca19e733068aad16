package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gymbuddy-app/gymbuddy/internal/database"
	"github.com/gymbuddy-app/gymbuddy/internal/handlers"
	"github.com/gymbuddy-app/gymbuddy/internal/middleware"
	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

func main() {
	// Determine database path — default to ./gymbuddy.db, override with GYMBUDDY_DB_PATH.
	dbPath := os.Getenv("GYMBUDDY_DB_PATH")
	if dbPath == "" {
		dbPath = "gymbuddy.db"
	}

	// Determine listen address — default to :8080, override with GYMBUDDY_ADDR.
	addr := os.Getenv("GYMBUDDY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Open database and run migrations.
	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Database ready: %s", filepath.Clean(dbPath))

	// Ensure the settings encryption key exists before anything reads settings.
	secretKey, source, err := models.GetOrCreateSecretKey(db)
	if err != nil {
		log.Fatalf("Failed to initialize secret key: %v", err)
	}
	log.Printf("Secret key loaded from %s", source)

	// Token signing key — defaults to the settings secret key so tokens
	// survive restarts without extra configuration.
	jwtSecret := os.Getenv("GYMBUDDY_JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = secretKey
	}

	if err := bootstrapAdmin(db); err != nil {
		log.Fatalf("Failed to bootstrap admin: %v", err)
	}

	auth := middleware.NewAuthenticator([]byte(jwtSecret))
	api := handlers.NewAPI(db, auth)

	// 20 attempts per minute per IP on the auth endpoints.
	loginLimiter := middleware.NewRateLimiter(20, time.Minute)
	defer loginLimiter.Stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS)

	r.Get("/health", handleHealth)

	// Auth — rate-limited, no token required.
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Limit)
		r.Post("/api/auth/register", api.Register)
		r.Post("/api/auth/login", api.Login)
	})

	// Everything else requires a bearer token.
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth)

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

		r.Route("/exercises", func(r chi.Router) {
			r.Put("/{id}", api.UpdateExercise)
			r.Delete("/{id}", api.DeleteExercise)
		})

		// AI coach orchestrators.
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

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", api.ListRecommendations)
			r.Get("/{id}", api.GetRecommendation)
			r.Delete("/{id}", api.DeleteRecommendation)
		})

		r.Get("/usage", api.GetUsage)
		r.Get("/usage/logs", api.ListUsageLogs)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", api.ListSettings)
			r.Put("/{key}", api.UpdateSetting)
			r.Delete("/{key}", api.DeleteSetting)
		})
	})

	log.Printf("GymBuddy listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// bootstrapAdmin creates an initial account from environment variables if no
// users exist. Optional: open registration covers the normal path.
func bootstrapAdmin(db *sql.DB) error {
	count, err := models.CountUsers(db)
	if err != nil {
		return fmt.Errorf("check user count: %w", err)
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("GYMBUDDY_ADMIN_EMAIL")
	password := os.Getenv("GYMBUDDY_ADMIN_PASS")
	if email == "" || password == "" {
		return nil
	}

	user, err := models.CreateUser(db, email, password)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Printf("Bootstrapped admin user: %s (id=%s)", user.Email, user.ID)
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}
