// Package handlers implements the JSON HTTP API: authentication, profile
// onboarding, workout/exercise CRUD, CSV import/export, and the three AI
// coach endpoints (program generation, workout analysis, weekly digest).
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gymbuddy-app/gymbuddy/internal/llm"
	"github.com/gymbuddy-app/gymbuddy/internal/middleware"
	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// API holds shared dependencies for all handlers.
type API struct {
	DB   *sql.DB
	Auth *middleware.Authenticator

	// NewProvider returns the model client used by the coach endpoints.
	// Overridable so tests can script responses.
	NewProvider func(db *sql.DB) (llm.Provider, error)

	// Now returns the current time. Overridable in tests for stable
	// quota windows and history cutoffs.
	Now func() time.Time
}

// NewAPI creates an API with production defaults.
func NewAPI(db *sql.DB, auth *middleware.Authenticator) *API {
	return &API{
		DB:          db,
		Auth:        auth,
		NewProvider: llm.NewProviderFromSettings,
		Now:         time.Now,
	}
}

func (api *API) now() time.Time {
	if api.Now != nil {
		return api.Now()
	}
	return time.Now()
}

func (api *API) provider() (llm.Provider, error) {
	if api.NewProvider != nil {
		return api.NewProvider(api.DB)
	}
	return llm.NewProviderFromSettings(api.DB)
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

// errorJSON writes an {error} body with the given status.
func errorJSON(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into v. An empty body decodes into the
// zero value so endpoints with all-optional inputs accept empty requests.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// notFoundOrError maps models.ErrNotFound to a 404 and everything else to a
// logged 500.
func notFoundOrError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, models.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, what+" not found")
		return
	}
	log.Printf("handlers: %s: %v", what, err)
	errorJSON(w, http.StatusInternalServerError, "Internal server error")
}

// userID returns the authenticated user ID for the request.
func userID(r *http.Request) string {
	return middleware.UserID(r.Context())
}
