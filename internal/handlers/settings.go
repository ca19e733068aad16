package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// Settings are instance-wide, not per-user. Values set through env vars are
// read-only here; the rest resolve env → DB → default.

// ListSettings returns every known setting with its resolved value and
// source. Sensitive values come back masked.
func (api *API) ListSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"settings":      models.ListSettings(api.DB),
		"ai_configured": models.IsAICoachConfigured(api.DB),
	})
}

type settingInput struct {
	Value string `json:"value"`
}

// UpdateSetting stores a setting value in the database.
func (api *API) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	current := models.GetSettingValue(api.DB, key)
	if current.Source == "" {
		errorJSON(w, http.StatusNotFound, "Unknown setting")
		return
	}
	if current.ReadOnly {
		errorJSON(w, http.StatusConflict, "Setting is controlled by an environment variable")
		return
	}

	var in settingInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := models.SetSetting(api.DB, key, strings.TrimSpace(in.Value)); err != nil {
		log.Printf("handlers: set setting %q: %v", key, err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, models.GetSettingValue(api.DB, key))
}

// DeleteSetting removes the stored value so the setting reverts to its env
// var or built-in default.
func (api *API) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if models.GetSettingValue(api.DB, key).Source == "" {
		errorJSON(w, http.StatusNotFound, "Unknown setting")
		return
	}
	if err := models.DeleteSetting(api.DB, key); err != nil {
		log.Printf("handlers: delete setting %q: %v", key, err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
