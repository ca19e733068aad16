package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

func validProgramStatus(s string) bool {
	switch s {
	case "", models.ProgramProposed, models.ProgramActive, models.ProgramArchived, models.ProgramRejected:
		return true
	}
	return false
}

// ListPrograms returns the user's generated programs, optionally filtered by
// status.
func (api *API) ListPrograms(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !validProgramStatus(status) {
		errorJSON(w, http.StatusBadRequest, "Invalid status")
		return
	}
	programs, err := models.ListPrograms(api.DB, userID(r), status)
	if err != nil {
		log.Printf("handlers: list programs: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if programs == nil {
		programs = []*models.AIProgram{}
	}
	respondJSON(w, http.StatusOK, programs)
}

// GetProgram returns one program with its accepted weeks, if any.
func (api *API) GetProgram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	program, err := models.GetProgramByID(api.DB, userID(r), id)
	if err != nil {
		notFoundOrError(w, err, "program")
		return
	}
	weeks, err := models.ListProgramWeeks(api.DB, userID(r), id)
	if err != nil {
		log.Printf("handlers: list program weeks: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if weeks == nil {
		weeks = []*models.ProgramWeekRow{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"program": program,
		"weeks":   weeks,
	})
}

type acceptProgramInput struct {
	StartDate      string `json:"start_date"`
	ArchivePlanned bool   `json:"archive_planned"`
}

// AcceptProgram activates a proposed program and expands it into scheduled
// workouts. Start date defaults to today.
func (api *API) AcceptProgram(w http.ResponseWriter, r *http.Request) {
	var in acceptProgramInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startDate := in.StartDate
	if startDate == "" {
		startDate = api.now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", startDate); err != nil {
		errorJSON(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	result, err := models.AcceptProgram(api.DB, userID(r), chi.URLParam(r, "id"), startDate, in.ArchivePlanned)
	if errors.Is(err, models.ErrProgramNotProposed) {
		errorJSON(w, http.StatusConflict, "Program has already been accepted or rejected")
		return
	}
	if err != nil {
		notFoundOrError(w, err, "program")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RejectProgram marks a proposed program as rejected.
func (api *API) RejectProgram(w http.ResponseWriter, r *http.Request) {
	err := models.RejectProgram(api.DB, userID(r), chi.URLParam(r, "id"))
	if errors.Is(err, models.ErrProgramNotProposed) {
		errorJSON(w, http.StatusConflict, "Program has already been accepted or rejected")
		return
	}
	if err != nil {
		notFoundOrError(w, err, "program")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
