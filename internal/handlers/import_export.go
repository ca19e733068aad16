package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

const maxImportSize = 5 << 20 // 5 MiB

// ImportCSV bulk-creates workouts and exercises from a CSV upload. Accepts
// either a multipart form with a "file" field or a raw CSV body.
func (api *API) ImportCSV(w http.ResponseWriter, r *http.Request) {
	var src io.Reader

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			errorJSON(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "A CSV file is required in the \"file\" field")
			return
		}
		defer file.Close()
		src = file
	} else {
		src = http.MaxBytesReader(w, r.Body, maxImportSize)
	}

	result, err := models.ImportWorkoutsCSV(api.DB, userID(r), src)
	switch {
	case errors.Is(err, models.ErrCSVEmpty),
		errors.Is(err, models.ErrCSVMissingWorkout),
		errors.Is(err, models.ErrCSVMissingFields):
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("handlers: import CSV: %v", err)
		errorJSON(w, http.StatusBadRequest, "Could not parse CSV file")
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// ExportCSV streams the user's workouts as CSV, one row per exercise. The
// optional from/to query parameters narrow the export by date.
func (api *API) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter := models.WorkoutFilter{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="workouts.csv"`)
	if err := models.ExportWorkoutsCSV(api.DB, userID(r), filter, w); err != nil {
		log.Printf("handlers: export CSV: %v", err)
	}
}
