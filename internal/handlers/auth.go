package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account and returns a bearer token.
func (api *API) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		errorJSON(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(in.Password) < 8 {
		errorJSON(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	user, err := models.CreateUser(api.DB, in.Email, in.Password)
	if errors.Is(err, models.ErrDuplicateEmail) {
		errorJSON(w, http.StatusConflict, "An account with this email already exists")
		return
	}
	if err != nil {
		log.Printf("handlers: register: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := api.Auth.IssueToken(user.ID)
	if err != nil {
		log.Printf("handlers: issue token: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login verifies credentials and returns a bearer token.
func (api *API) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := models.Authenticate(api.DB, in.Email, in.Password)
	if errors.Is(err, models.ErrNotFound) {
		errorJSON(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		log.Printf("handlers: login for %q: %v", in.Email, err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := api.Auth.IssueToken(user.ID)
	if err != nil {
		log.Printf("handlers: issue token: %v", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Me returns the authenticated user.
func (api *API) Me(w http.ResponseWriter, r *http.Request) {
	user, err := models.GetUserByID(api.DB, userID(r))
	if err != nil {
		notFoundOrError(w, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
