package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shamba-labs/mazao/internal/auth"
	"github.com/shamba-labs/mazao/internal/store"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateCredentials(req credentialsRequest, signup bool) []string {
	var errs []string
	if len(req.Username) < 3 {
		errs = append(errs, "Username must be at least 3 characters")
	}
	if signup {
		if !strings.Contains(req.Email, "@") {
			errs = append(errs, "Invalid email address")
		}
		if len(req.Password) < 6 {
			errs = append(errs, "Password must be at least 6 characters")
		}
	} else if req.Password == "" {
		errs = append(errs, "Password is required")
	}
	return errs
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	if errs := validateCredentials(req, true); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"errors":  errs,
			"message": "Validation failed",
		})
		return
	}

	usernameTaken, emailTaken, err := s.deps.Users.UserExists(r.Context(), req.Username, req.Email)
	if err != nil {
		s.internalError(w, "signup", err)
		return
	}
	if usernameTaken || emailTaken {
		message := "Email is already registered"
		if usernameTaken {
			message = "Username is not available"
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"success": false,
			"message": message,
		})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, "signup", err)
		return
	}

	user, err := s.deps.Users.CreateUser(r.Context(), req.Username, strings.ToLower(req.Email), hash)
	if err != nil {
		s.internalError(w, "signup", err)
		return
	}

	accessToken, err := s.deps.Tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		s.internalError(w, "signup", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"message":     "User created successfully",
		"user":        user,
		"accessToken": accessToken,
	})
}

func (s *Server) signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	if errs := validateCredentials(req, false); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"errors":  errs,
			"message": "Validation failed",
		})
		return
	}

	user, err := s.deps.Users.UserByUsername(r.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) {
		s.invalidCredentials(w)
		return
	}
	if err != nil {
		s.internalError(w, "signin", err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.invalidCredentials(w)
		return
	}

	accessToken, err := s.deps.Tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		s.internalError(w, "signin", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Login successful",
		"user":        user,
		"accessToken": accessToken,
	})
}

func (s *Server) invalidCredentials(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": "Invalid credentials",
	})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.deps.Logger.Error(op+" failed", "error", err)
	body := map[string]any{
		"success": false,
		"message": "Internal server error",
	}
	if s.deps.Dev {
		body["error"] = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
