package handler

import (
	"errors"
	"net/http"

	"github.com/inboxinvader/inboxinvader/internal/auth"
	"github.com/inboxinvader/inboxinvader/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	result, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeFailure(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("login failed")
		writeFailure(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Login successful",
		"token":    result.Token,
		"username": result.Username,
		"email":    result.Email,
	})
}

// Signup handles POST /signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authSvc.Signup(r.Context(), service.SignupRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			writeFailure(w, http.StatusBadRequest, "Username already exists")
		case errors.Is(err, service.ErrEmailTaken):
			writeFailure(w, http.StatusBadRequest, "Email already registered")
		default:
			var ve auth.ValidationError
			if errors.As(err, &ve) {
				writeFailure(w, http.StatusBadRequest, ve.Error())
				return
			}
			h.log.Error().Err(err).Str("username", req.Username).Msg("signup failed")
			writeFailure(w, http.StatusInternalServerError, "Signup failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Account created successfully",
		"username": user.Username,
	})
}
