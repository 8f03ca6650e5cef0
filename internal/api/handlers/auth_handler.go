package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askpdf-dev/askpdf/internal/api/middlewares"
	"github.com/askpdf-dev/askpdf/internal/config"
	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/services"
)

type AuthHandler struct {
	users *services.UserService
	cfg   *config.Config
}

func NewAuthHandler(users *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Msg: "invalid body"})
		return
	}

	user, err := h.users.Signup(r.Context(), req.FirstName, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := middlewares.GenerateJWT(h.cfg.JWTSecret, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token, "user_id": user.ID})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Msg: "invalid body"})
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var validation *core.ValidationError
		if errors.As(err, &validation) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeError(w, err)
		return
	}

	token, err := middlewares.GenerateJWT(h.cfg.JWTSecret, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "user_id": user.ID})
}
