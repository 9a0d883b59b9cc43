package handlers

import (
	"context"
	"net/http"
	"time"

	"scoutlineAPI/internal/user"
	"scoutlineAPI/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	u, err := h.authService.Register(ctx, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	res, err := h.authService.Login(ctx, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}
