package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"scoutlineAPI/internal/challenge"
	"scoutlineAPI/middleware"
	"scoutlineAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req challenge.CreateChallengeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	c, err := h.challengeService.CreateChallenge(ctx, userID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}

func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.challengeService.GetChallenge(ctx, mux.Vars(r)["challengeId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	challenges, err := h.challengeService.ListChallenges(ctx, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := middleware.GetRole(ctx)

	var req challenge.UpdateChallengeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	c, err := h.challengeService.UpdateChallenge(ctx, mux.Vars(r)["challengeId"], userID, role, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *ChallengeHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := middleware.GetRole(ctx)

	if err := h.challengeService.DeleteChallenge(ctx, mux.Vars(r)["challengeId"], userID, role); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted successfully"})
}

func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req challenge.JoinRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	p, err := h.challengeService.JoinChallenge(ctx, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *ChallengeHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req challenge.RecordProgressRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := h.challengeService.RecordProgress(ctx, mux.Vars(r)["participantId"], &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ChallengeHandler) GetParticipantProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	progress, err := h.challengeService.GetParticipantProgress(ctx, mux.Vars(r)["participantId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, progress)
}

func (h *ChallengeHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.challengeService.ListCompleted(ctx, mux.Vars(r)["challengeId"], r.URL.Query().Get("sortBy"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

func (h *ChallengeHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	board, err := h.challengeService.Leaderboard(ctx, mux.Vars(r)["challengeId"], r.URL.Query().Get("status"), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

func (h *ChallengeHandler) GetUserProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	progress, err := h.challengeService.GetUserProgress(ctx, mux.Vars(r)["userId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, progress)
}

func (h *ChallengeHandler) UpdateParticipantStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req challenge.UpdateStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	p, err := h.challengeService.UpdateParticipantStatus(ctx, mux.Vars(r)["participantId"], req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Participant status updated",
		"participant": p,
	})
}

func (h *ChallengeHandler) GetChallengeStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.challengeService.GetChallengeStatistics(ctx, mux.Vars(r)["challengeId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
