package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scoutlineAPI/internal/scouting"
	"scoutlineAPI/middleware"
	"scoutlineAPI/services"
)

type ScoutingHandler struct {
	scoutingService *services.ScoutingService
}

func NewScoutingHandler(scoutingService *services.ScoutingService) *ScoutingHandler {
	return &ScoutingHandler{
		scoutingService: scoutingService,
	}
}

func (h *ScoutingHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req scouting.CreateReportRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	report, err := h.scoutingService.CreateReport(ctx, userID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, report)
}

func (h *ScoutingHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report, err := h.scoutingService.GetReport(ctx, mux.Vars(r)["reportId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

func (h *ScoutingHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := middleware.GetRole(ctx)

	var req scouting.UpdateReportRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	report, err := h.scoutingService.UpdateReport(ctx, mux.Vars(r)["reportId"], userID, role, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

func (h *ScoutingHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := middleware.GetRole(ctx)

	if err := h.scoutingService.DeleteReport(ctx, mux.Vars(r)["reportId"], userID, role); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Report deleted successfully"})
}

func (h *ScoutingHandler) ListByPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reports, err := h.scoutingService.ListByPlayer(ctx, mux.Vars(r)["playerId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}

func (h *ScoutingHandler) ListByScout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	reports, err := h.scoutingService.ListByScout(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}
