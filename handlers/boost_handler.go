package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"cliptAPI/internal/boost"
	"cliptAPI/middleware"
	"cliptAPI/services"
)

type BoostHandler struct {
	boostService   *services.BoostService
	profileService *services.ProfileService
}

func NewBoostHandler(boostService *services.BoostService, profileService *services.ProfileService) *BoostHandler {
	return &BoostHandler{
		boostService:   boostService,
		profileService: profileService,
	}
}

func (h *BoostHandler) ApplyBoost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	var req boost.ApplyBoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.boostService.ApplyBoost(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	middleware.BoostsApplied.WithLabelValues(string(req.BoostType)).Inc()
	log.Printf("ApplyBoost Handler: user %s boosted %s %s with %s", userID, req.ContentType, req.ContentID, req.BoostType)
	respondWithJSON(w, http.StatusCreated, resp)
}

func (h *BoostHandler) GetBoost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	boostID, ok := parseBoostID(w, r)
	if !ok {
		return
	}

	resp, err := h.boostService.GetBoost(ctx, userID, boostID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *BoostHandler) GetActiveBoosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	boosts, err := h.boostService.ListActiveBoosts(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, boosts)
}

// RefreshMetrics advances the boost's metrics snapshot to now and returns it.
func (h *BoostHandler) RefreshMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	boostID, ok := parseBoostID(w, r)
	if !ok {
		return
	}

	resp, err := h.boostService.RefreshMetrics(ctx, userID, boostID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *BoostHandler) ExtendBoost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	boostID, ok := parseBoostID(w, r)
	if !ok {
		return
	}

	extended, err := h.boostService.ExtendBoost(ctx, userID, boostID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, extended)
}

func (h *BoostHandler) CancelBoost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	boostID, ok := parseBoostID(w, r)
	if !ok {
		return
	}

	cancelled, err := h.boostService.CancelBoost(ctx, userID, boostID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	log.Printf("CancelBoost Handler: user %s cancelled boost %s", userID, boostID)
	respondWithJSON(w, http.StatusOK, cancelled)
}

func parseBoostID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	boostID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid boost id")
		return uuid.Nil, false
	}
	return boostID, true
}
