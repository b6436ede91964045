package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"cliptAPI/internal/profile"
	"cliptAPI/middleware"
	"cliptAPI/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	resp, err := h.profileService.GetProfile(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) AwardXP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	var req profile.AwardXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.profileService.AwardXP(ctx, userID, req.Amount, req.Reason)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	middleware.XPGrantedTotal.Add(float64(req.Amount))
	log.Printf("AwardXP Handler: %d XP to user %s (%s)", req.Amount, userID, req.Reason)
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) AwardTokens(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	var req profile.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.profileService.AwardTokens(ctx, userID, req.Amount, req.Reason)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) SpendTokens(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	var req profile.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.profileService.SpendTokens(ctx, userID, req.Amount)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Prestige(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	p, err := h.profileService.Prestige(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	log.Printf("Prestige Handler: user %s entered prestige %d", userID, p.Prestige)
	respondWithJSON(w, http.StatusOK, p)
}
