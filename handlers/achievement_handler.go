package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cliptAPI/middleware"
	"cliptAPI/services"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
	profileService     *services.ProfileService
}

func NewAchievementHandler(achievementService *services.AchievementService, profileService *services.ProfileService) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
		profileService:     profileService,
	}
}

func (h *AchievementHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	achievements, err := h.achievementService.ListAchievements(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, achievements)
}

// UpdateProgress sets an achievement's progress to an absolute value. The
// stored value never moves backwards.
func (h *AchievementHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	achievementID := mux.Vars(r)["id"]
	if achievementID == "" {
		respondWithError(w, http.StatusBadRequest, "achievement id is required")
		return
	}

	var req struct {
		CurrentValue float64 `json:"currentValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.achievementService.UpdateProgress(ctx, userID, achievementID, req.CurrentValue)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if result.CompletedNow {
		middleware.AchievementsCompleted.Inc()
	}
	respondWithJSON(w, http.StatusOK, result)
}

// IncrementProgress bumps an achievement's progress by a positive delta.
func (h *AchievementHandler) IncrementProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUser(ctx, w, h.profileService)
	if !ok {
		return
	}

	achievementID := mux.Vars(r)["id"]
	if achievementID == "" {
		respondWithError(w, http.StatusBadRequest, "achievement id is required")
		return
	}

	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.achievementService.IncrementProgress(ctx, userID, achievementID, req.Delta)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if result.CompletedNow {
		middleware.AchievementsCompleted.Inc()
	}
	respondWithJSON(w, http.StatusOK, result)
}
