package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"cliptAPI/internal/apperr"
	"cliptAPI/middleware"
	"cliptAPI/services"
)

// resolveUser maps the authenticated Clerk subject to a profile ID, creating
// the profile on first contact. Writes the error response itself when it
// fails.
func resolveUser(ctx context.Context, w http.ResponseWriter, profiles *services.ProfileService) (uuid.UUID, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}

	p, err := profiles.Resolve(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return uuid.Nil, false
	}
	return p.ID, true
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service errors to HTTP statuses: validation
// errors to 400, missing resources to 404, conflicts to 409, everything else
// to 500 with the detail kept out of the response.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *apperr.ValidationError
		notFoundErr   *apperr.NotFoundError
		conflictErr   *apperr.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		respondWithError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		respondWithError(w, http.StatusConflict, conflictErr.Error())
	default:
		log.Printf("Handler: internal error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
