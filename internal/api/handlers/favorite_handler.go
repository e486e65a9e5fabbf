package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bhamfamilies/directory/internal/api/middleware"
	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/domain/repositories"
	"github.com/bhamfamilies/directory/internal/infrastructure/observability"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
)

// FavoriteHandler handles favorite-related HTTP requests.
type FavoriteHandler struct {
	favoriteRepo repositories.FavoriteRepository
	metrics      *observability.Metrics
}

// NewFavoriteHandler creates a new favorite handler. Metrics may be nil.
func NewFavoriteHandler(favoriteRepo repositories.FavoriteRepository, metrics *observability.Metrics) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteRepo: favoriteRepo,
		metrics:      metrics,
	}
}

type favoriteRequest struct {
	Directory string `json:"directory"`
	ListingID string `json:"listingId"`
}

// ListFavorites handles GET /api/favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	directory := entities.Directory(r.URL.Query().Get("directory"))
	if directory != "" && !directory.Valid() {
		respondWithError(w, http.StatusBadRequest, "unknown directory")
		return
	}

	favorites, err := h.favoriteRepo.ListByUser(r.Context(), user.ID, directory)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	if favorites == nil {
		favorites = []*entities.Favorite{}
	}

	respondWithJSON(w, http.StatusOK, favorites)
}

// AddFavorite handles POST /api/favorites
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	payload, ok := decodeFavoriteRequest(w, r)
	if !ok {
		return
	}

	favorite, err := h.favoriteRepo.Add(r.Context(), &entities.Favorite{
		UserID:    user.ID,
		Directory: entities.Directory(payload.Directory),
		ListingID: payload.ListingID,
	})
	if err != nil {
		respondWithAppError(w, err, "failed to add favorite")
		return
	}

	observability.RecordFavoriteToggle(r.Context(), h.metrics, payload.Directory, "add")
	respondWithJSON(w, http.StatusOK, favorite)
}

// RemoveFavorite handles DELETE /api/favorites
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	payload, ok := decodeFavoriteRequest(w, r)
	if !ok {
		return
	}

	err := h.favoriteRepo.Remove(
		r.Context(), user.ID, entities.Directory(payload.Directory), payload.ListingID)
	if err != nil {
		respondWithAppError(w, err, "failed to remove favorite")
		return
	}

	observability.RecordFavoriteToggle(r.Context(), h.metrics, payload.Directory, "remove")
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func decodeFavoriteRequest(w http.ResponseWriter, r *http.Request) (favoriteRequest, bool) {
	var payload favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return payload, false
	}
	if payload.Directory == "" || payload.ListingID == "" {
		respondWithError(w, http.StatusBadRequest, "directory and listingId are required")
		return payload, false
	}
	if !entities.Directory(payload.Directory).Valid() {
		respondWithError(w, http.StatusBadRequest, "unknown directory")
		return payload, false
	}
	return payload, true
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func respondWithAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
			return
		case apperrors.ErrorTypeUnauthorized:
			respondWithError(w, http.StatusUnauthorized, appErr.Message)
			return
		}
	}
	respondWithError(w, http.StatusInternalServerError, fallback)
}
