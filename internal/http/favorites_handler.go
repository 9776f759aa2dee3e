package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type favoritesService interface {
	List(ctx context.Context, email string) ([]int64, error)
	Toggle(ctx context.Context, email string, productID int64) (bool, error)
}

type FavoritesHandler struct {
	favorites favoritesService
	sessions  sessionStore
	timeout   time.Duration
}

func NewFavoritesHandler(favorites favoritesService, sessions sessionStore, timeout time.Duration) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites, sessions: sessions, timeout: timeout}
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	ident, err := h.sessions.Current(ctx, sid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not read session")
		return
	}
	if ident == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "inicia sesión para ver tus favoritos")
		return
	}

	ids, err := h.favorites.List(ctx, ident.Email)
	if err != nil {
		respondError(w, http.StatusBadGateway, "backend_error", userMessage(err, "no se pudieron cargar los favoritos"))
		return
	}

	respondJSON(w, http.StatusOK, map[string][]int64{"favorites": ids})
}

type ToggleFavoriteRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	ident, err := h.sessions.Current(ctx, sid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not read session")
		return
	}
	if ident == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "inicia sesión para guardar favoritos")
		return
	}

	var req ToggleFavoriteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	favorite, err := h.favorites.Toggle(ctx, ident.Email, req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "backend_error", userMessage(err, "no se pudo actualizar el favorito"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"favorite": favorite})
}
