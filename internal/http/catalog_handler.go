package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Mauthecat/tienda-sub000/internal/domain"
)

type catalogService interface {
	Products(ctx context.Context) (json.RawMessage, error)
}

type profileBackend interface {
	Profile(ctx context.Context, email string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, p domain.Profile) error
	Orders(ctx context.Context, email, bearer string) (json.RawMessage, error)
}

type bearerSource interface {
	AccessToken(ctx context.Context, sid string) (string, error)
}

// CatalogHandler serves the passthrough views: catalog listing, profile
// read/write and order history.
type CatalogHandler struct {
	catalog  catalogService
	backend  profileBackend
	sessions sessionStore
	bearers  bearerSource
	timeout  time.Duration
}

func NewCatalogHandler(catalog catalogService, backend profileBackend, sessions sessionStore, bearers bearerSource, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog:  catalog,
		backend:  backend,
		sessions: sessions,
		bearers:  bearers,
		timeout:  timeout,
	}
}

func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.Products(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "backend_error", userMessage(err, "no se pudo cargar el catálogo"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(products) //nolint:errcheck
}

func (h *CatalogHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident, ok := h.requireIdentity(ctx, w, r)
	if !ok {
		return
	}

	profile, err := h.backend.Profile(ctx, ident.Email)
	if err != nil {
		respondError(w, http.StatusBadGateway, "backend_error", userMessage(err, "no se pudo cargar tu perfil"))
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *CatalogHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident, ok := h.requireIdentity(ctx, w, r)
	if !ok {
		return
	}

	var profile domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// the profile always belongs to the authenticated user
	profile.Email = ident.Email

	if err := h.backend.UpdateProfile(ctx, profile); err != nil {
		respondError(w, http.StatusBadGateway, "backend_error", userMessage(err, "no se pudo guardar el perfil"))
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *CatalogHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ident, ok := h.requireIdentity(ctx, w, r)
	if !ok {
		return
	}

	sid := getSessionIDFromContext(r.Context())
	bearer, err := h.bearers.AccessToken(ctx, sid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not read session")
		return
	}

	orders, err := h.backend.Orders(ctx, ident.Email, bearer)
	if err != nil {
		respondError(w, http.StatusBadGateway, "backend_error", userMessage(err, "no se pudieron cargar tus pedidos"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(orders) //nolint:errcheck
}

func (h *CatalogHandler) requireIdentity(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.Identity, bool) {
	sid := getSessionIDFromContext(r.Context())
	ident, err := h.sessions.Current(ctx, sid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not read session")
		return nil, false
	}
	if ident == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "inicia sesión para continuar")
		return nil, false
	}
	return ident, true
}
