package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Mauthecat/tienda-sub000/internal/domain"
	"github.com/Mauthecat/tienda-sub000/internal/session"
)

type sessionStore interface {
	Login(ctx context.Context, sid, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, sid, name, email, password string) (*domain.Identity, error)
	Logout(ctx context.Context, sid string) error
	Current(ctx context.Context, sid string) (*domain.Identity, error)
}

type SessionHandler struct {
	sessions sessionStore
	timeout  time.Duration
}

func NewSessionHandler(sessions sessionStore, timeout time.Duration) *SessionHandler {
	return &SessionHandler{sessions: sessions, timeout: timeout}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type IdentityResponse struct {
	Identity *domain.Identity `json:"identity"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ident, err := h.sessions.Login(ctx, sid, req.Email, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", session.ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "backend_error", userMessage(err, "no se pudo iniciar sesión"))
		return
	}

	respondJSON(w, http.StatusOK, IdentityResponse{Identity: ident})
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())

	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "nombre, email and password are required")
		return
	}

	ident, err := h.sessions.Register(ctx, sid, req.Name, req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, "registration_failed", userMessage(err, "no se pudo crear la cuenta"))
		return
	}

	respondJSON(w, http.StatusCreated, IdentityResponse{Identity: ident})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	if err := h.sessions.Logout(ctx, sid); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Current restores the session identity at app start; expired or corrupted
// tokens just come back as an anonymous identity.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	ident, err := h.sessions.Current(ctx, sid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not read session")
		return
	}

	respondJSON(w, http.StatusOK, IdentityResponse{Identity: ident})
}
