package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Mauthecat/tienda-sub000/internal/domain"
	"github.com/Mauthecat/tienda-sub000/internal/service"
)

type trackingService interface {
	Track(ctx context.Context, sessionID, code string) service.TrackResult
	RetryByCode(ctx context.Context, sessionID, code, email string) (string, error)
}

type TrackingHandler struct {
	tracking trackingService
	timeout  time.Duration
}

func NewTrackingHandler(tracking trackingService, timeout time.Duration) *TrackingHandler {
	return &TrackingHandler{tracking: tracking, timeout: timeout}
}

// TrackResponse augments the raw projection with the display derivations
// and the auth prompt for non-owners. Shipping details are absent for
// non-owners because the backend withholds them.
type TrackResponse struct {
	Order           *domain.TrackedOrder `json:"order,omitempty"`
	Message         string               `json:"message,omitempty"`
	Subtotal        domain.Price         `json:"subtotal,omitempty"`
	ShippingCost    domain.Price         `json:"shipping_cost,omitempty"`
	CanRetryPayment bool                 `json:"can_retry_payment"`
	RequiresLogin   bool                 `json:"requires_login"`
}

func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing_code", "ingresa un código de orden (ej: POLI-15)")
		return
	}

	sid := getSessionIDFromContext(r.Context())
	result := h.tracking.Track(ctx, sid, code)

	resp := TrackResponse{
		Order:   result.Order,
		Message: result.Message,
	}
	if result.Order != nil {
		resp.Subtotal = result.Order.Subtotal()
		resp.ShippingCost = result.Order.ShippingCost()
		resp.CanRetryPayment = result.Order.CanRetryPayment()
		resp.RequiresLogin = !result.Order.IsOwner
	}

	respondJSON(w, http.StatusOK, resp)
}

type RetryPaymentRequestDTO struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

func (h *TrackingHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RetryPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "code and email are required")
		return
	}

	sid := getSessionIDFromContext(r.Context())
	url, err := h.tracking.RetryByCode(ctx, sid, req.Code, req.Email)
	switch {
	case errors.Is(err, service.ErrRetryNotAllowed):
		respondError(w, http.StatusConflict, "retry_not_allowed", service.ErrRetryNotAllowed.Error())
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "retry_failed", userMessage(err, "no se pudo reintentar el pago"))
		return
	}

	respondJSON(w, http.StatusOK, SubmitResponse{URL: url})
}
