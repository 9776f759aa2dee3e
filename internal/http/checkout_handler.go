package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Mauthecat/tienda-sub000/internal/domain"
	"github.com/Mauthecat/tienda-sub000/internal/service"
	"github.com/Mauthecat/tienda-sub000/internal/shipping"
)

type checkoutService interface {
	Quote(ctx context.Context, sessionID, region string) (*service.Quote, error)
	Prefill(ctx context.Context, sessionID string) (*service.Prefill, error)
	Submit(ctx context.Context, sessionID string, form domain.ShippingForm) (string, error)
	Confirm(ctx context.Context, sessionID string) error
}

type CheckoutHandler struct {
	checkout checkoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout checkoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, timeout: timeout}
}

// Regions serves the static table for the region selector.
func (h *CheckoutHandler) Regions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, shipping.Regions())
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	quote, err := h.checkout.Quote(ctx, sid, r.URL.Query().Get("region"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not compute quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (h *CheckoutHandler) Prefill(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	prefill, err := h.checkout.Prefill(ctx, sid)
	if errors.Is(err, service.ErrNotAuthenticated) {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "inicia sesión para autocompletar tus datos")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "backend_error", userMessage(err, "no se pudo cargar tu perfil"))
		return
	}

	respondJSON(w, http.StatusOK, prefill)
}

type SubmitResponse struct {
	URL string `json:"url"`
}

// Submit hands off to the external payment page. The client navigates to
// the returned URL; failure leaves the cart and form intact.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())

	var form domain.ShippingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if form.Email == "" || form.Address == "" || form.Region == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email, dirección y región son obligatorios")
		return
	}

	url, err := h.checkout.Submit(ctx, sid, form)
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", service.ErrEmptyCart.Error())
		return
	case errors.Is(err, service.ErrShippingUnresolved):
		respondError(w, http.StatusUnprocessableEntity, "shipping_unresolved", service.ErrShippingUnresolved.Error())
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "payment_failed", userMessage(err, "no se pudo iniciar el pago"))
		return
	}

	respondJSON(w, http.StatusOK, SubmitResponse{URL: url})
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	if err := h.checkout.Confirm(ctx, sid); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
