package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Mauthecat/tienda-sub000/internal/domain"
)

type cartService interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, item domain.CartItem) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, delta int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

type CartHandler struct {
	carts   cartService
	timeout time.Duration
}

func NewCartHandler(carts cartService, timeout time.Duration) *CartHandler {
	return &CartHandler{carts: carts, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID int64        `json:"id"`
	Name      string       `json:"name"`
	Image     string       `json:"image"`
	Price     domain.Price `json:"price"`
	Quantity  int          `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type CartItemView struct {
	ProductID    int64        `json:"id"`
	Name         string       `json:"name"`
	Image        string       `json:"image"`
	Price        domain.Price `json:"price"`
	PriceDisplay string       `json:"price_display"`
	Quantity     int          `json:"quantity"`
}

type CartView struct {
	Items             []CartItemView `json:"items"`
	TotalItems        int            `json:"total_items"`
	TotalPrice        domain.Price   `json:"total_price"`
	TotalPriceDisplay string         `json:"total_price_display"`
}

func cartView(cart *domain.Cart) CartView {
	items := make([]CartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemView{
			ProductID:    item.ProductID,
			Name:         item.Name,
			Image:        item.Image,
			Price:        item.Price,
			PriceDisplay: item.Price.Format(),
			Quantity:     item.Quantity,
		})
	}
	return CartView{
		Items:             items,
		TotalItems:        cart.TotalItems(),
		TotalPrice:        cart.TotalPrice(),
		TotalPriceDisplay: cart.TotalPrice().Format(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	if sid == "" {
		respondError(w, http.StatusInternalServerError, "no_session", "missing storefront session")
		return
	}

	cart, err := h.carts.GetCart(ctx, sid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load cart")
		return
	}

	respondJSON(w, http.StatusOK, cartView(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	if sid == "" {
		respondError(w, http.StatusInternalServerError, "no_session", "missing storefront session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id must be positive")
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}

	cart, err := h.carts.AddItem(ctx, sid, domain.CartItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		Image:     req.Image,
		Price:     req.Price,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update cart")
		return
	}

	respondJSON(w, http.StatusCreated, cartView(cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	if sid == "" {
		respondError(w, http.StatusInternalServerError, "no_session", "missing storefront session")
		return
	}

	productID, err := parseProductID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta == 0 || req.Delta < -99 || req.Delta > 99 {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must be between -99 and 99 and not zero")
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, sid, productID, req.Delta)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update cart")
		return
	}

	respondJSON(w, http.StatusOK, cartView(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	if sid == "" {
		respondError(w, http.StatusInternalServerError, "no_session", "missing storefront session")
		return
	}

	productID, err := parseProductID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	cart, err := h.carts.RemoveItem(ctx, sid, productID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update cart")
		return
	}

	respondJSON(w, http.StatusOK, cartView(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := getSessionIDFromContext(r.Context())
	if sid == "" {
		respondError(w, http.StatusInternalServerError, "no_session", "missing storefront session")
		return
	}

	if err := h.carts.ClearCart(ctx, sid); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseProductID(r *http.Request) (int64, error) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return 0, strconv.ErrSyntax
	}
	return productID, nil
}
