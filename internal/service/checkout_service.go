package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/Mauthecat/tienda-sub000/internal/backend"
	"github.com/Mauthecat/tienda-sub000/internal/domain"
	"github.com/Mauthecat/tienda-sub000/internal/shipping"
)

var (
	ErrEmptyCart          = errors.New("el carrito está vacío")
	ErrShippingUnresolved = errors.New("selecciona una región de envío")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

type cartAccess interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

type identitySource interface {
	Current(ctx context.Context, sid string) (*domain.Identity, error)
}

type checkoutBackend interface {
	Profile(ctx context.Context, email string) (*domain.Profile, error)
	CreatePayment(ctx context.Context, req backend.PaymentRequest) (string, error)
}

// CheckoutService composes the cart, the shipping table and the session
// into a payment handoff. It holds no per-checkout state of its own; the
// cart and the submitted form carry everything.
type CheckoutService struct {
	carts    cartAccess
	sessions identitySource
	backend  checkoutBackend
	sfg      singleflight.Group // coalesces duplicate submits per session
}

func NewCheckoutService(carts cartAccess, sessions identitySource, b checkoutBackend) *CheckoutService {
	return &CheckoutService{carts: carts, sessions: sessions, backend: b}
}

type Quote struct {
	CartTotal    domain.Price `json:"cart_total"`
	ShippingCost domain.Price `json:"shipping_cost"`
	FinalTotal   domain.Price `json:"final_total"`
	CanSubmit    bool         `json:"can_submit"`
}

// Quote recomputes the totals for the current region selection. CanSubmit
// is false while the cart is empty or the shipping fee is unresolved.
func (s *CheckoutService) Quote(ctx context.Context, sessionID, region string) (*Quote, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fee := shipping.Cost(region)
	q := &Quote{
		CartTotal:    cart.TotalPrice(),
		ShippingCost: fee,
		FinalTotal:   cart.TotalPrice() + fee,
		CanSubmit:    !cart.IsEmpty() && fee > 0,
	}
	return q, nil
}

type Prefill struct {
	Name    string `json:"nombre"`
	Surname string `json:"apellido"`
	Email   string `json:"email"`
	Phone   string `json:"telefono"`
	Address string `json:"direccion"`
	City    string `json:"ciudad"`
}

// Prefill fetches the stored profile for the authenticated session and
// splits the stored full name into the form's name/surname fields.
func (s *CheckoutService) Prefill(ctx context.Context, sessionID string) (*Prefill, error) {
	ident, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, ErrNotAuthenticated
	}

	profile, err := s.backend.Profile(ctx, ident.Email)
	if err != nil {
		return nil, err
	}

	name, surname := profile.SplitName()
	return &Prefill{
		Name:    name,
		Surname: surname,
		Email:   profile.Email,
		Phone:   profile.Phone,
		Address: profile.Address,
		City:    profile.City,
	}, nil
}

// Submit builds the payment-creation request and hands off to the payment
// provider. The returned URL is the external payment page; nothing waits
// for payment completion here. The cart is left intact so a failed
// handoff loses no data.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, form domain.ShippingForm) (string, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cart, err := s.carts.GetCart(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if cart.IsEmpty() {
			return "", ErrEmptyCart
		}

		fee := shipping.Cost(form.Region)
		if fee == 0 {
			// a zero fee means no region resolved, not free shipping
			return "", ErrShippingUnresolved
		}

		items := make([]backend.PaymentItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			items = append(items, backend.PaymentItem{ID: item.ProductID, Quantity: item.Quantity})
		}

		req := backend.PaymentRequest{
			Amount:   cart.TotalPrice() + fee,
			Email:    form.Email,
			Shipping: form,
			Cart:     items,
		}

		url, err := s.backend.CreatePayment(ctx, req)
		if err != nil {
			return "", fmt.Errorf("create payment: %w", err)
		}
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Confirm runs on the post-payment confirmation view and clears the cart.
func (s *CheckoutService) Confirm(ctx context.Context, sessionID string) error {
	return s.carts.ClearCart(ctx, sessionID)
}
