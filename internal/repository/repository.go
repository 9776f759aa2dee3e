package repository

import (
	"context"
	"errors"

	"github.com/Mauthecat/tienda-sub000/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository defines the persistence contract for carts. Mutations are
// applied to the domain cart and the whole cart is written back, so the
// interface only needs whole-cart operations.
type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, sessionID string) error
}
