package service

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Mauthecat/tienda-sub000/internal/cache"
	"github.com/Mauthecat/tienda-sub000/internal/domain"
	"github.com/Mauthecat/tienda-sub000/internal/repository"
)

// CartService owns the per-session cart. Every mutation loads the cart,
// applies the change in the domain and writes the whole cart back, so the
// stored state always matches the in-memory state.
type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
	}
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, sessionID)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) {
			// a session without a stored cart browses with an empty one
			return emptyCart(sessionID), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), sessionID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem merges the item into the session's cart. Re-adding a product
// increments its quantity instead of duplicating the line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, item domain.CartItem) (*domain.Cart, error) {
	cart, err := s.loadForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Add(item)
	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity applies a signed delta to a cart line. A line driven to
// zero or below is removed. Unknown product ids leave the cart untouched.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, delta int) (*domain.Cart, error) {
	cart, err := s.loadForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.UpdateQuantity(productID, delta)
	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (*domain.Cart, error) {
	cart, err := s.loadForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Remove(productID)
	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the session's cart, e.g. after a confirmed checkout.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	errDelete := s.repo.DeleteCart(ctx, sessionID)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v \n", errDelete)
		return errDelete
	}

	s.invalidateCache(sessionID)
	return nil
}

// loadForUpdate reads the authoritative copy from the repository, never
// the cache, so mutations cannot build on stale state.
func (s *CartService) loadForUpdate(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return emptyCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) persist(ctx context.Context, cart *domain.Cart) error {
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v \n", err)
		return err
	}
	s.invalidateCache(cart.SessionID)
	return nil
}

func (s *CartService) invalidateCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		log.Printf("cache invalidate error: %v \n", err)
	}
}

func emptyCart(sessionID string) *domain.Cart {
	now := time.Now()
	return &domain.Cart{
		SessionID: sessionID,
		Items:     nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
