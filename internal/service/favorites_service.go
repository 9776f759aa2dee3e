package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type favoritesBackend interface {
	Favorites(ctx context.Context, email string) ([]int64, error)
	ToggleFavorite(ctx context.Context, email string, productID int64) error
}

// FavoritesService mirrors the backend's favorite set in Redis and
// toggles optimistically: the local set changes first, the backend call
// follows, and a failed call reverts the local change.
type FavoritesService struct {
	rdb     *redis.Client
	backend favoritesBackend
	ttl     time.Duration
}

func NewFavoritesService(rdb *redis.Client, b favoritesBackend) *FavoritesService {
	return &FavoritesService{rdb: rdb, backend: b, ttl: 24 * time.Hour}
}

func favoritesKey(email string) string {
	return fmt.Sprintf("favorites:%s", email)
}

// List returns the backend's favorite product ids and refreshes the local
// mirror as a side effect.
func (s *FavoritesService) List(ctx context.Context, email string) ([]int64, error) {
	ids, err := s.backend.Favorites(ctx, email)
	if err != nil {
		return nil, err
	}

	key := favoritesKey(email)
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, key)
	for _, id := range ids {
		pipe.SAdd(ctx, key, id)
	}
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("refresh favorites mirror error: %v \n", err)
	}

	return ids, nil
}

// Toggle flips membership for the product: apply locally, commit to the
// backend, undo locally on failure.
func (s *FavoritesService) Toggle(ctx context.Context, email string, productID int64) (bool, error) {
	key := favoritesKey(email)
	member := strconv.FormatInt(productID, 10)

	wasFavorite, err := s.rdb.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, fmt.Errorf("read favorites mirror: %w", err)
	}

	apply := func() error {
		if wasFavorite {
			return s.rdb.SRem(ctx, key, member).Err()
		}
		return s.rdb.SAdd(ctx, key, member).Err()
	}
	commit := func() error {
		return s.backend.ToggleFavorite(ctx, email, productID)
	}
	rollback := func() {
		var errRevert error
		if wasFavorite {
			errRevert = s.rdb.SAdd(ctx, key, member).Err()
		} else {
			errRevert = s.rdb.SRem(ctx, key, member).Err()
		}
		if errRevert != nil {
			log.Printf("rollback favorites mirror error: %v \n", errRevert)
		}
	}

	if err := optimistic(apply, commit, rollback); err != nil {
		return wasFavorite, err
	}
	return !wasFavorite, nil
}
