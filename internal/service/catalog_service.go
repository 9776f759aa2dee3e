package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	catalogCacheKey = "catalog:products"
	catalogCacheTTL = 5 * time.Minute
)

type catalogBackend interface {
	Products(ctx context.Context) (json.RawMessage, error)
}

// CatalogService passes the backend catalog through with a short Redis
// cache in front; the storefront hits it on every page load.
type CatalogService struct {
	rdb     *redis.Client
	backend catalogBackend
}

func NewCatalogService(rdb *redis.Client, b catalogBackend) *CatalogService {
	return &CatalogService{rdb: rdb, backend: b}
}

func (s *CatalogService) Products(ctx context.Context) (json.RawMessage, error) {
	cached, err := s.rdb.Get(ctx, catalogCacheKey).Bytes()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Printf("catalog cache get error: %v \n", err)
	}

	products, err := s.backend.Products(ctx)
	if err != nil {
		return nil, err
	}

	if errSet := s.rdb.Set(ctx, catalogCacheKey, []byte(products), catalogCacheTTL).Err(); errSet != nil {
		log.Printf("catalog cache set error: %v \n", errSet)
	}

	return products, nil
}
